package metrics

// 回调失败原因（CallbackFailed 的 reason 参数）
const (
	ReasonError = "error"
	ReasonPanic = "panic"
	ReasonArity = "arity"
)

// 调度失败原因（SchedulingFailed 的 reason 参数）
const (
	ReasonSaturated = "saturated"
	ReasonClosed    = "closed"
)

// Reporter 记录事件总线的运行指标
//
// 实现必须并发安全，且不得阻塞调用方：总线在发布路径上同步调用。
type Reporter interface {
	// Published 记录一次发布及其快照中的订阅者数量
	Published(event string, subscribers int, async bool)

	// CallbackFailed 记录一次回调失败
	CallbackFailed(event string, reason string)

	// Scheduled 记录一次成功调度的异步回调
	Scheduled(event string)

	// SchedulingFailed 记录一次调度失败
	SchedulingFailed(event string, reason string)

	// Reclaimed 记录因 owner 失效而移除的订阅数
	Reclaimed(event string, n int)

	// LockTimeout 记录一次锁超时，op 为发生超时的操作名
	LockTimeout(op string)

	// Subscriptions 记录订阅总数的变化量
	Subscriptions(delta int)
}

// ============================================================================
// Nop
// ============================================================================

type nopReporter struct{}

func (nopReporter) Published(string, int, bool)    {}
func (nopReporter) CallbackFailed(string, string)   {}
func (nopReporter) Scheduled(string)                {}
func (nopReporter) SchedulingFailed(string, string) {}
func (nopReporter) Reclaimed(string, int)           {}
func (nopReporter) LockTimeout(string)              {}
func (nopReporter) Subscriptions(int)               {}

// Nop 返回丢弃所有记录的 Reporter
func Nop() Reporter {
	return nopReporter{}
}

// ============================================================================
// Multi
// ============================================================================

type multiReporter []Reporter

// Multi 返回扇出到所有给定 Reporter 的 Reporter
//
// nil 会被忽略；全部为 nil 时返回 Nop()；只有一个时直接返回它。
func Multi(reporters ...Reporter) Reporter {
	out := make(multiReporter, 0, len(reporters))
	for _, r := range reporters {
		if r == nil {
			continue
		}
		out = append(out, r)
	}
	switch len(out) {
	case 0:
		return Nop()
	case 1:
		return out[0]
	}
	return out
}

func (m multiReporter) Published(event string, subscribers int, async bool) {
	for _, r := range m {
		r.Published(event, subscribers, async)
	}
}

func (m multiReporter) CallbackFailed(event string, reason string) {
	for _, r := range m {
		r.CallbackFailed(event, reason)
	}
}

func (m multiReporter) Scheduled(event string) {
	for _, r := range m {
		r.Scheduled(event)
	}
}

func (m multiReporter) SchedulingFailed(event string, reason string) {
	for _, r := range m {
		r.SchedulingFailed(event, reason)
	}
}

func (m multiReporter) Reclaimed(event string, n int) {
	for _, r := range m {
		r.Reclaimed(event, n)
	}
}

func (m multiReporter) LockTimeout(op string) {
	for _, r := range m {
		r.LockTimeout(op)
	}
}

func (m multiReporter) Subscriptions(delta int) {
	for _, r := range m {
		r.Subscriptions(delta)
	}
}

var (
	_ Reporter = nopReporter{}
	_ Reporter = multiReporter(nil)
	_ Reporter = (*EventStats)(nil)
	_ Reporter = (*PromReporter)(nil)
)
