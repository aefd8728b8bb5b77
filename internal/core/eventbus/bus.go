package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-eventstore/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// schedWarnInterval 调度失败汇总告警的最小间隔
const schedWarnInterval = 5 * time.Second

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线
type Bus struct {
	cfg      Config
	clock    clock.Clock
	reporter metrics.Reporter

	lock *timedLock
	reg  *registry
	pool *pool

	logMu sync.RWMutex
	log   log.Leveled

	schedWarn rate.Sometimes

	runMu       sync.Mutex
	stopJanitor context.CancelFunc
	janitorDone chan struct{}
}

// NewBus 创建新的事件总线
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		cfg:      DefaultConfig(),
		clock:    clock.New(),
		reporter: metrics.Nop(),
		reg:      newRegistry(),
		log:      logger,

		schedWarn: rate.Sometimes{Interval: schedWarnInterval},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cfg.LockTimeout <= 0 {
		b.cfg.LockTimeout = DefaultConfig().LockTimeout
	}
	if b.cfg.MaxConcurrent <= 0 {
		b.cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}

	b.lock = newTimedLock(b.cfg.LockTimeout, b.clock)
	b.pool = newPool(b.cfg.MaxConcurrent)
	return b
}

// Config 返回生效的配置
func (b *Bus) Config() Config {
	return b.cfg
}

// SetLogger 运行期替换日志，nil 恢复默认组件日志
func (b *Bus) SetLogger(l log.Leveled) {
	if l == nil {
		l = logger
	}
	b.logMu.Lock()
	b.log = l
	b.logMu.Unlock()
}

func (b *Bus) logger() log.Leveled {
	b.logMu.RLock()
	defer b.logMu.RUnlock()
	return b.log
}

// locked 在注册表锁内执行 fn，超时记录日志与指标
func (b *Bus) locked(op string, fn func() error) error {
	err := b.lock.withLock(fn)
	if err == nil {
		return nil
	}
	if isLockTimeout(err) {
		b.reporter.LockTimeout(op)
		b.logger().Warn("registry lock timeout", "op", op, "timeout", b.cfg.LockTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// reportReclaimed 上报惰性回收
func (b *Bus) reportReclaimed(event string, n int) {
	if n <= 0 {
		return
	}
	b.reporter.Reclaimed(event, n)
	b.reporter.Subscriptions(-n)
	b.logger().Debug("reclaimed subscriptions of inactive owners", "event", event, "count", n)
}

// ============================================================================
// EventBus 接口实现
// ============================================================================

// Subscribe 订阅事件
//
// 同一回调可以多次订阅同一事件，每次得到独立的订阅 ID。
func (b *Bus) Subscribe(event string, cb pkgif.Callback, owner pkgif.Owner) (string, error) {
	if event == "" {
		return "", ErrEmptyEvent
	}
	if cb.IsZero() {
		return "", ErrNilCallback
	}

	var id string
	err := b.locked("subscribe", func() error {
		id = b.reg.add(event, cb, owner).id
		return nil
	})
	if err != nil {
		return "", err
	}

	b.reporter.Subscriptions(1)
	b.logger().Debug("subscribed", "event", event, "id", id, "owner", ownerTypeName(owner))
	return id, nil
}

// Unsubscribe 按订阅 ID 取消订阅
func (b *Bus) Unsubscribe(event, id string) (bool, error) {
	var removed bool
	err := b.locked("unsubscribe", func() error {
		removed = b.reg.remove(event, id)
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		b.reporter.Subscriptions(-1)
		b.logger().Debug("unsubscribed", "event", event, "id", id)
	}
	return removed, nil
}

// UnsubscribeByOwner 移除 owner 的全部订阅
//
// nil owner 只匹配无归属的订阅。
func (b *Bus) UnsubscribeByOwner(owner pkgif.Owner) (int, error) {
	var n int
	err := b.locked("unsubscribe_by_owner", func() error {
		n = b.reg.removeByOwner(owner)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if n > 0 {
		b.reporter.Subscriptions(-n)
		b.logger().Debug("unsubscribed owner", "owner", ownerTypeName(owner), "count", n)
	}
	return n, nil
}

// UnsubscribeAll 移除事件的全部订阅
func (b *Bus) UnsubscribeAll(event string) (int, error) {
	var n int
	err := b.locked("unsubscribe_all", func() error {
		n = b.reg.removeAll(event)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if n > 0 {
		b.reporter.Subscriptions(-n)
		b.logger().Debug("unsubscribed all", "event", event, "count", n)
	}
	return n, nil
}

// SubscriberCount 返回事件当前有效的订阅数（会回收失效订阅）
func (b *Bus) SubscriberCount(event string) (int, error) {
	snapshot, err := b.snapshot("subscriber_count", event)
	if err != nil {
		return 0, err
	}
	return len(snapshot), nil
}

// Events 返回至少有一个订阅者的事件名（已排序）
func (b *Bus) Events() ([]string, error) {
	var names []string
	err := b.locked("events", func() error {
		names = b.reg.events()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Cleanup 立即回收所有事件中 owner 已失效的订阅
func (b *Bus) Cleanup() error {
	var reclaimed map[string]int
	err := b.locked("cleanup", func() error {
		reclaimed = b.reg.sweep()
		return nil
	})
	if err != nil {
		return err
	}

	for event, n := range reclaimed {
		b.reportReclaimed(event, n)
	}
	return nil
}

// Len 返回订阅总数（含尚未回收的失效订阅）
func (b *Bus) Len() (int, error) {
	var n int
	err := b.locked("len", func() error {
		n = b.reg.size()
		return nil
	})
	return n, err
}

var (
	_ pkgif.EventBus  = (*Bus)(nil)
	_ pkgif.Inspector = (*Bus)(nil)
)
