package eventbus

import (
	"reflect"
	"slices"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// ============================================================================
// 存活探测
// ============================================================================

// isAlive 探测 owner 是否存活
//
// nil 视为存活；实现了 LivenessReporter 的 owner 以 Active() 为准，
// 探测时 panic（如 nil 接收者）视为失效；其余 owner 视为存活。
// 在持锁状态下调用，Active() 不得回调总线。
func isAlive(owner pkgif.Owner) (alive bool) {
	if owner == nil {
		return true
	}
	lr, ok := owner.(pkgif.LivenessReporter)
	if !ok {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			alive = false
		}
	}()
	return lr.Active()
}

// sameOwner 按身份比较两个 owner
//
// nil 只匹配 nil；类型必须相同；引用类型按指针比较；
// 可比较的值类型按 == 比较；其余一律不相等。
func sameOwner(a, b pkgif.Owner) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if !va.Type().Comparable() {
		return false
	}
	// 含接口字段的结构体在运行期仍可能不可比较
	defer func() {
		if r := recover(); r != nil {
			same = false
		}
	}()
	return a == b
}

// reclaim 移除 event 中 owner 已失效的订阅，调用方持有锁
func (r *registry) reclaim(event string) int {
	subs, ok := r.subscribers[event]
	if !ok {
		return 0
	}
	before := len(subs)
	subs = slices.DeleteFunc(subs, func(s *subscription) bool {
		return !isAlive(s.owner)
	})
	n := before - len(subs)
	if n > 0 {
		r.store(event, subs)
		r.total -= n
	}
	return n
}

// activeCallbacks 回收失效订阅后返回 event 的有效订阅快照
//
// 快照是独立切片，之后的注册表修改不影响它。未知事件返回空快照。
func (r *registry) activeCallbacks(event string) (snapshot []*subscription, reclaimed int) {
	reclaimed = r.reclaim(event)
	subs := r.subscribers[event]
	snapshot = make([]*subscription, 0, len(subs))
	for _, s := range subs {
		if s.active && !s.callback.IsZero() {
			snapshot = append(snapshot, s)
		}
	}
	return snapshot, reclaimed
}

// ============================================================================
// Owner 辅助类型
// ============================================================================

// Handle 显式 owner 令牌
//
// 供没有自身对象的组件持有订阅：Release 后所有归属订阅在下一次
// 发布、计数或清理时被回收。
type Handle struct {
	id       uuid.UUID
	name     string
	released atomic.Bool
}

// NewHandle 创建 owner 令牌
func NewHandle(name string) *Handle {
	return &Handle{id: uuid.New(), name: name}
}

// ID 返回令牌 ID
func (h *Handle) ID() string { return h.id.String() }

// Name 返回令牌名称
func (h *Handle) Name() string { return h.name }

// Active 实现 LivenessReporter
func (h *Handle) Active() bool { return !h.released.Load() }

// Release 标记令牌失效
func (h *Handle) Release() { h.released.Store(true) }

// String 实现 fmt.Stringer
func (h *Handle) String() string {
	return h.name + "#" + h.id.String()[:8]
}

// weakOwner 基于弱引用的 owner
type weakOwner[T any] struct {
	p weak.Pointer[T]
}

// Active 目标被回收后返回 false
func (w weakOwner[T]) Active() bool {
	return w.p.Value() != nil
}

// WeakOwner 返回不持有 p 的 owner
//
// p 被垃圾回收后 owner 失效。对同一指针多次调用得到相等的值，
// 可直接用于 UnsubscribeByOwner。
func WeakOwner[T any](p *T) pkgif.Owner {
	return weakOwner[T]{p: weak.Make(p)}
}

var (
	_ pkgif.LivenessReporter = (*Handle)(nil)
	_ pkgif.LivenessReporter = weakOwner[struct{}]{}
)
