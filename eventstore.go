package eventstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dep2p/go-eventstore/internal/core/eventbus"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

var logger = log.Logger("eventstore")

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Bus 事件总线实现
	Bus = eventbus.Bus

	// EventBus 事件总线接口
	EventBus = pkgif.EventBus

	// Callback 订阅回调
	Callback = pkgif.Callback

	// EventFunc 只接收事件名的回调
	EventFunc = pkgif.EventFunc

	// PayloadFunc 接收单个载荷的回调
	PayloadFunc = pkgif.PayloadFunc

	// VariadicFunc 接收任意参数的回调
	VariadicFunc = pkgif.VariadicFunc

	// Owner 订阅归属者
	Owner = pkgif.Owner

	// SubscriptionInfo 订阅快照
	SubscriptionInfo = pkgif.SubscriptionInfo

	// Handle 显式 owner 令牌
	Handle = eventbus.Handle
)

// OnEvent 包装只接收事件名的回调
func OnEvent(fn EventFunc) Callback { return pkgif.OnEvent(fn) }

// OnPayload 包装接收单个载荷的回调
func OnPayload(fn PayloadFunc) Callback { return pkgif.OnPayload(fn) }

// OnArgs 包装接收任意参数的回调
func OnArgs(fn VariadicFunc) Callback { return pkgif.OnArgs(fn) }

// NewHandle 创建 owner 令牌
func NewHandle(name string) *Handle { return eventbus.NewHandle(name) }

// WeakOwner 返回不持有 p 的 owner，p 被回收后失效
func WeakOwner[T any](p *T) Owner { return eventbus.WeakOwner(p) }

// ════════════════════════════════════════════════════════════════════════════
//                              构造
// ════════════════════════════════════════════════════════════════════════════

// New 创建独立的事件总线
//
// 返回的总线尚未启动定期清理，需要时调用 Start；用完调用 Close。
func New(opts ...Option) (*Bus, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}
	if err := o.config.EventBus.Validate(); err != nil {
		return nil, err
	}
	return eventbus.NewBus(o.busOptions()...), nil
}

var (
	defaultOnce sync.Once
	defaultBus  *Bus
)

// Default 返回进程级总线
//
// 首次调用时按默认配置和 EVENTSTORE_* 环境变量创建并启动定期清理。
// 环境变量非法时记录告警并使用默认配置。
func Default() *Bus {
	defaultOnce.Do(func() {
		bus, err := New(WithEnv())
		if err != nil {
			logger.Warn("invalid environment configuration, using defaults", "err", err)
			bus = eventbus.NewBus()
		}
		_ = bus.Start(context.Background())
		defaultBus = bus
	})
	return defaultBus
}

// ════════════════════════════════════════════════════════════════════════════
//                              包级便捷函数
// ════════════════════════════════════════════════════════════════════════════

// Subscribe 在默认总线上订阅
func Subscribe(event string, cb Callback, owner Owner) (string, error) {
	return Default().Subscribe(event, cb, owner)
}

// Unsubscribe 在默认总线上取消订阅
func Unsubscribe(event, id string) (bool, error) {
	return Default().Unsubscribe(event, id)
}

// UnsubscribeByOwner 在默认总线上按 owner 取消订阅
func UnsubscribeByOwner(owner Owner) (int, error) {
	return Default().UnsubscribeByOwner(owner)
}

// UnsubscribeAll 在默认总线上移除事件的全部订阅
func UnsubscribeAll(event string) (int, error) {
	return Default().UnsubscribeAll(event)
}

// PublishSync 在默认总线上同步发布
func PublishSync(event string, args ...any) ([]any, error) {
	return Default().PublishSync(event, args...)
}

// Publish 是 PublishSync 的别名
func Publish(event string, args ...any) ([]any, error) {
	return Default().Publish(event, args...)
}

// PublishAsync 在默认总线上异步发布
func PublishAsync(event string, args ...any) (int, error) {
	return Default().PublishAsync(event, args...)
}

// SubscriberCount 返回默认总线上事件的有效订阅数
func SubscriberCount(event string) (int, error) {
	return Default().SubscriberCount(event)
}

// Events 返回默认总线上有订阅者的事件名
func Events() ([]string, error) {
	return Default().Events()
}

// Cleanup 立即清理默认总线上失效 owner 的订阅
func Cleanup() error {
	return Default().Cleanup()
}

// DebugInfo 返回默认总线的订阅快照
func DebugInfo() ([]SubscriptionInfo, error) {
	return Default().DebugInfo()
}

// WriteDebugInfo 输出默认总线的订阅快照
func WriteDebugInfo(w io.Writer) error {
	return Default().WriteDebugInfo(w)
}

// SetLogger 替换默认总线的日志，nil 恢复默认
func SetLogger(l log.Leveled) {
	Default().SetLogger(l)
}

// Append 订阅无归属的回调
//
// Deprecated: 使用 Subscribe(event, cb, nil)。
func Append(event string, cb Callback) (string, error) {
	return Subscribe(event, cb, nil)
}
