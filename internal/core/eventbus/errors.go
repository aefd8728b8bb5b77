package eventbus

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-eventstore/internal/core/metrics"
)

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrLockTimeout 注册表锁在超时时间内未能获取
	ErrLockTimeout = errors.New("eventbus lock timeout")
	// ErrEmptyEvent 事件名为空
	ErrEmptyEvent = errors.New("empty event name")
	// ErrNilCallback 回调未设置
	ErrNilCallback = errors.New("nil callback")
	// ErrArityMismatch 回调形态与发布的参数数量不符
	ErrArityMismatch = errors.New("callback does not accept published arguments")
	// ErrPoolSaturated 异步池已满
	ErrPoolSaturated = errors.New("async pool saturated")
	// ErrPoolClosed 异步池已关闭
	ErrPoolClosed = errors.New("async pool closed")
	// ErrCallbackPanic 回调发生 panic
	ErrCallbackPanic = errors.New("callback panicked")
)

// CallbackError 单个回调的失败
//
// 只出现在日志中，不会返回给发布方。
type CallbackError struct {
	Event          string
	SubscriptionID string
	Err            error
}

// Error 实现 error 接口
func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %s for event %q: %v", e.SubscriptionID, e.Event, e.Err)
}

// Unwrap 返回底层错误
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// failureReason 将回调错误映射为指标原因标签
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrCallbackPanic):
		return metrics.ReasonPanic
	case errors.Is(err, ErrArityMismatch):
		return metrics.ReasonArity
	default:
		return metrics.ReasonError
	}
}

// schedulingReason 将调度错误映射为指标原因标签
func schedulingReason(err error) string {
	if errors.Is(err, ErrPoolClosed) {
		return metrics.ReasonClosed
	}
	return metrics.ReasonSaturated
}
