package eventstore

import "github.com/dep2p/go-eventstore/internal/core/eventbus"

// 公共错误定义
var (
	// ErrLockTimeout 注册表锁在超时时间内未能获取
	ErrLockTimeout = eventbus.ErrLockTimeout

	// ErrEmptyEvent 事件名为空
	ErrEmptyEvent = eventbus.ErrEmptyEvent

	// ErrNilCallback 回调未设置
	ErrNilCallback = eventbus.ErrNilCallback

	// ErrArityMismatch 回调形态与发布参数数量不符
	ErrArityMismatch = eventbus.ErrArityMismatch

	// ErrPoolSaturated 异步池已满
	ErrPoolSaturated = eventbus.ErrPoolSaturated

	// ErrPoolClosed 异步池已关闭
	ErrPoolClosed = eventbus.ErrPoolClosed

	// ErrCallbackPanic 回调发生 panic
	ErrCallbackPanic = eventbus.ErrCallbackPanic
)

// CallbackError 单个回调的失败（只出现在日志中）
type CallbackError = eventbus.CallbackError
