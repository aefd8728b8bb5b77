// Package interfaces 定义 go-eventstore 公共接口
//
// 本文件定义 EventBus 接口，提供按事件名发布/订阅回调的功能。
package interfaces

import "io"

// EventBus 定义事件总线接口
//
// 组件通过事件名（精确字符串匹配）订阅回调，其他组件发布事件，
// 双方互不持有引用。唯一会返回给普通调用方的运行期错误是锁超时。
type EventBus interface {
	// Subscribe 订阅事件，返回订阅 ID
	//
	// owner 可选（nil 表示无归属），仅用于存活探测和批量移除。
	Subscribe(event string, cb Callback, owner Owner) (string, error)

	// Unsubscribe 按订阅 ID 取消订阅，返回是否实际移除
	Unsubscribe(event, id string) (bool, error)

	// UnsubscribeByOwner 移除归属于 owner 的全部订阅，返回移除数量
	UnsubscribeByOwner(owner Owner) (int, error)

	// UnsubscribeAll 移除某事件的全部订阅，返回移除数量
	UnsubscribeAll(event string) (int, error)

	// PublishSync 同步发布，按订阅顺序返回每个回调的结果
	PublishSync(event string, args ...any) ([]any, error)

	// Publish 是 PublishSync 的别名
	Publish(event string, args ...any) ([]any, error)

	// PublishAsync 异步发布，返回成功调度的回调数量
	PublishAsync(event string, args ...any) (int, error)

	// SubscriberCount 返回事件当前有效的订阅数
	SubscriberCount(event string) (int, error)

	// Events 返回至少有一个订阅者的事件名
	Events() ([]string, error)

	// Cleanup 立即清理所有 owner 已失效的订阅
	Cleanup() error
}

// Inspector 定义调试自省接口
type Inspector interface {
	// DebugInfo 返回全部订阅的快照
	DebugInfo() ([]SubscriptionInfo, error)

	// WriteDebugInfo 以文本形式输出订阅快照
	WriteDebugInfo(w io.Writer) error
}

// Owner 订阅归属者
//
// Owner 是非拥有型的身份引用：总线只用它做身份比较和存活探测，
// 从不参与其生命周期管理。引用类型按指针身份比较，可比较的值类型
// （如 WeakOwner 返回的句柄）按 == 比较。
type Owner = any

// LivenessReporter 可选的存活信号
//
// 实现了该接口的 owner，其 Active() 返回值即为权威存活状态；
// 未实现的 owner 默认视为存活。
type LivenessReporter interface {
	Active() bool
}

// SubscriptionInfo 订阅快照（用于调试输出）
type SubscriptionInfo struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	OwnerType string `json:"owner_type"` // 无 owner 时为 "None"
	Active    bool   `json:"active"`
	Shape     string `json:"shape"`
}
