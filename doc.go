// Package eventstore 提供进程内的事件发布/订阅总线
//
// 设备应用中的组件（屏幕、网络监控、时间服务、按键）通过事件名
// 互相通信，彼此不持有引用。总线负责注册订阅、分发事件、隔离
// 故障回调，并在 owner 失效后自动回收其订阅。
//
// # 核心概念
//
//   - Event: 事件名，精确字符串匹配
//   - Subscription: (事件, 回调, owner) 三元组，带唯一 ID
//   - Owner: 可选的归属身份，用于批量取消和存活探测
//   - Snapshot: 发布开始时在锁内取得的有效回调列表
//
// # 快速开始
//
//	import "github.com/dep2p/go-eventstore"
//
//	// 1. 订阅（screen 实现 Active() bool 时按其返回值判断存活）
//	id, err := eventstore.Subscribe("network.status",
//	    eventstore.OnPayload(func(event string, status any) (any, error) {
//	        return nil, screen.Show(status)
//	    }), screen)
//
//	// 2. 发布
//	results, err := eventstore.PublishSync("network.status", "CONNECTED")
//	n, err := eventstore.PublishAsync("time.update", "12:00:00")
//
//	// 3. 销毁时批量取消
//	eventstore.UnsubscribeByOwner(screen)
//
// # 单例与注入
//
// 包级函数委托给 Default() 返回的进程级总线，首次使用时按默认配置
// 和 EVENTSTORE_* 环境变量创建。需要显式注入的应用使用 New 创建
// 独立实例，或通过 Module() 在 Fx 应用中获得 interfaces.EventBus。
//
// # 错误
//
// 普通调用方只会看到 ErrLockTimeout（以及 Subscribe 的参数错误）。
// 回调错误、panic 与异步调度失败只记录日志和指标，不影响发布方。
//
// # 配置
//
// 环境变量：
//
//	EVENTSTORE_LOCK_TIMEOUT=100ms
//	EVENTSTORE_MAX_CONCURRENT=64
//	EVENTSTORE_CLEANUP_INTERVAL=30s
//	EVENTSTORE_LOG_LEVEL=core/eventbus=debug,info
package eventstore
