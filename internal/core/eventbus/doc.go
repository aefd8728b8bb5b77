// Package eventbus 实现进程内事件总线
//
// 组件按事件名（精确字符串匹配）订阅回调，其他组件发布事件，
// 双方互不持有引用。支持：
//   - 同步发布（按订阅顺序执行，收集结果）
//   - 异步发布（有界并发池，不阻塞发布方）
//   - owner 归属与批量取消订阅
//   - 失效 owner 的惰性回收与定期清理
//   - 回调故障隔离（错误与 panic 只记录，不影响其他订阅者）
//
// # 快速开始
//
//	bus := eventbus.NewBus()
//	defer bus.Close(context.Background())
//
//	id, _ := bus.Subscribe("network.status",
//	    pkgif.OnPayload(func(event string, status any) (any, error) {
//	        return nil, render(status)
//	    }), screen)
//
//	results, _ := bus.PublishSync("network.status", "CONNECTED")
//	n, _ := bus.PublishAsync("time.update", "12:00:00")
//
//	bus.UnsubscribeByOwner(screen)
//
// # 回调形态
//
// 订阅时用 OnEvent / OnPayload / OnArgs 选择形态，发布时按参数数量调用：
// 0 个参数调用 EventFunc，1 个参数调用 PayloadFunc，VariadicFunc 接受任意数量。
// 形态不符记为回调失败（ErrArityMismatch）。
//
// # Owner 与存活
//
// owner 只用于身份比较与存活探测，总线不参与其生命周期。
// 实现 LivenessReporter 的 owner 以 Active() 为准，其余视为存活。
// 失效 owner 的订阅在发布、计数或 Cleanup 时被回收。
// Active() 在持锁状态下调用，不得回调总线。
//
// # Fx 模块
//
//	app := fx.New(
//	    metrics.Module,
//	    eventbus.Module(),
//	    fx.Invoke(func(bus pkgif.EventBus) { ... }),
//	)
//
// OnStart 启动定期清理，OnStop 停止清理并等待在途异步回调。
//
// # 并发安全
//
// 注册表只在带超时的锁内修改，锁等待超过 LockTimeout（默认 100ms）
// 返回 ErrLockTimeout。回调永远在锁外执行，可以在回调中重入订阅、
// 取消订阅或发布。同步回调挂起会阻塞其发布方。
package eventbus
