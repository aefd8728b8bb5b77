// Package metrics 提供事件总线的指标收集
//
// 事件总线只依赖 Reporter 接口，具体实现：
//   - PromReporter: 基于 prometheus/client_golang 的计数器与仪表
//   - EventStats: 按事件名的有界统计（LRU 淘汰 + 60 秒速率窗口）
//   - Multi: 扇出到多个 Reporter
//   - Nop: 丢弃所有记录（默认）
//
// # 快速开始
//
//	stats, _ := metrics.NewEventStats(256, clock.New())
//	prom, _ := metrics.NewPromReporter(prometheus.NewRegistry(), "eventstore")
//	reporter := metrics.Multi(stats, prom)
//
//	reporter.Published("time.update", 3, true)
//	st, ok := stats.Snapshot("time.update")
//
// # 基数控制
//
// Prometheus 指标不带事件名标签，事件名由调用方任意给出，直接作为
// 标签会导致时间序列无界增长。按事件名的统计由 EventStats 负责，
// 容量满时淘汰最久未使用的事件。
//
// # Fx 模块
//
//	app := fx.New(
//	    metrics.Module,
//	    fx.Invoke(func(r metrics.Reporter) { ... }),
//	)
//
// 提供 prometheus.Registerer 时会额外注册 PromReporter。
//
// # 并发安全
//
// 所有实现都是并发安全的。
package metrics
