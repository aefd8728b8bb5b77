// Package app 提供模块集合清单
//
// modulesets.go 集中维护"哪些模块属于哪个 Tier"，是 Bootstrap 组装的唯一模块来源。
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventstore/internal/core/eventbus"
	"github.com/dep2p/go-eventstore/internal/core/introspect"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
)

// ============================================================================
//                              模块集合
// ============================================================================

// CoreModules 核心模块组合
//
// 事件总线始终加载。
func CoreModules() fx.Option {
	return fx.Options(
		eventbus.Module(),
	)
}

// MonitoringModules 监控模块组合
//
// reg 非 nil 时同时以 Registerer 和 Gatherer 提供给其他模块。
func MonitoringModules(reg *prometheus.Registry) fx.Option {
	if reg == nil {
		return metrics.Module
	}
	return fx.Options(
		fx.Provide(
			func() prometheus.Registerer { return reg },
			func() prometheus.Gatherer { return reg },
		),
		metrics.Module,
	)
}

// IntrospectModules 自省服务模块组合
func IntrospectModules() fx.Option {
	return fx.Options(
		introspect.Module(),
	)
}

// NewRegistry 创建带进程与运行时采集器的 Registry
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
