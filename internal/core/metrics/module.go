package metrics

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventstore/config"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool

	// Namespace Prometheus 命名空间
	Namespace string

	// StatsCapacity 按事件统计的容量
	StatsCapacity int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	def := config.DefaultMetricsConfig()
	return Config{
		Enabled:       def.Enabled,
		Namespace:     def.Namespace,
		StatsCapacity: def.StatsCapacity,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:       cfg.Metrics.Enabled,
		Namespace:     cfg.Metrics.Namespace,
		StatsCapacity: cfg.Metrics.StatsCapacity,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Clock      clock.Clock           `optional:"true"`
}

// Result Metrics 模块输出
//
// 关闭指标时 Reporter 为 Nop()，Stats 为 nil。
type Result struct {
	fx.Out

	Reporter Reporter
	Stats    *EventStats
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建 Reporter
func NewFromParams(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled {
		return Result{Reporter: Nop()}, nil
	}

	stats, err := NewEventStats(cfg.StatsCapacity, p.Clock)
	if err != nil {
		return Result{}, err
	}

	var prom Reporter
	if p.Registerer != nil {
		pr, err := NewPromReporter(p.Registerer, cfg.Namespace)
		if err != nil {
			return Result{}, err
		}
		prom = pr
	}

	return Result{
		Reporter: Multi(stats, prom),
		Stats:    stats,
	}, nil
}
