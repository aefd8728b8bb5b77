package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventstore/config"
)

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// WithConfig 设置配置
func WithConfig(cfg *config.Config) BootstrapOption {
	return func(b *Bootstrap) {
		b.config = cfg
	}
}

// WithStartTimeout 设置启动超时，非正值忽略
func WithStartTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		if d > 0 {
			b.startTimeout = d
		}
	}
}

// WithStopTimeout 设置停止超时，非正值忽略
func WithStopTimeout(d time.Duration) BootstrapOption {
	return func(b *Bootstrap) {
		if d > 0 {
			b.stopTimeout = d
		}
	}
}

// WithRegistry 使用外部 Prometheus Registry
//
// 未设置时启用指标会创建独立的 Registry。
func WithRegistry(reg *prometheus.Registry) BootstrapOption {
	return func(b *Bootstrap) {
		b.registry = reg
	}
}

// WithFxOptions 追加 fx 选项（例如挂在总线上的业务模块）
func WithFxOptions(opts ...fx.Option) BootstrapOption {
	return func(b *Bootstrap) {
		b.extra = append(b.extra, opts...)
	}
}
