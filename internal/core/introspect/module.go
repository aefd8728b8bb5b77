package introspect

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventstore/config"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Bus        pkgif.EventBus
	Inspector  pkgif.Inspector
	Stats      *metrics.EventStats `optional:"true"`
	Gatherer   prometheus.Gatherer `optional:"true"`
	UnifiedCfg *config.Config      `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Server *Server
}

// ProvideServer 提供自省服务
//
// 监听地址取自 metrics.listen_addr。
func ProvideServer(in ModuleInput) ModuleOutput {
	cfg := Config{
		Bus:       in.Bus,
		Inspector: in.Inspector,
		Stats:     in.Stats,
		Gatherer:  in.Gatherer,
	}
	if in.UnifiedCfg != nil {
		cfg.Addr = in.UnifiedCfg.Metrics.ListenAddr
	}
	return ModuleOutput{
		Server: New(cfg),
	}
}

// Module 返回 introspect fx 模块
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(ProvideServer),
		fx.Invoke(func(lc fx.Lifecycle, s *Server) {
			lc.Append(fx.StartStopHook(s.Start, s.Stop))
		}),
	)
}
