package demo

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventstore/config"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// Params Fx 模块输入参数
type Params struct {
	fx.In

	Bus        pkgif.EventBus
	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// Module 返回演示设备 Fx 模块
//
// OnStart 启动设备，OnStop 停止设备。
func Module() fx.Option {
	return fx.Module("demo",
		fx.Provide(NewFromParams),
		fx.Invoke(func(lc fx.Lifecycle, d *Device) {
			lc.Append(fx.Hook{
				OnStart: d.Start,
				OnStop: func(context.Context) error {
					return d.Stop()
				},
			})
		}),
	)
}

// NewFromParams 从参数创建设备
func NewFromParams(p Params) *Device {
	cfg := config.DefaultDemoConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Demo
	}
	return NewDevice(p.Bus, p.Clock, cfg)
}
