package eventbus

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventstore/config"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config   `optional:"true"`
	Reporter   metrics.Reporter `optional:"true"`
	Clock      clock.Clock      `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bus       *Bus
	EventBus  pkgif.EventBus
	Inspector pkgif.Inspector
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus(p Params) Result {
	bus := NewBus(
		WithConfig(ConfigFromUnified(p.UnifiedCfg)),
		WithReporter(p.Reporter),
		WithClock(p.Clock),
	)
	return Result{
		Bus:       bus,
		EventBus:  bus,
		Inspector: bus,
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC  fx.Lifecycle
	Bus *Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Bus.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return input.Bus.Close(ctx)
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "事件总线模块，提供按事件名的回调发布/订阅机制"
)
