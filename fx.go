package eventstore

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-eventstore/internal/core/eventbus"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
)

// Module 返回 Fx 模块
//
// 提供 interfaces.EventBus、interfaces.Inspector 和 *Bus，以及
// metrics.Reporter。读取可选的 *config.Config 与 prometheus.Registerer。
// 同一个 Fx 应用内只有一个总线实例。
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    eventstore.Module(),
//	    fx.Invoke(func(bus eventstore.EventBus) { ... }),
//	)
func Module() fx.Option {
	return fx.Options(
		metrics.Module,
		eventbus.Module(),
	)
}
