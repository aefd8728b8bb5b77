package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-eventstore/internal/core/eventbus"
	"github.com/dep2p/go-eventstore/internal/core/introspect"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// Runtime 表示一个已通过 fx 组装并启动的事件总线运行时。
//
// 关闭指标时 Stats 与 Gatherer 为 nil；未配置 metrics.listen_addr 时 Server 为 nil。
type Runtime struct {
	Bus       *eventbus.Bus
	EventBus  pkgif.EventBus
	Inspector pkgif.Inspector
	Stats     *metrics.EventStats
	Gatherer  prometheus.Gatherer
	Server    *introspect.Server

	stop func(ctx context.Context) error
}

// Stop 停止运行时（触发 fx 生命周期 OnStop）。
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
