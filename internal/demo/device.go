package demo

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-eventstore/config"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// Device 组装全部演示组件
type Device struct {
	cfg config.DemoConfig
	bus pkgif.EventBus

	Time    *TimeService
	Network *NetworkMonitor
	Button  *Button
	Screens *ScreenManager

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDevice 创建设备，clk 为 nil 时使用真实时钟
func NewDevice(bus pkgif.EventBus, clk clock.Clock, cfg config.DemoConfig) *Device {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = config.DefaultDemoConfig().TickInterval
	}
	return &Device{
		cfg:     cfg,
		bus:     bus,
		Time:    NewTimeService(bus, clk),
		Network: NewNetworkMonitor(bus),
		Button:  NewButton(bus),
		Screens: NewScreenManager(bus),
	}
}

// Start 显示欢迎屏并启动时间服务
//
// 重复调用无效果。
func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	if err := d.Screens.Start(); err != nil {
		return err
	}
	if d.cfg.StartConnected {
		if _, err := d.Network.SetState(true); err != nil {
			return multierr.Append(err, d.Screens.Close())
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		d.Time.Run(runCtx, time.Duration(d.cfg.TickInterval))
	}()

	logger.Info("device started", "tick", d.cfg.TickInterval, "connected", d.cfg.StartConnected)
	return nil
}

// Stop 停止时间服务并关闭屏幕
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel == nil {
		return nil
	}

	d.cancel()
	<-d.done
	d.cancel = nil
	return d.Screens.Close()
}

// Run 启动设备并运行到 ctx 结束
func (d *Device) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return d.Stop()
}

// Deliver 投递一条消息（异步发布 message.received）
func (d *Device) Deliver(msg string) (int, error) {
	return d.bus.PublishAsync(EventMessage, msg)
}
