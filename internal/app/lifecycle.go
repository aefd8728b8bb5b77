package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dep2p/go-eventstore/internal/util/logger"
)

// App 应用句柄
//
// App 在 Runtime 之上提供信号等待与一次性关闭。
type App struct {
	runtime  *Runtime
	stopOnce sync.Once
	stopErr  error
	stopped  chan struct{}
}

// RunApp 构建并启动应用
//
// 示例:
//
//	a, err := app.RunApp(app.NewBootstrap(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a.Wait(ctx)
func RunApp(b *Bootstrap) (*App, error) {
	rt, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}
	return &App{
		runtime: rt,
		stopped: make(chan struct{}),
	}, nil
}

// Runtime 返回底层运行时
func (a *App) Runtime() *Runtime {
	return a.runtime
}

// Done 在 Stop 之后关闭
func (a *App) Done() <-chan struct{} {
	return a.stopped
}

// Wait 等待退出信号、ctx 结束或 Stop，随后关闭应用
func (a *App) Wait(ctx context.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		logger.Logger("app").Info("收到信号，正在退出", "signal", sig.String())
	case <-ctx.Done():
	case <-a.stopped:
		return a.stopErr
	}
	return a.Stop(context.Background())
}

// Stop 停止应用，可重复调用
func (a *App) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		if err := a.runtime.Stop(ctx); err != nil {
			a.stopErr = fmt.Errorf("停止运行时失败: %w", err)
		}
		close(a.stopped)
	})
	return a.stopErr
}
