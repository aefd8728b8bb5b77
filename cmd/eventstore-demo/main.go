// Package main 提供 eventstore 演示设备命令行入口
//
// 在进程内启动事件总线与模拟设备（时间服务、网络监视器、按键、屏幕），
// 按脚本模拟用户操作，退出时打印订阅快照。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	eventstore "github.com/dep2p/go-eventstore"
	"github.com/dep2p/go-eventstore/internal/app"
	"github.com/dep2p/go-eventstore/internal/demo"
	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

var logger = log.Logger("cmd/eventstore-demo")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径")
	preset      = flag.String("preset", "desktop", "预设配置 (embedded/desktop/server/minimal)")
	duration    = flag.Duration("duration", 0, "运行时长（0 = 直到 Ctrl+C）")
	metricsAddr = flag.String("metrics-addr", "", "自省与 Prometheus 指标监听地址（如 127.0.0.1:9090）")
	connected   = flag.Bool("connected", false, "启动时网络已连接")
	tick        = flag.Duration("tick", time.Second, "time.update 发布间隔")
	scripted    = flag.Bool("script", true, "按脚本模拟按键、联网与消息")

	logFile  = flag.String("log", "", "日志文件路径")
	logLevel = flag.String("log-level", "", "日志级别（如 core/eventbus=debug,info）")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	var device *demo.Device
	rt, err := app.NewBootstrap(cfg,
		app.WithFxOptions(demo.Module(), fx.Populate(&device)),
	).Build()
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	fmt.Printf("📦 %s\n", eventstore.VersionInfo())
	logger.Info("启动演示设备", "version", eventstore.Version, "config", cfg.String())

	if rt.Server != nil {
		fmt.Printf("自省服务: http://%s/debug/introspect\n", rt.Server.Addr())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		var c context.CancelFunc
		ctx, c = context.WithTimeout(ctx, *duration)
		defer c()
	}

	if *scripted {
		go simulate(ctx, device, time.Duration(cfg.Demo.TickInterval))
	}

	fmt.Println("设备已启动，按 Ctrl+C 退出")
	<-ctx.Done()
	fmt.Println("\n正在关闭...")

	fmt.Printf("当前屏幕: %s\n", device.Screens.Current().View())
	if err := rt.Inspector.WriteDebugInfo(os.Stdout); err != nil {
		logger.Warn("write debug info failed", "err", err)
	}
	printStats(rt)

	return rt.Stop(context.Background())
}

// simulate 模拟用户操作
//
// 第 2 拍按键离开欢迎屏，第 4 拍联网，之后每 3 拍投递一条消息并按键滚动，
// 第 12 拍断网。
func simulate(ctx context.Context, d *demo.Device, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for step := 1; ; step++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var err error
		switch {
		case step == 2:
			_, err = d.Button.Press()
		case step == 4:
			_, err = d.Network.SetState(true)
		case step == 12:
			_, err = d.Network.SetState(false)
		case step > 4 && step%3 == 0:
			_, err = d.Deliver(fmt.Sprintf("message #%d", step/3))
			if err == nil {
				_, err = d.Button.Press()
			}
		}
		if err != nil {
			logger.Warn("simulate step failed", "step", step, "err", err)
		}
	}
}

// printStats 打印按事件统计
func printStats(rt *app.Runtime) {
	if rt.Stats == nil {
		return
	}
	fmt.Println("=== Event Stats ===")
	for _, st := range rt.Stats.All() {
		fmt.Printf("%-18s published=%d delivered=%d failures=%d sched_failures=%d reclaimed=%d rate=%.2f/s\n",
			st.Event, st.Published, st.Delivered, st.Failures, st.SchedulingFailures, st.Reclaimed, st.Rate)
	}
}

// isFlagSet 判断参数是否显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("eventstore-demo %s\n", eventstore.Version)
	if eventstore.GitCommit != "" {
		fmt.Printf("  commit: %s\n", eventstore.GitCommit)
	}
	if eventstore.BuildDate != "" {
		fmt.Printf("  built:  %s\n", eventstore.BuildDate)
	}
}
