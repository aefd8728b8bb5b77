// Package app 提供 go-eventstore 应用编排层
//
// app 包负责：
// - 日志安装
// - fx 模块组装
// - 生命周期管理
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dep2p/go-eventstore/config"
	"github.com/dep2p/go-eventstore/internal/core/eventbus"
	"github.com/dep2p/go-eventstore/internal/core/introspect"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
	"github.com/dep2p/go-eventstore/internal/util/logger"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// 默认启停超时
const (
	DefaultStartTimeout = 30 * time.Second
	DefaultStopTimeout  = 30 * time.Second
)

// Bootstrap 应用引导程序
//
// Bootstrap 负责：
// - 安装日志（级别、格式、输出文件）
// - 组装 fx 模块
// - 管理应用生命周期
type Bootstrap struct {
	config *config.Config

	startTimeout time.Duration
	stopTimeout  time.Duration
	registry     *prometheus.Registry
	extra        []fx.Option

	fxApp   *fx.App
	logFile *os.File
	zapLog  *zap.Logger

	bus       *eventbus.Bus
	eventBus  pkgif.EventBus
	inspector pkgif.Inspector
	stats     *metrics.EventStats
	server    *introspect.Server
}

// NewBootstrap 创建引导程序
//
// cfg 为 nil 时使用默认配置。
func NewBootstrap(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		config:       cfg,
		startTimeout: DefaultStartTimeout,
		stopTimeout:  DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.config == nil {
		b.config = config.NewConfig()
	}
	return b
}

// Config 返回引导程序使用的配置
func (b *Bootstrap) Config() *config.Config {
	return b.config
}

// Build 构建并启动运行时
//
// 启动 fx 应用会触发总线的定期清理；返回的 Runtime.Stop 负责逆序关闭。
func (b *Bootstrap) Build() (*Runtime, error) {
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	// 应用日志配置（必须在所有模块初始化之前）
	if err := b.setupLogging(); err != nil {
		return nil, fmt.Errorf("设置日志失败: %w", err)
	}

	modules := b.setupModules()

	b.fxApp = fx.New(
		fx.Options(modules...),
		b.fxLogger(),
		fx.Populate(&b.bus, &b.eventBus, &b.inspector, &b.stats),
	)
	if err := b.fxApp.Err(); err != nil {
		return nil, multierr.Append(fmt.Errorf("组装模块失败: %w", err), b.closeLogging())
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.startTimeout)
	defer cancel()

	if err := b.fxApp.Start(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("启动应用失败: %w", err), b.closeLogging())
	}

	log := logger.Logger("app")
	log.Info("eventstore started", "config", b.config.String())

	rt := &Runtime{
		Bus:       b.bus,
		EventBus:  b.eventBus,
		Inspector: b.inspector,
		Stats:     b.stats,
		Server:    b.server,
		stop:      b.Stop,
	}
	if b.registry != nil {
		rt.Gatherer = b.registry
	}
	return rt, nil
}

// Stop 停止应用
//
// 未完成 Build 时直接返回。
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, b.stopTimeout)
	defer cancel()

	err := b.fxApp.Stop(stopCtx)
	if err != nil {
		err = fmt.Errorf("停止应用失败: %w", err)
	}
	return multierr.Append(err, b.closeLogging())
}

// setupModules 组装所有 fx 模块
func (b *Bootstrap) setupModules() []fx.Option {
	modules := []fx.Option{
		// 配置（Tier 0）
		fx.Supply(b.config),

		// 监控（Tier 1）
		b.setupMonitoringLayer(),

		// 事件总线（Tier 2）
		CoreModules(),

		// 自省服务（Tier 3）
		b.setupIntrospectLayer(),
	}
	return append(modules, b.extra...)
}

// setupMonitoringLayer 监控层模块
//
// 启用指标时提供 Prometheus Registry，metrics 模块据此注册计数器。
func (b *Bootstrap) setupMonitoringLayer() fx.Option {
	if !b.config.Metrics.Enabled {
		return MonitoringModules(nil)
	}
	if b.registry == nil {
		b.registry = NewRegistry()
	}
	return MonitoringModules(b.registry)
}

// setupIntrospectLayer 自省服务模块
//
// 仅在配置了 metrics.listen_addr 时加载。
func (b *Bootstrap) setupIntrospectLayer() fx.Option {
	if b.config.Metrics.ListenAddr == "" {
		return fx.Options()
	}
	return fx.Options(
		IntrospectModules(),
		fx.Populate(&b.server),
	)
}

// setupLogging 配置日志输出
//
// 如果指定了 Log.File，将所有日志重定向到文件。
func (b *Bootstrap) setupLogging() error {
	lc := logger.DefaultConfig()
	lc.ParseLevels(b.config.Log.Level)
	lc.Format = logger.ParseFormat(b.config.Log.Format)
	lc.AddSource = b.config.Log.AddSource
	lc.ApplyEnv()
	logger.Install(lc)

	if b.config.Log.File == "" {
		return nil
	}

	file, err := os.OpenFile(b.config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}
	b.logFile = file
	logger.SetOutput(file)

	logger.Logger("app").Info("日志文件初始化成功", "path", b.config.Log.File)
	return nil
}

// closeLogging 恢复 stderr 输出并关闭日志文件
func (b *Bootstrap) closeLogging() error {
	var err error
	if b.zapLog != nil {
		// stderr 上的 Sync 在部分平台返回 EINVAL，忽略
		_ = b.zapLog.Sync()
		b.zapLog = nil
	}
	if b.logFile != nil {
		logger.SetOutput(os.Stderr)
		err = b.logFile.Close()
		b.logFile = nil
	}
	return err
}

// fxLogger 选择 fx 生命周期事件的日志器
func (b *Bootstrap) fxLogger() fx.Option {
	if !b.config.Log.FxEvents {
		return fx.NopLogger
	}

	var w io.Writer = os.Stderr
	if b.logFile != nil {
		w = b.logFile
	}
	b.zapLog = newZapLogger(w, b.config.Log.Format, lowestLevel(b.config.Log.Level))
	zl := b.zapLog
	return fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: zl.Named("fx")}
	})
}

// newZapLogger 创建与 slog 输出格式一致的 zap logger
func newZapLogger(w io.Writer, format string, level slog.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapLevel(level))
	return zap.New(core)
}

// lowestLevel 返回级别配置中的默认级别
func lowestLevel(levelStr string) slog.Level {
	lc := logger.DefaultConfig()
	lc.ParseLevels(levelStr)
	return lc.DefaultLevel
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
