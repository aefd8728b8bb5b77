// Package logger 提供 go-eventstore 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按组件配置日志级别
//   - 环境变量配置（EVENTSTORE_LOG_LEVEL, EVENTSTORE_LOG_FORMAT）
//   - 结构化日志
//
// 进程启动时调用 Install 安装默认 Handler，之后各包通过
// pkg/lib/log.Logger(component) 记录日志即可按组件过滤：
//
//	logger.Install(logger.ConfigFromEnv())
//
// 环境变量配置:
//
//	# 所有组件 info，core/eventbus 组件 debug
//	EVENTSTORE_LOG_LEVEL=core/eventbus=debug,info
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	installedMu sync.Mutex
	installed   *componentHandler
)

// Install 按配置创建 Handler 并设置为 slog 默认 logger
func Install(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	h := newHandler(cfg, &dynamicWriter{})

	installedMu.Lock()
	installed = h
	installedMu.Unlock()

	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// Logger 获取指定组件的 Logger
//
// 示例:
//
//	var log = logger.Logger("demo")
//	log.Info("screen switched", "screen", name)
func Logger(subsystem string) *slog.Logger {
	return slog.Default().With("component", subsystem)
}

// SetLevel 动态设置组件的日志级别
//
// 只对 Install 安装的 Handler 生效。
func SetLevel(subsystem string, level slog.Level) {
	installedMu.Lock()
	h := installed
	installedMu.Unlock()

	if h != nil {
		h.table.levelVar(subsystem).Set(level)
	}
}

// SetGlobalLevel 设置所有组件的日志级别
func SetGlobalLevel(level slog.Level) {
	installedMu.Lock()
	h := installed
	installedMu.Unlock()

	if h != nil {
		h.table.setAll(level)
	}
}

// SetOutput 设置全局日志输出目标
//
// 由于使用了 dynamicWriter，已创建的 logger 也会输出到新的 writer。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
