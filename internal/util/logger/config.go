// Package logger 提供统一的日志配置
//
// 支持通过环境变量配置日志级别：
//   - EVENTSTORE_LOG_LEVEL: 设置日志级别，支持按组件配置
//     格式: 组件=级别,组件=级别,默认级别
//     示例: core/eventbus=debug,demo=warn,info
//   - EVENTSTORE_LOG_FORMAT: 日志格式 (text 或 json)
//   - EVENTSTORE_LOG_ADD_SOURCE: 是否输出源码位置
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// 环境变量名
const (
	EnvLevel     = "EVENTSTORE_LOG_LEVEL"
	EnvFormat    = "EVENTSTORE_LOG_FORMAT"
	EnvAddSource = "EVENTSTORE_LOG_ADD_SOURCE"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// SubsystemLevels 各组件的日志级别
	SubsystemLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否添加源码位置
	AddSource bool
}

// DefaultConfig 返回默认配置（info 级别，文本格式）
func DefaultConfig() *Config {
	return &Config{
		DefaultLevel:    slog.LevelInfo,
		SubsystemLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}
}

// LevelForSubsystem 获取指定组件的日志级别
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

// ParseLevels 解析级别配置字符串并合并到 c
//
// 格式: subsystem=level,subsystem=level,defaultLevel
func (c *Config) ParseLevels(levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "=") {
			kv := strings.SplitN(part, "=", 2)
			subsystem := strings.TrimSpace(kv[0])
			if level, ok := ParseLevel(strings.TrimSpace(kv[1])); ok && subsystem != "" {
				c.SubsystemLevels[subsystem] = level
			}
			continue
		}

		if level, ok := ParseLevel(part); ok {
			c.DefaultLevel = level
		}
	}
}

// ApplyEnv 应用环境变量覆盖
func (c *Config) ApplyEnv() {
	if levelStr := os.Getenv(EnvLevel); levelStr != "" {
		c.ParseLevels(levelStr)
	}

	if formatStr := os.Getenv(EnvFormat); formatStr != "" {
		c.Format = ParseFormat(formatStr)
	}

	if addSourceStr := os.Getenv(EnvAddSource); addSourceStr != "" {
		c.AddSource = addSourceStr != "false" && addSourceStr != "0"
	}
}

// ConfigFromEnv 从环境变量解析配置
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// ParseFormat 解析日志格式名称，未知值按文本处理
func ParseFormat(name string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(name), "json") {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
