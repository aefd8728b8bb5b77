package config

import (
	"fmt"
	"time"
)

// EventBusConfig 事件总线配置
type EventBusConfig struct {
	// LockTimeout 注册表锁的最长等待时间
	// 超时后操作返回 ErrLockTimeout
	// 默认值: 100ms
	LockTimeout Duration `json:"lock_timeout"`

	// MaxConcurrent 同时运行的异步回调上限
	// 池满时的调度尝试记为调度失败
	// 默认值: 64
	MaxConcurrent int `json:"max_concurrent"`

	// CleanupInterval 定期清理失效 owner 的间隔，0 表示禁用
	// 默认值: 30s
	CleanupInterval Duration `json:"cleanup_interval"`

	// ShutdownTimeout 关闭时等待在途异步回调的最长时间
	// 默认值: 5s
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

// DefaultEventBusConfig 返回默认的事件总线配置
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		LockTimeout:     Duration(100 * time.Millisecond),
		MaxConcurrent:   64,
		CleanupInterval: Duration(30 * time.Second),
		ShutdownTimeout: Duration(5 * time.Second),
	}
}

// Validate 验证事件总线配置
func (c *EventBusConfig) Validate() error {
	if c.LockTimeout <= 0 {
		return fmt.Errorf("event_bus: lock_timeout must be positive, got %s", c.LockTimeout)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("event_bus: max_concurrent must be positive, got %d", c.MaxConcurrent)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("event_bus: cleanup_interval cannot be negative, got %s", c.CleanupInterval)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("event_bus: shutdown_timeout cannot be negative, got %s", c.ShutdownTimeout)
	}
	return nil
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否启用指标收集
	Enabled bool `json:"enabled"`

	// Namespace Prometheus 指标命名空间
	Namespace string `json:"namespace"`

	// StatsCapacity 按事件统计的最大事件名数量（LRU 淘汰）
	StatsCapacity int `json:"stats_capacity"`

	// ListenAddr /metrics 监听地址，空表示不对外暴露
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:       true,
		Namespace:     "eventstore",
		StatsCapacity: 256,
	}
}

// Validate 验证指标配置
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Namespace == "" {
		return fmt.Errorf("metrics: namespace cannot be empty")
	}
	if c.StatsCapacity <= 0 {
		return fmt.Errorf("metrics: stats_capacity must be positive, got %d", c.StatsCapacity)
	}
	return nil
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 级别配置，格式同 EVENTSTORE_LOG_LEVEL
	// 示例: "core/eventbus=debug,info"
	Level string `json:"level"`

	// Format 输出格式：text 或 json
	Format string `json:"format"`

	// AddSource 是否输出源码位置
	AddSource bool `json:"add_source"`

	// FxEvents 是否输出 fx 生命周期事件（zap）
	FxEvents bool `json:"fx_events"`

	// File 日志文件路径，空表示 stderr
	File string `json:"file,omitempty"`
}

// DefaultLogConfig 返回默认的日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c *LogConfig) Validate() error {
	switch c.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("log: unsupported format %q", c.Format)
	}
}

// DemoConfig 演示设备配置
type DemoConfig struct {
	// TickInterval 时间服务发布 time.update 的间隔
	TickInterval Duration `json:"tick_interval"`

	// StartConnected 启动时网络是否已连接
	StartConnected bool `json:"start_connected"`
}

// DefaultDemoConfig 返回默认的演示配置
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		TickInterval:   Duration(time.Second),
		StartConnected: false,
	}
}

// Validate 验证演示配置
func (c *DemoConfig) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("demo: tick_interval must be positive, got %s", c.TickInterval)
	}
	return nil
}
