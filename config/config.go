// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载配置，环境变量覆盖
//   - 支持预设配置（embedded/desktop/server/minimal）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.EventBus.MaxConcurrent = 16
//
//	// 应用预设
//	config.ApplyPreset(cfg, "embedded")
//
//	// 从文件加载
//	cfg, err := config.LoadFile("eventstore.json")
package config

import "fmt"

// Config 是 go-eventstore 的完整配置结构
//
// 配置按照功能模块组织：
//   - EventBus: 事件总线（锁超时、异步并发上限、定期清理）
//   - Metrics: 指标收集
//   - Log: 日志
//   - Demo: 演示设备（仅 cmd/eventstore-demo 使用）
type Config struct {
	// EventBus 事件总线配置
	EventBus EventBusConfig `json:"event_bus"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Demo 演示设备配置
	Demo DemoConfig `json:"demo"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		EventBus: DefaultEventBusConfig(),
		Metrics:  DefaultMetricsConfig(),
		Log:      DefaultLogConfig(),
		Demo:     DefaultDemoConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置是否有效，如果发现无效配置则返回错误。
func (c *Config) Validate() error {
	if err := c.EventBus.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Demo.Validate(); err != nil {
		return err
	}
	return nil
}

// String 返回配置摘要（用于启动日志）
func (c *Config) String() string {
	return fmt.Sprintf("event_bus{lock_timeout=%s max_concurrent=%d cleanup_interval=%s} metrics{enabled=%t} log{level=%s format=%s}",
		c.EventBus.LockTimeout, c.EventBus.MaxConcurrent, c.EventBus.CleanupInterval,
		c.Metrics.Enabled, c.Log.Level, c.Log.Format)
}
