package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 锁超时非正 -> 使用默认值
//   - 并发上限非正 -> 使用默认值
//   - 清理间隔为负 -> 禁用定期清理
//   - 启用指标但统计容量非正 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	def := DefaultEventBusConfig()
	if c.EventBus.LockTimeout <= 0 {
		c.EventBus.LockTimeout = def.LockTimeout
	}
	if c.EventBus.MaxConcurrent <= 0 {
		c.EventBus.MaxConcurrent = def.MaxConcurrent
	}
	if c.EventBus.CleanupInterval < 0 {
		c.EventBus.CleanupInterval = 0
	}
	if c.EventBus.ShutdownTimeout < 0 {
		c.EventBus.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.Metrics.Enabled && c.Metrics.StatsCapacity <= 0 {
		c.Metrics.StatsCapacity = DefaultMetricsConfig().StatsCapacity
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}
	if c.Demo.TickInterval <= 0 {
		c.Demo.TickInterval = Duration(time.Second)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}

	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
}
