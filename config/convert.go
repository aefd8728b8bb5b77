package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 环境变量（均使用 EVENTSTORE_ 前缀）
const (
	EnvPrefix          = "EVENTSTORE_"
	EnvPreset          = "PRESET"
	EnvLockTimeout     = "LOCK_TIMEOUT"
	EnvMaxConcurrent   = "MAX_CONCURRENT"
	EnvCleanupInterval = "CLEANUP_INTERVAL"
	EnvMetricsEnabled  = "METRICS_ENABLED"
	EnvMetricsAddr     = "METRICS_ADDR"
	EnvLogFile         = "LOG_FILE"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "event_bus": {"lock_timeout": "100ms", "max_concurrent": 16},
//	  "metrics": {"enabled": true, "listen_addr": ":9090"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromJSON(data)
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "embedded": 嵌入式设备（低并发、频繁清理）
//   - "desktop": 默认值
//   - "server": 高并发
//   - "minimal": 关闭指标与定期清理
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "embedded":
		cfg.EventBus.MaxConcurrent = 8
		cfg.EventBus.CleanupInterval = Duration(10 * time.Second)
		cfg.Metrics.StatsCapacity = 32
	case "desktop", "":
		// 默认值即桌面配置
	case "server":
		cfg.EventBus.MaxConcurrent = 512
		cfg.EventBus.CleanupInterval = Duration(time.Minute)
		cfg.Metrics.StatsCapacity = 4096
	case "minimal":
		cfg.EventBus.CleanupInterval = 0
		cfg.Metrics.Enabled = false
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}

// ApplyEnv 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 无法解析的值返回错误，不会静默忽略。
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if v := os.Getenv(EnvPrefix + EnvPreset); v != "" {
		if err := ApplyPreset(cfg, v); err != nil {
			return err
		}
	}

	if v := os.Getenv(EnvPrefix + EnvLockTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvLockTimeout, err)
		}
		cfg.EventBus.LockTimeout = Duration(d)
	}

	if v := os.Getenv(EnvPrefix + EnvMaxConcurrent); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvMaxConcurrent, err)
		}
		cfg.EventBus.MaxConcurrent = n
	}

	if v := os.Getenv(EnvPrefix + EnvCleanupInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvCleanupInterval, err)
		}
		cfg.EventBus.CleanupInterval = Duration(d)
	}

	if v := os.Getenv(EnvPrefix + EnvMetricsEnabled); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	if v := os.Getenv(EnvPrefix + EnvMetricsAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}

	if v := os.Getenv(EnvPrefix + EnvLogFile); v != "" {
		cfg.Log.File = v
	}

	return nil
}

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
