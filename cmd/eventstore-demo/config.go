package main

import (
	"fmt"

	"github.com/dep2p/go-eventstore/config"
)

// loadConfig 按优先级组装配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（EVENTSTORE_* 前缀）
//  3. 配置文件
//  4. 预设默认值
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if isFlagSet("preset") {
		if err := config.ApplyPreset(cfg, *preset); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("环境变量无效: %w", err)
	}

	applyFlagOverrides(cfg)

	if err := config.ValidateAll(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides 应用命令行覆盖（仅显式设置的参数）
func applyFlagOverrides(cfg *config.Config) {
	if isFlagSet("metrics-addr") {
		cfg.Metrics.ListenAddr = *metricsAddr
		if *metricsAddr != "" {
			cfg.Metrics.Enabled = true
		}
	}
	if isFlagSet("log") {
		cfg.Log.File = *logFile
	}
	if isFlagSet("log-level") {
		cfg.Log.Level = *logLevel
	}
	if isFlagSet("connected") {
		cfg.Demo.StartConnected = *connected
	}
	if isFlagSet("tick") {
		cfg.Demo.TickInterval = config.Duration(*tick)
	}
}
