package eventstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-eventstore/config"
	"github.com/dep2p/go-eventstore/internal/core/eventbus"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

// Reporter 指标上报接口
type Reporter = metrics.Reporter

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config   *config.Config
	reporter Reporter
	clock    clock.Clock
	logger   log.Leveled
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// busOptions 转换为 eventbus 选项
func (o *options) busOptions() []eventbus.Option {
	opts := []eventbus.Option{
		eventbus.WithConfig(eventbus.ConfigFromUnified(o.config)),
	}
	if o.reporter != nil {
		opts = append(opts, eventbus.WithReporter(o.reporter))
	}
	if o.clock != nil {
		opts = append(opts, eventbus.WithClock(o.clock))
	}
	if o.logger != nil {
		opts = append(opts, eventbus.WithLogger(o.logger))
	}
	return opts
}

// WithConfig 使用完整配置
//
// 之后的选项仍可覆盖其中的字段。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		clone := *cfg
		o.config = &clone
		return nil
	}
}

// WithPreset 应用预设（embedded/desktop/server/minimal）
func WithPreset(name string) Option {
	return func(o *options) error {
		return config.ApplyPreset(o.config, name)
	}
}

// WithEnv 应用 EVENTSTORE_* 环境变量
func WithEnv() Option {
	return func(o *options) error {
		return config.ApplyEnv(o.config)
	}
}

// WithLockTimeout 设置锁超时
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("lock timeout must be positive, got %s", d)
		}
		o.config.EventBus.LockTimeout = config.Duration(d)
		return nil
	}
}

// WithMaxConcurrent 设置异步回调并发上限
func WithMaxConcurrent(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("max concurrent must be positive, got %d", n)
		}
		o.config.EventBus.MaxConcurrent = n
		return nil
	}
}

// WithCleanupInterval 设置定期清理间隔，0 禁用
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("cleanup interval cannot be negative, got %s", d)
		}
		o.config.EventBus.CleanupInterval = config.Duration(d)
		return nil
	}
}

// WithReporter 设置指标上报
func WithReporter(r Reporter) Option {
	return func(o *options) error {
		o.reporter = r
		return nil
	}
}

// WithClock 设置时钟（测试使用）
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithLogger 设置日志（*slog.Logger 满足 log.Leveled）
func WithLogger(l log.Leveled) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
