package eventbus

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-eventstore/config"
	"github.com/dep2p/go-eventstore/internal/core/metrics"
	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

// Config 事件总线配置
type Config struct {
	// LockTimeout 注册表锁的最长等待时间
	LockTimeout time.Duration

	// MaxConcurrent 同时运行的异步回调上限
	MaxConcurrent int

	// CleanupInterval 定期清理间隔，0 表示禁用
	CleanupInterval time.Duration

	// ShutdownTimeout Close 在 ctx 无截止时间时等待在途回调的上限
	ShutdownTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return fromConfig(config.DefaultEventBusConfig())
}

// ConfigFromUnified 从统一配置创建事件总线配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return fromConfig(cfg.EventBus)
}

func fromConfig(c config.EventBusConfig) Config {
	return Config{
		LockTimeout:     c.LockTimeout.Duration(),
		MaxConcurrent:   c.MaxConcurrent,
		CleanupInterval: c.CleanupInterval.Duration(),
		ShutdownTimeout: c.ShutdownTimeout.Duration(),
	}
}

// ============================================================================
// 选项函数
// ============================================================================

// Option 配置 Bus
type Option func(*Bus)

// WithConfig 整体替换配置
func WithConfig(cfg Config) Option {
	return func(b *Bus) { b.cfg = cfg }
}

// WithLockTimeout 设置锁超时
func WithLockTimeout(d time.Duration) Option {
	return func(b *Bus) { b.cfg.LockTimeout = d }
}

// WithMaxConcurrent 设置异步回调并发上限
func WithMaxConcurrent(n int) Option {
	return func(b *Bus) { b.cfg.MaxConcurrent = n }
}

// WithCleanupInterval 设置定期清理间隔，0 表示禁用
func WithCleanupInterval(d time.Duration) Option {
	return func(b *Bus) { b.cfg.CleanupInterval = d }
}

// WithClock 设置时钟（测试中使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(b *Bus) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithReporter 设置指标上报
func WithReporter(r metrics.Reporter) Option {
	return func(b *Bus) {
		if r != nil {
			b.reporter = r
		}
	}
}

// WithLogger 设置日志
func WithLogger(l log.Leveled) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}
