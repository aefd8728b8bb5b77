package eventbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
)

// ============================================================================
// 生命周期
// ============================================================================

// Start 启动定期清理
//
// CleanupInterval 为 0 或已经启动时为空操作。清理 goroutine 的生命周期
// 不受 ctx 取消影响，由 Close 结束。
func (b *Bus) Start(ctx context.Context) error {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if b.stopJanitor != nil || b.cfg.CleanupInterval <= 0 {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ticker := b.clock.Ticker(b.cfg.CleanupInterval)
	done := make(chan struct{})

	b.stopJanitor = cancel
	b.janitorDone = done

	go b.runJanitor(runCtx, ticker, done)
	b.logger().Debug("janitor started", "interval", b.cfg.CleanupInterval)
	return nil
}

func (b *Bus) runJanitor(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Cleanup(); err != nil {
				b.logger().Warn("periodic cleanup failed", "err", err)
			}
		}
	}
}

// Close 停止定期清理并等待在途异步回调结束
//
// 之后 PublishAsync 的所有调度都会以 ErrPoolClosed 失败；同步接口仍可用。
// ctx 无截止时间时最多等待 ShutdownTimeout。
func (b *Bus) Close(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok && b.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.ShutdownTimeout)
		defer cancel()
	}

	b.runMu.Lock()
	stop, done := b.stopJanitor, b.janitorDone
	b.stopJanitor, b.janitorDone = nil, nil
	b.runMu.Unlock()

	var err error
	if stop != nil {
		stop()
		select {
		case <-done:
		case <-ctx.Done():
			err = multierr.Append(err, fmt.Errorf("stop janitor: %w", ctx.Err()))
		}
	}

	if perr := b.pool.close(ctx); perr != nil {
		err = multierr.Append(err, fmt.Errorf("drain async callbacks: %w", perr))
	}
	return err
}

func isLockTimeout(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
