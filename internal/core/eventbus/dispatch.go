package eventbus

import (
	"fmt"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// invoke 按参数数量调用回调
//
//   - 0 个参数: EventFunc 或 VariadicFunc
//   - 1 个参数: PayloadFunc 或 VariadicFunc
//   - 更多参数: 仅 VariadicFunc
//
// 形态不符返回 ErrArityMismatch；panic 被恢复为 ErrCallbackPanic。
func invoke(cb pkgif.Callback, event string, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()

	switch shape := cb.Shape(); {
	case shape == pkgif.ShapeVariadic:
		return cb.VariadicFn()(event, args...)
	case shape == pkgif.ShapeEvent && len(args) == 0:
		return cb.EventFn()(event)
	case shape == pkgif.ShapePayload && len(args) == 1:
		return cb.PayloadFn()(event, args[0])
	default:
		return nil, fmt.Errorf("%w: %s callback published with %d args", ErrArityMismatch, shape, len(args))
	}
}

// call 执行一次隔离的回调调用，失败时记录日志和指标并返回 nil
func (b *Bus) call(sub *subscription, args []any) any {
	res, err := invoke(sub.callback, sub.event, args)
	if err == nil {
		return res
	}

	cerr := &CallbackError{Event: sub.event, SubscriptionID: sub.id, Err: err}
	b.reporter.CallbackFailed(sub.event, failureReason(err))
	b.logger().Error("callback failed", "event", sub.event, "id", sub.id, "err", cerr)
	return nil
}

// PublishSync 同步发布
//
// 在锁内取快照，锁外按订阅顺序在调用方 goroutine 上执行。
// 结果长度等于快照长度，失败的回调对应位置为 nil。
// 只有锁超时会返回错误。
func (b *Bus) PublishSync(event string, args ...any) ([]any, error) {
	snapshot, err := b.snapshot("publish", event)
	if err != nil {
		return nil, err
	}
	b.reporter.Published(event, len(snapshot), false)

	results := make([]any, len(snapshot))
	for i, sub := range snapshot {
		results[i] = b.call(sub, args)
	}
	return results, nil
}

// Publish 是 PublishSync 的别名
func (b *Bus) Publish(event string, args ...any) ([]any, error) {
	return b.PublishSync(event, args...)
}

// PublishAsync 异步发布，返回成功调度的回调数量
//
// 调度不阻塞：池已满或已关闭时该回调记为调度失败，不计入返回值，
// 其余回调继续调度。
func (b *Bus) PublishAsync(event string, args ...any) (int, error) {
	snapshot, err := b.snapshot("publish_async", event)
	if err != nil {
		return 0, err
	}
	b.reporter.Published(event, len(snapshot), true)
	if len(snapshot) == 0 {
		return 0, nil
	}

	// 所有异步回调共享同一份参数
	args = append([]any(nil), args...)

	scheduled, failed := 0, 0
	var lastErr error
	for _, sub := range snapshot {
		err := b.pool.trySpawn(func() {
			b.call(sub, args)
		})
		if err != nil {
			failed++
			lastErr = err
			b.reporter.SchedulingFailed(event, schedulingReason(err))
			b.logger().Debug("async callback not scheduled", "event", event, "id", sub.id, "err", err)
			continue
		}
		scheduled++
		b.reporter.Scheduled(event)
	}

	if failed > 0 {
		b.schedWarn.Do(func() {
			b.logger().Warn("async callbacks dropped",
				"event", event,
				"failed", failed,
				"scheduled", scheduled,
				"max_concurrent", b.cfg.MaxConcurrent,
				"err", lastErr)
		})
	}
	return scheduled, nil
}

// snapshot 在锁内回收失效订阅并取有效订阅快照
func (b *Bus) snapshot(op, event string) ([]*subscription, error) {
	var (
		snap      []*subscription
		reclaimed int
	)
	err := b.locked(op, func() error {
		snap, reclaimed = b.reg.activeCallbacks(event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.reportReclaimed(event, reclaimed)
	return snap, nil
}
