package eventbus

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// pool 有界异步执行池
//
// 最多 limit 个任务同时运行。trySpawn 不阻塞，池满返回 ErrPoolSaturated，
// 关闭后返回 ErrPoolClosed。
type pool struct {
	sem   *semaphore.Weighted
	limit int64

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func newPool(limit int) *pool {
	if limit <= 0 {
		limit = 1
	}
	return &pool{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: int64(limit),
	}
}

// trySpawn 尝试在新 goroutine 中执行 fn
func (p *pool) trySpawn(fn func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	if !p.sem.TryAcquire(1) {
		return ErrPoolSaturated
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		fn()
	}()
	return nil
}

// close 拒绝新任务并等待在途任务结束，ctx 结束时提前返回
func (p *pool) close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
