package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// TestPool_Saturation 测试池满时拒绝调度
func TestPool_Saturation(t *testing.T) {
	p := newPool(1)
	release := make(chan struct{})

	require.NoError(t, p.trySpawn(func() { <-release }))
	assert.ErrorIs(t, p.trySpawn(func() {}), ErrPoolSaturated)

	close(release)
	require.Eventually(t, func() bool {
		return p.trySpawn(func() {}) == nil
	}, time.Second, time.Millisecond)

	require.NoError(t, p.close(context.Background()))
}

// TestPool_CloseDrains 测试关闭时等待在途任务
func TestPool_CloseDrains(t *testing.T) {
	p := newPool(4)
	var finished atomic.Bool
	release := make(chan struct{})

	require.NoError(t, p.trySpawn(func() {
		<-release
		finished.Store(true)
	}))

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()

	require.NoError(t, p.close(context.Background()))
	assert.True(t, finished.Load())
	assert.ErrorIs(t, p.trySpawn(func() {}), ErrPoolClosed)
}

// TestPool_CloseTimeout 测试关闭等待超时
func TestPool_CloseTimeout(t *testing.T) {
	p := newPool(1)
	release := make(chan struct{})
	defer close(release)

	require.NoError(t, p.trySpawn(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.close(ctx), context.DeadlineExceeded)
}

// TestBus_PublishAsync_Delivers 测试异步发布
func TestBus_PublishAsync_Delivers(t *testing.T) {
	stats := newTestStats(t)
	bus := newTestBus(t, WithReporter(stats))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var got []any

	for i := 0; i < 3; i++ {
		_, err := bus.Subscribe("time.update", pkgif.OnPayload(func(_ string, p any) (any, error) {
			defer wg.Done()
			mu.Lock()
			got = append(got, p)
			mu.Unlock()
			return nil, nil
		}), nil)
		require.NoError(t, err)
	}

	wg.Add(3)
	n, err := bus.PublishAsync("time.update", "12:00:00")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	wg.Wait()
	assert.Equal(t, []any{"12:00:00", "12:00:00", "12:00:00"}, got)

	st, ok := stats.Snapshot("time.update")
	require.True(t, ok)
	assert.Equal(t, int64(1), st.Published)
}

// TestBus_PublishAsync_NoSubscribers 测试无订阅者
func TestBus_PublishAsync_NoSubscribers(t *testing.T) {
	bus := newTestBus(t)

	n, err := bus.PublishAsync("nobody.listens")
	require.NoError(t, err)
	assert.Zero(t, n)
}

// TestBus_PublishAsync_Bounded 测试并发上限
func TestBus_PublishAsync_Bounded(t *testing.T) {
	stats := newTestStats(t)
	bus := newTestBus(t, WithMaxConcurrent(2), WithReporter(stats))

	release := make(chan struct{})
	var running, peak atomic.Int32
	for i := 0; i < 5; i++ {
		_, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
			cur := running.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			<-release
			running.Add(-1)
			return nil, nil
		}), nil)
	}

	n, err := bus.PublishAsync("x")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	st, ok := stats.Snapshot("x")
	require.True(t, ok)
	assert.Equal(t, int64(3), st.SchedulingFailures)

	close(release)
	require.NoError(t, bus.Close(context.Background()))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

// TestBus_PublishAsync_FailureIsolated 测试异步回调失败被隔离
func TestBus_PublishAsync_FailureIsolated(t *testing.T) {
	stats := newTestStats(t)
	bus := newTestBus(t, WithReporter(stats))

	var ok atomic.Int32
	_, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) { panic("boom") }), nil)
	_, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
		ok.Add(1)
		return nil, nil
	}), nil)

	n, err := bus.PublishAsync("x")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, bus.Close(context.Background()))
	assert.Equal(t, int32(1), ok.Load())

	st, _ := stats.Snapshot("x")
	assert.Equal(t, int64(1), st.Failures)
}

// TestBus_PublishAsync_AfterClose 测试关闭后调度失败但不返回错误
func TestBus_PublishAsync_AfterClose(t *testing.T) {
	stats := newTestStats(t)
	bus := newTestBus(t, WithReporter(stats))

	called := false
	_, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
		called = true
		return nil, nil
	}), nil)

	require.NoError(t, bus.Close(context.Background()))

	n, err := bus.PublishAsync("x")
	require.NoError(t, err)
	assert.Zero(t, n)

	st, _ := stats.Snapshot("x")
	assert.Equal(t, int64(1), st.SchedulingFailures)

	// 同步接口仍可用
	_, err = bus.PublishSync("x")
	require.NoError(t, err)
	assert.True(t, called)
}
