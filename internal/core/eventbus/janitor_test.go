package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// TestBus_Janitor 测试定期清理
func TestBus_Janitor(t *testing.T) {
	mock := clock.NewMock()
	stats := newTestStats(t)
	bus := newTestBus(t,
		WithClock(mock),
		WithCleanupInterval(10*time.Second),
		WithReporter(stats),
	)

	owner := NewHandle("message")
	_, _ = bus.Subscribe("a", pkgif.OnEvent(noop), owner)
	_, _ = bus.Subscribe("b", pkgif.OnEvent(noop), owner)
	_, _ = bus.Subscribe("b", pkgif.OnEvent(noop), nil)

	require.NoError(t, bus.Start(context.Background()))
	owner.Release()

	// 未到间隔不清理
	mock.Add(5 * time.Second)
	n, err := bus.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.Add(5 * time.Second)
	require.Eventually(t, func() bool {
		n, err := bus.Len()
		return err == nil && n == 1
	}, time.Second, time.Millisecond)

	events, _ := bus.Events()
	assert.Equal(t, []string{"b"}, events)
	assert.Equal(t, int64(1), stats.SubscriptionCount())

	require.NoError(t, bus.Close(context.Background()))
}

// TestBus_Start_Disabled 测试禁用定期清理
func TestBus_Start_Disabled(t *testing.T) {
	bus := newTestBus(t, WithCleanupInterval(0))

	require.NoError(t, bus.Start(context.Background()))
	assert.Nil(t, bus.stopJanitor)
	require.NoError(t, bus.Close(context.Background()))
}

// TestBus_Start_Idempotent 测试重复启动
func TestBus_Start_Idempotent(t *testing.T) {
	bus := newTestBus(t, WithClock(clock.NewMock()))

	require.NoError(t, bus.Start(context.Background()))
	done := bus.janitorDone
	require.NoError(t, bus.Start(context.Background()))
	assert.Equal(t, done, bus.janitorDone)

	require.NoError(t, bus.Close(context.Background()))
	assert.Nil(t, bus.stopJanitor)

	select {
	case <-done:
	default:
		t.Fatal("janitor still running after Close")
	}
}

// TestBus_Start_IgnoresStartContext 测试启动 ctx 取消不会停止清理
func TestBus_Start_IgnoresStartContext(t *testing.T) {
	bus := newTestBus(t, WithClock(clock.NewMock()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Start(ctx))
	cancel()

	done := bus.janitorDone
	select {
	case <-done:
		t.Fatal("janitor stopped with start context")
	case <-time.After(20 * time.Millisecond):
	}
	require.NoError(t, bus.Close(context.Background()))
}

// TestBus_Close_Timeout 测试在途回调超过关闭期限
func TestBus_Close_Timeout(t *testing.T) {
	bus := newTestBus(t)
	release := make(chan struct{})
	defer close(release)

	_, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
		<-release
		return nil, nil
	}), nil)
	n, err := bus.PublishAsync("x")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = bus.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "drain async callbacks")
}
