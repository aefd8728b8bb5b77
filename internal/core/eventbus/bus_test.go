package eventbus

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-eventstore/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// ============================================================================
// 测试辅助
// ============================================================================

// newTestBus 创建测试总线，测试结束时关闭
func newTestBus(t *testing.T, opts ...Option) *Bus {
	t.Helper()
	bus := NewBus(opts...)
	t.Cleanup(func() {
		_ = bus.Close(context.Background())
	})
	return bus
}

// newTestStats 创建用于断言的按事件统计
func newTestStats(t *testing.T) *metrics.EventStats {
	t.Helper()
	stats, err := metrics.NewEventStats(64, nil)
	require.NoError(t, err)
	return stats
}

// screen 测试用 owner
type screen struct {
	name   string
	active bool
}

func (s *screen) Active() bool { return s.active }

func noop(string) (any, error) { return nil, nil }

// ============================================================================
// 接口契约测试
// ============================================================================

// TestBus_ImplementsInterface 验证 Bus 实现接口
func TestBus_ImplementsInterface(t *testing.T) {
	var _ pkgif.EventBus = (*Bus)(nil)
	var _ pkgif.Inspector = (*Bus)(nil)
}

// TestBus_NewBus 测试创建事件总线
func TestBus_NewBus(t *testing.T) {
	bus := newTestBus(t)

	require.NotNil(t, bus.reg)
	assert.Equal(t, DefaultConfig(), bus.Config())

	events, err := bus.Events()
	require.NoError(t, err)
	assert.Empty(t, events)
}

// TestBus_NewBus_InvalidConfig 测试非法配置回落到默认值
func TestBus_NewBus_InvalidConfig(t *testing.T) {
	bus := newTestBus(t, WithLockTimeout(0), WithMaxConcurrent(-1))

	assert.Equal(t, DefaultConfig().LockTimeout, bus.Config().LockTimeout)
	assert.Equal(t, DefaultConfig().MaxConcurrent, bus.Config().MaxConcurrent)
}

// ============================================================================
// 订阅测试
// ============================================================================

// TestBus_Subscribe_Validation 测试参数校验
func TestBus_Subscribe_Validation(t *testing.T) {
	bus := newTestBus(t)

	_, err := bus.Subscribe("", pkgif.OnEvent(noop), nil)
	assert.ErrorIs(t, err, ErrEmptyEvent)

	_, err = bus.Subscribe("x", pkgif.Callback{}, nil)
	assert.ErrorIs(t, err, ErrNilCallback)

	_, err = bus.Subscribe("x", pkgif.OnEvent(nil), nil)
	assert.ErrorIs(t, err, ErrNilCallback)
}

// TestBus_Subscribe_UniqueIDs 测试同一回调重复订阅得到不同 ID
func TestBus_Subscribe_UniqueIDs(t *testing.T) {
	bus := newTestBus(t)
	cb := pkgif.OnEvent(noop)

	id1, err := bus.Subscribe("time.update", cb, nil)
	require.NoError(t, err)
	id2, err := bus.Subscribe("time.update", cb, nil)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.True(t, strings.HasPrefix(id1, "sub_time_update_"))
	assert.True(t, strings.HasSuffix(id1, "_1"))
	assert.True(t, strings.HasSuffix(id2, "_2"))

	count, err := bus.SubscriberCount("time.update")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// 两者可以独立取消
	ok, err := bus.Unsubscribe("time.update", id1)
	require.NoError(t, err)
	assert.True(t, ok)

	count, _ = bus.SubscriberCount("time.update")
	assert.Equal(t, 1, count)

	ok, err = bus.Unsubscribe("time.update", id2)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestBus_SubscriberCount_Sequence 测试计数始终等于有效订阅数
func TestBus_SubscriberCount_Sequence(t *testing.T) {
	bus := newTestBus(t)
	owner := &screen{name: "welcome", active: true}

	var ids []string
	expected := 0
	check := func() {
		t.Helper()
		count, err := bus.SubscriberCount("x")
		require.NoError(t, err)
		assert.Equal(t, expected, count)
	}

	for i := 0; i < 5; i++ {
		var o pkgif.Owner
		if i%2 == 0 {
			o = owner
		}
		id, err := bus.Subscribe("x", pkgif.OnEvent(noop), o)
		require.NoError(t, err)
		ids = append(ids, id)
		expected++
		check()
	}

	_, _ = bus.Unsubscribe("x", ids[1])
	expected--
	check()

	_, _ = bus.Unsubscribe("x", ids[1])
	check()

	// owner 失效：0, 2, 4 号订阅不再计入
	owner.active = false
	expected -= 3
	check()

	n, err := bus.UnsubscribeAll("x")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	expected = 0
	check()
}

// ============================================================================
// 取消订阅测试
// ============================================================================

// TestBus_Unsubscribe_Idempotent 测试重复取消订阅
func TestBus_Unsubscribe_Idempotent(t *testing.T) {
	bus := newTestBus(t)

	id, err := bus.Subscribe("button.press", pkgif.OnEvent(noop), nil)
	require.NoError(t, err)

	ok, err := bus.Unsubscribe("button.press", id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = bus.Unsubscribe("button.press", id)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = bus.Unsubscribe("unknown", "sub_unknown_0_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestBus_Unsubscribe_RemovesEmptyEvent 测试移除最后一个订阅后事件消失
func TestBus_Unsubscribe_RemovesEmptyEvent(t *testing.T) {
	bus := newTestBus(t)

	idX, _ := bus.Subscribe("x", pkgif.OnEvent(noop), nil)
	idY, _ := bus.Subscribe("y", pkgif.OnEvent(noop), nil)

	events, err := bus.Events()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, events)

	_, err = bus.Unsubscribe("y", idY)
	require.NoError(t, err)

	events, err = bus.Events()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, events)

	_, _ = bus.Unsubscribe("x", idX)
	events, _ = bus.Events()
	assert.Empty(t, events)
}

// TestBus_UnsubscribeByOwner 测试按 owner 批量取消
func TestBus_UnsubscribeByOwner(t *testing.T) {
	bus := newTestBus(t)
	owner := &screen{name: "message", active: true}
	other := &screen{name: "welcome", active: true}

	_, _ = bus.Subscribe("e1", pkgif.OnEvent(noop), owner)
	_, _ = bus.Subscribe("e2", pkgif.OnEvent(noop), owner)
	id3, _ := bus.Subscribe("e3", pkgif.OnEvent(noop), nil)
	_, _ = bus.Subscribe("e3", pkgif.OnEvent(noop), other)

	n, err := bus.UnsubscribeByOwner(owner)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	events, _ := bus.Events()
	assert.Equal(t, []string{"e3"}, events)

	infos, err := bus.DebugInfo()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, id3, infos[0].ID)

	n, err = bus.UnsubscribeByOwner(owner)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// TestBus_UnsubscribeByOwner_Nil 测试 nil owner 只匹配无归属订阅
func TestBus_UnsubscribeByOwner_Nil(t *testing.T) {
	bus := newTestBus(t)
	owner := &screen{active: true}

	_, _ = bus.Subscribe("a", pkgif.OnEvent(noop), nil)
	_, _ = bus.Subscribe("b", pkgif.OnEvent(noop), nil)
	_, _ = bus.Subscribe("b", pkgif.OnEvent(noop), owner)

	n, err := bus.UnsubscribeByOwner(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	events, _ := bus.Events()
	assert.Equal(t, []string{"b"}, events)
}

// TestBus_UnsubscribeAll 测试移除事件的全部订阅
func TestBus_UnsubscribeAll(t *testing.T) {
	bus := newTestBus(t)

	for i := 0; i < 3; i++ {
		_, _ = bus.Subscribe("network.status", pkgif.OnEvent(noop), nil)
	}
	_, _ = bus.Subscribe("time.update", pkgif.OnEvent(noop), nil)

	n, err := bus.UnsubscribeAll("network.status")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = bus.UnsubscribeAll("network.status")
	require.NoError(t, err)
	assert.Zero(t, n)

	events, _ := bus.Events()
	assert.Equal(t, []string{"time.update"}, events)
}

// ============================================================================
// 同步发布测试
// ============================================================================

// TestBus_PublishSync_Order 测试按订阅顺序执行并返回结果
func TestBus_PublishSync_Order(t *testing.T) {
	bus := newTestBus(t)

	var calls []string
	for _, name := range []string{"A", "B", "C"} {
		_, err := bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
			calls = append(calls, name)
			return name, nil
		}), nil)
		require.NoError(t, err)
	}

	results, err := bus.PublishSync("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, calls)
	assert.Equal(t, []any{"A", "B", "C"}, results)
}

// TestBus_PublishSync_FaultIsolation 测试单个回调失败不影响其他回调
func TestBus_PublishSync_FaultIsolation(t *testing.T) {
	stats := newTestStats(t)
	bus := newTestBus(t, WithReporter(stats))

	var ran []string
	record := func(name string) pkgif.Callback {
		return pkgif.OnPayload(func(_ string, p any) (any, error) {
			ran = append(ran, name)
			return p, nil
		})
	}

	_, _ = bus.Subscribe("x", record("A"), nil)
	_, _ = bus.Subscribe("x", pkgif.OnPayload(func(string, any) (any, error) {
		panic("boom")
	}), nil)
	_, _ = bus.Subscribe("x", record("C"), nil)
	_, _ = bus.Subscribe("x", pkgif.OnPayload(func(string, any) (any, error) {
		return "ignored", errors.New("render failed")
	}), nil)

	results, err := bus.PublishSync("x", 42)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, []any{42, nil, 42, nil}, results)
	assert.Equal(t, []string{"A", "C"}, ran)

	st, ok := stats.Snapshot("x")
	require.True(t, ok)
	assert.Equal(t, int64(2), st.Failures)
	assert.Equal(t, int64(1), st.Published)
	assert.Equal(t, int64(4), st.Delivered)
}

// TestBus_PublishSync_NoSubscribers 测试无订阅者
func TestBus_PublishSync_NoSubscribers(t *testing.T) {
	bus := newTestBus(t)

	results, err := bus.PublishSync("nobody.listens", 1, 2)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = bus.Publish("nobody.listens")
	require.NoError(t, err)
	assert.Empty(t, results)
}

// TestBus_PublishSync_Arity 测试按参数数量选择调用形态
func TestBus_PublishSync_Arity(t *testing.T) {
	tests := []struct {
		name string
		cb   pkgif.Callback
		args []any
		want any
	}{
		{
			name: "event form without args",
			cb:   pkgif.OnEvent(func(e string) (any, error) { return e, nil }),
			want: "x",
		},
		{
			name: "event form with payload fails",
			cb:   pkgif.OnEvent(func(e string) (any, error) { return e, nil }),
			args: []any{"CONNECTED"},
			want: nil,
		},
		{
			name: "payload form with one arg",
			cb:   pkgif.OnPayload(func(_ string, p any) (any, error) { return p, nil }),
			args: []any{"CONNECTED"},
			want: "CONNECTED",
		},
		{
			name: "payload form without args fails",
			cb:   pkgif.OnPayload(func(_ string, p any) (any, error) { return p, nil }),
			want: nil,
		},
		{
			name: "variadic form with many args",
			cb:   pkgif.OnArgs(func(_ string, args ...any) (any, error) { return len(args), nil }),
			args: []any{1, 2, 3},
			want: 3,
		},
		{
			name: "variadic form without args",
			cb:   pkgif.OnArgs(func(_ string, args ...any) (any, error) { return len(args), nil }),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newTestBus(t)
			_, err := bus.Subscribe("x", tt.cb, nil)
			require.NoError(t, err)

			results, err := bus.PublishSync("x", tt.args...)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.want, results[0])
		})
	}
}

// TestBus_PublishSync_Snapshot 测试快照语义
func TestBus_PublishSync_Snapshot(t *testing.T) {
	bus := newTestBus(t)

	var calls []string
	var idB string

	// A 在执行时新增 C 并移除 B
	_, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
		calls = append(calls, "A")
		_, err := bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
			calls = append(calls, "C")
			return nil, nil
		}), nil)
		if err != nil {
			return nil, err
		}
		_, err = bus.Unsubscribe("x", idB)
		return nil, err
	}), nil)
	idB, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
		calls = append(calls, "B")
		return nil, nil
	}), nil)

	results, err := bus.PublishSync("x")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, []string{"A", "B"}, calls)

	// 下一次发布看到新的订阅集合
	calls = nil
	_, _ = bus.PublishSync("x")
	assert.Equal(t, []string{"A", "C"}, calls)
}

// TestBus_PublishSync_Reentrant 测试回调中重入发布
func TestBus_PublishSync_Reentrant(t *testing.T) {
	bus := newTestBus(t)

	var got any
	_, _ = bus.Subscribe("network.status", pkgif.OnPayload(func(_ string, p any) (any, error) {
		return bus.PublishSync("screen.render", p)
	}), nil)
	_, _ = bus.Subscribe("screen.render", pkgif.OnPayload(func(_ string, p any) (any, error) {
		got = p
		return "rendered", nil
	}), nil)

	results, err := bus.PublishSync("network.status", "CONNECTED")
	require.NoError(t, err)
	assert.Equal(t, "CONNECTED", got)
	assert.Equal(t, []any{[]any{"rendered"}}, results)
}

// ============================================================================
// 存活与回收测试
// ============================================================================

// TestBus_LazyReclamation 测试失效 owner 在发布时被回收
func TestBus_LazyReclamation(t *testing.T) {
	stats := newTestStats(t)
	bus := newTestBus(t, WithReporter(stats))
	owner := NewHandle("connecting")

	called := 0
	_, _ = bus.Subscribe("y", pkgif.OnEvent(func(string) (any, error) {
		called++
		return nil, nil
	}), owner)

	_, _ = bus.PublishSync("y")
	assert.Equal(t, 1, called)

	owner.Release()

	results, err := bus.PublishSync("y")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, called)

	events, _ := bus.Events()
	assert.NotContains(t, events, "y")

	st, ok := stats.Snapshot("y")
	require.True(t, ok)
	assert.Equal(t, int64(1), st.Reclaimed)
	assert.Zero(t, stats.SubscriptionCount())
}

// TestBus_DeadOwnerProbePanics 测试探测 panic 视为失效
func TestBus_DeadOwnerProbePanics(t *testing.T) {
	bus := newTestBus(t)

	var nilScreen *screen
	_, err := bus.Subscribe("x", pkgif.OnEvent(noop), nilScreen)
	require.NoError(t, err)

	count, err := bus.SubscriberCount("x")
	require.NoError(t, err)
	assert.Zero(t, count)
}

// TestBus_Cleanup 测试立即清理
func TestBus_Cleanup(t *testing.T) {
	bus := newTestBus(t)
	dead := &screen{active: true}
	alive := &screen{active: true}

	_, _ = bus.Subscribe("a", pkgif.OnEvent(noop), dead)
	_, _ = bus.Subscribe("b", pkgif.OnEvent(noop), dead)
	_, _ = bus.Subscribe("b", pkgif.OnEvent(noop), alive)
	_, _ = bus.Subscribe("c", pkgif.OnEvent(noop), nil)

	dead.active = false
	n, err := bus.Len()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, bus.Cleanup())

	n, _ = bus.Len()
	assert.Equal(t, 2, n)
	events, _ := bus.Events()
	assert.Equal(t, []string{"b", "c"}, events)
}

// ============================================================================
// 日志与调试测试
// ============================================================================

// TestBus_SetLogger 测试运行期替换日志
func TestBus_SetLogger(t *testing.T) {
	bus := newTestBus(t)

	var buf bytes.Buffer
	bus.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_, _ = bus.Subscribe("x", pkgif.OnEvent(func(string) (any, error) {
		return nil, errors.New("render failed")
	}), nil)
	_, _ = bus.PublishSync("x")

	out := buf.String()
	assert.Contains(t, out, "subscribed")
	assert.Contains(t, out, "callback failed")
	assert.Contains(t, out, "render failed")

	// nil 恢复默认日志
	bus.SetLogger(nil)
	assert.Equal(t, logger, bus.logger())
}

// TestBus_WriteDebugInfo 测试调试输出
func TestBus_WriteDebugInfo(t *testing.T) {
	bus := newTestBus(t)
	owner := &screen{active: true}

	id1, _ := bus.Subscribe("time.update", pkgif.OnPayload(func(string, any) (any, error) { return nil, nil }), owner)
	id2, _ := bus.Subscribe("button.press", pkgif.OnEvent(noop), nil)

	infos, err := bus.DebugInfo()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, pkgif.SubscriptionInfo{
		ID: id2, Event: "button.press", OwnerType: "None", Active: true, Shape: "event",
	}, infos[0])
	assert.Equal(t, pkgif.SubscriptionInfo{
		ID: id1, Event: "time.update", OwnerType: "*eventbus.screen", Active: true, Shape: "payload",
	}, infos[1])

	owner.active = false

	var buf bytes.Buffer
	require.NoError(t, bus.WriteDebugInfo(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== EventStore Debug Info ===\n"))
	assert.Contains(t, out, "Event 'button.press': 1 subscribers\n")
	assert.Contains(t, out, "  - "+id1+" (owner=*eventbus.screen, shape=payload, active=false)\n")
}
