package metrics

import (
	"fmt"
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventStats_Record 测试按事件记录
func TestEventStats_Record(t *testing.T) {
	mock := clock.NewMock()
	s, err := NewEventStats(8, mock)
	require.NoError(t, err)

	s.Published("time.update", 3, true)
	s.Published("time.update", 2, false)
	s.CallbackFailed("time.update", ReasonPanic)
	s.SchedulingFailed("time.update", ReasonSaturated)
	s.Reclaimed("time.update", 2)
	s.Reclaimed("time.update", 0)

	st, ok := s.Snapshot("time.update")
	require.True(t, ok)
	assert.Equal(t, "time.update", st.Event)
	assert.Equal(t, int64(2), st.Published)
	assert.Equal(t, int64(5), st.Delivered)
	assert.Equal(t, int64(1), st.Failures)
	assert.Equal(t, int64(1), st.SchedulingFailures)
	assert.Equal(t, int64(2), st.Reclaimed)
	assert.Equal(t, mock.Now(), st.LastPublished)
	assert.InDelta(t, 2.0/60, st.Rate, 1e-9)

	_, ok = s.Snapshot("unknown")
	assert.False(t, ok)
}

// TestEventStats_Bounded 测试容量上限与 LRU 淘汰
func TestEventStats_Bounded(t *testing.T) {
	s, err := NewEventStats(2, nil)
	require.NoError(t, err)

	s.Published("a", 1, false)
	s.Published("b", 1, false)
	s.Published("a", 1, false) // a 变为最近使用
	s.Published("c", 1, false) // 淘汰 b

	assert.Equal(t, 2, s.Len())
	_, ok := s.Snapshot("b")
	assert.False(t, ok)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Event)
	assert.Equal(t, "c", all[1].Event)
	assert.Equal(t, int64(2), all[0].Published)
}

// TestEventStats_Totals 测试全局计数
func TestEventStats_Totals(t *testing.T) {
	s, err := NewEventStats(4, nil)
	require.NoError(t, err)

	s.LockTimeout("subscribe")
	s.LockTimeout("publish")
	s.Subscriptions(3)
	s.Subscriptions(-1)

	assert.Equal(t, int64(2), s.LockTimeouts())
	assert.Equal(t, int64(2), s.SubscriptionCount())

	s.Published("a", 1, false)
	s.Reset()
	assert.Zero(t, s.Len())
	assert.Zero(t, s.LockTimeouts())
}

// TestEventStats_InvalidCapacity 测试非法容量
func TestEventStats_InvalidCapacity(t *testing.T) {
	_, err := NewEventStats(0, nil)
	assert.Error(t, err)
}

// TestEventStats_Concurrent 测试并发记录
func TestEventStats_Concurrent(t *testing.T) {
	s, err := NewEventStats(16, clock.NewMock())
	require.NoError(t, err)

	numGoroutines := 50
	numOps := 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			event := fmt.Sprintf("event.%d", i%4)
			for j := 0; j < numOps; j++ {
				s.Published(event, 1, j%2 == 0)
				s.Subscriptions(1)
				_ = s.All()
			}
		}(i)
	}
	wg.Wait()

	var total int64
	for _, st := range s.All() {
		total += st.Published
	}
	assert.Equal(t, int64(numGoroutines*numOps), total)
	assert.Equal(t, int64(numGoroutines*numOps), s.SubscriptionCount())
}
