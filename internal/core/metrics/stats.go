package metrics

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
)

// EventStat 单个事件的统计快照
type EventStat struct {
	Event              string    `json:"event"`
	Published          int64     `json:"published"`           // 发布次数（同步+异步）
	Delivered          int64     `json:"delivered"`           // 快照中的订阅者累计数
	Failures           int64     `json:"failures"`            // 回调失败次数
	SchedulingFailures int64     `json:"scheduling_failures"` // 调度失败次数
	Reclaimed          int64     `json:"reclaimed"`           // 因 owner 失效移除的订阅数
	LastPublished      time.Time `json:"last_published"`      // 最后一次发布时间
	Rate               float64   `json:"rate"`                // 最近 60 秒的平均发布速率（次/秒）
}

// eventEntry 单个事件的累计数据
type eventEntry struct {
	published  int64
	delivered  int64
	failures   int64
	schedFails int64
	reclaimed  int64
	last       time.Time
	meter      *RateMeter
}

// EventStats 按事件名的有界统计
//
// 最多保留 capacity 个事件名，超出时淘汰最久未使用的事件。
type EventStats struct {
	mu    sync.Mutex
	clock clock.Clock
	cache *lru.Cache[string, *eventEntry]

	lockTimeouts  atomic.Int64
	subscriptions atomic.Int64
}

// NewEventStats 创建按事件统计，clk 为 nil 时使用系统时钟
func NewEventStats(capacity int, clk clock.Clock) (*EventStats, error) {
	cache, err := lru.New[string, *eventEntry](capacity)
	if err != nil {
		return nil, fmt.Errorf("create event stats cache: %w", err)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &EventStats{clock: clk, cache: cache}, nil
}

// entry 获取或创建事件条目，调用方持有 mu
func (s *EventStats) entry(event string) *eventEntry {
	if e, ok := s.cache.Get(event); ok {
		return e
	}
	e := &eventEntry{meter: NewRateMeter(s.clock)}
	s.cache.Add(event, e)
	return e
}

// Published 实现 Reporter
func (s *EventStats) Published(event string, subscribers int, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(event)
	e.published++
	e.delivered += int64(subscribers)
	e.last = s.clock.Now()
	e.meter.Add(1)
}

// CallbackFailed 实现 Reporter
func (s *EventStats) CallbackFailed(event string, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(event).failures++
}

// Scheduled 实现 Reporter（计入 Published 的 Delivered，这里不重复记录）
func (s *EventStats) Scheduled(string) {}

// SchedulingFailed 实现 Reporter
func (s *EventStats) SchedulingFailed(event string, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(event).schedFails++
}

// Reclaimed 实现 Reporter
func (s *EventStats) Reclaimed(event string, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(event).reclaimed += int64(n)
}

// LockTimeout 实现 Reporter
func (s *EventStats) LockTimeout(string) {
	s.lockTimeouts.Add(1)
}

// Subscriptions 实现 Reporter
func (s *EventStats) Subscriptions(delta int) {
	s.subscriptions.Add(int64(delta))
}

// Snapshot 返回指定事件的统计快照
func (s *EventStats) Snapshot(event string) (EventStat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Peek(event)
	if !ok {
		return EventStat{}, false
	}
	return e.snapshot(event), true
}

// All 返回所有事件的统计快照，按事件名排序
func (s *EventStats) All() []EventStat {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.cache.Keys()
	out := make([]EventStat, 0, len(keys))
	for _, k := range keys {
		if e, ok := s.cache.Peek(k); ok {
			out = append(out, e.snapshot(k))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event < out[j].Event })
	return out
}

// Len 返回当前跟踪的事件数
func (s *EventStats) Len() int {
	return s.cache.Len()
}

// LockTimeouts 返回锁超时累计次数
func (s *EventStats) LockTimeouts() int64 {
	return s.lockTimeouts.Load()
}

// SubscriptionCount 返回当前订阅总数
func (s *EventStats) SubscriptionCount() int64 {
	return s.subscriptions.Load()
}

// Reset 清空所有统计
func (s *EventStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
	s.lockTimeouts.Store(0)
}

func (e *eventEntry) snapshot(event string) EventStat {
	return EventStat{
		Event:              event,
		Published:          e.published,
		Delivered:          e.delivered,
		Failures:           e.failures,
		SchedulingFailures: e.schedFails,
		Reclaimed:          e.reclaimed,
		LastPublished:      e.last,
		Rate:               e.meter.Rate(),
	}
}
