package demo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

var logger = log.Logger("demo")

// TimeLayout time.update 的时间格式
const TimeLayout = "15:04:05"

// ============================================================================
//                              TimeService
// ============================================================================

// TimeService 周期发布当前时间
type TimeService struct {
	bus   pkgif.EventBus
	clock clock.Clock

	mu      sync.RWMutex
	current string
}

// NewTimeService 创建时间服务，clk 为 nil 时使用真实时钟
func NewTimeService(bus pkgif.EventBus, clk clock.Clock) *TimeService {
	if clk == nil {
		clk = clock.New()
	}
	return &TimeService{bus: bus, clock: clk, current: "00:00:00"}
}

// Current 返回最近一次发布的时间
func (s *TimeService) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Tick 刷新时间并异步发布，返回成功调度的回调数量
func (s *TimeService) Tick() (int, error) {
	now := s.clock.Now().Format(TimeLayout)
	s.mu.Lock()
	s.current = now
	s.mu.Unlock()

	return s.bus.PublishAsync(EventTimeUpdate, now)
}

// Run 按 interval 调用 Tick，直到 ctx 结束
func (s *TimeService) Run(ctx context.Context, interval time.Duration) {
	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(); err != nil {
				logger.Warn("publish time update failed", "err", err)
			}
		}
	}
}

// ============================================================================
//                              NetworkMonitor
// ============================================================================

// NetworkMonitor 发布网络连接状态
type NetworkMonitor struct {
	bus       pkgif.EventBus
	connected atomic.Bool
}

// NewNetworkMonitor 创建网络监视器
func NewNetworkMonitor(bus pkgif.EventBus) *NetworkMonitor {
	return &NetworkMonitor{bus: bus}
}

// Connected 返回最近一次设置的状态
func (n *NetworkMonitor) Connected() bool {
	return n.connected.Load()
}

// SetState 更新状态并同步发布 network.status
//
// 状态未变化时同样发布。
func (n *NetworkMonitor) SetState(connected bool) ([]any, error) {
	n.connected.Store(connected)
	status := StatusDisconnected
	if connected {
		status = StatusConnected
	}
	logger.Info("network status changed", "status", status)
	return n.bus.PublishSync(EventNetworkStatus, status)
}

// ============================================================================
//                              Button
// ============================================================================

// Button 物理按键
type Button struct {
	bus     pkgif.EventBus
	presses atomic.Int64
}

// NewButton 创建按键
func NewButton(bus pkgif.EventBus) *Button {
	return &Button{bus: bus}
}

// Presses 返回累计按下次数
func (b *Button) Presses() int64 {
	return b.presses.Load()
}

// Press 按下一次，同步发布 button.press（参数为累计次数）
func (b *Button) Press() ([]any, error) {
	count := b.presses.Add(1)
	return b.bus.PublishSync(EventButtonPress, count)
}
