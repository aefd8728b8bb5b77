package demo

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// EventMessage 消息屏显示的文本消息
const EventMessage = "message.received"

// maxMessages 消息屏保留的消息条数
const maxMessages = 8

// Screen 设备屏幕
//
// 屏幕以自身为 owner 订阅事件，Destroy 之后 Active 返回 false。
type Screen interface {
	pkgif.LivenessReporter

	// Name 屏幕名称
	Name() string

	// Create 订阅屏幕关心的事件
	Create() error

	// Destroy 取消屏幕的全部订阅
	Destroy() error

	// View 返回当前渲染内容
	View() string
}

// screenBase 屏幕公共部分
type screenBase struct {
	name   string
	bus    pkgif.EventBus
	active atomic.Bool

	mu    sync.RWMutex
	clock string
}

// Name 屏幕名称
func (s *screenBase) Name() string { return s.name }

// Active 屏幕是否存活
func (s *screenBase) Active() bool { return s.active.Load() }

// create 标记存活并以 owner 身份订阅
func (s *screenBase) create(owner pkgif.Owner, subs map[string]pkgif.Callback) error {
	s.active.Store(true)
	for event, cb := range subs {
		if _, err := s.bus.Subscribe(event, cb, owner); err != nil {
			return fmt.Errorf("%s subscribe %s: %w", s.name, event, err)
		}
	}
	logger.Debug("screen created", "screen", s.name)
	return nil
}

// destroy 标记失效并移除 owner 的订阅
func (s *screenBase) destroy(owner pkgif.Owner) error {
	if !s.active.Swap(false) {
		return nil
	}
	n, err := s.bus.UnsubscribeByOwner(owner)
	if err != nil {
		return fmt.Errorf("%s destroy: %w", s.name, err)
	}
	logger.Debug("screen destroyed", "screen", s.name, "subscriptions", n)
	return nil
}

// onTime 更新时钟标签
func (s *screenBase) onTime(_ string, payload any) (any, error) {
	if !s.Active() {
		return nil, nil
	}
	t, ok := payload.(string)
	if !ok {
		return nil, fmt.Errorf("time.update: unexpected payload %T", payload)
	}
	s.mu.Lock()
	s.clock = t
	s.mu.Unlock()
	return nil, nil
}

func (s *screenBase) clockLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clock == "" {
		return "--:--:--"
	}
	return s.clock
}

// ============================================================================
//                              WelcomeScreen
// ============================================================================

// WelcomeScreen 开机欢迎屏
type WelcomeScreen struct {
	screenBase
}

// NewWelcomeScreen 创建欢迎屏
func NewWelcomeScreen(bus pkgif.EventBus) *WelcomeScreen {
	return &WelcomeScreen{screenBase: screenBase{name: "WelcomeScreen", bus: bus}}
}

// Create 订阅 time.update
func (s *WelcomeScreen) Create() error {
	return s.create(s, map[string]pkgif.Callback{
		EventTimeUpdate: pkgif.OnPayload(s.onTime),
	})
}

// Destroy 取消订阅
func (s *WelcomeScreen) Destroy() error { return s.destroy(s) }

// View 渲染
func (s *WelcomeScreen) View() string {
	return fmt.Sprintf("[%s] Welcome\npress button to continue", s.clockLabel())
}

// ============================================================================
//                              ConnectingScreen
// ============================================================================

// ConnectingScreen 等待网络的连接屏
type ConnectingScreen struct {
	screenBase

	statusMu sync.RWMutex
	status   string
}

// NewConnectingScreen 创建连接屏
func NewConnectingScreen(bus pkgif.EventBus) *ConnectingScreen {
	return &ConnectingScreen{
		screenBase: screenBase{name: "ConnectingScreen", bus: bus},
		status:     StatusDisconnected,
	}
}

// Create 订阅 time.update 与 network.status
func (s *ConnectingScreen) Create() error {
	return s.create(s, map[string]pkgif.Callback{
		EventTimeUpdate:    pkgif.OnPayload(s.onTime),
		EventNetworkStatus: pkgif.OnPayload(s.onStatus),
	})
}

// Destroy 取消订阅
func (s *ConnectingScreen) Destroy() error { return s.destroy(s) }

// Status 返回最近收到的网络状态
func (s *ConnectingScreen) Status() string {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *ConnectingScreen) onStatus(_ string, payload any) (any, error) {
	if !s.Active() {
		return nil, nil
	}
	status, _ := payload.(string)
	s.statusMu.Lock()
	s.status = status
	s.statusMu.Unlock()
	return status, nil
}

// View 渲染
func (s *ConnectingScreen) View() string {
	return fmt.Sprintf("[%s] Connecting...\nnetwork: %s", s.clockLabel(), s.Status())
}

// ============================================================================
//                              MessageScreen
// ============================================================================

// MessageScreen 消息列表屏
//
// button.press 滚动到下一条消息。
type MessageScreen struct {
	screenBase

	msgMu    sync.RWMutex
	messages []string
	cursor   int
}

// NewMessageScreen 创建消息屏
func NewMessageScreen(bus pkgif.EventBus) *MessageScreen {
	return &MessageScreen{screenBase: screenBase{name: "MessageScreen", bus: bus}}
}

// Create 订阅 time.update、button.press 与 message.received
func (s *MessageScreen) Create() error {
	return s.create(s, map[string]pkgif.Callback{
		EventTimeUpdate:  pkgif.OnPayload(s.onTime),
		EventButtonPress: pkgif.OnPayload(s.onButton),
		EventMessage:     pkgif.OnPayload(s.onMessage),
	})
}

// Destroy 取消订阅
func (s *MessageScreen) Destroy() error { return s.destroy(s) }

// Messages 返回保留的消息
func (s *MessageScreen) Messages() []string {
	s.msgMu.RLock()
	defer s.msgMu.RUnlock()
	return append([]string(nil), s.messages...)
}

// Cursor 返回当前显示的消息下标
func (s *MessageScreen) Cursor() int {
	s.msgMu.RLock()
	defer s.msgMu.RUnlock()
	return s.cursor
}

func (s *MessageScreen) onMessage(_ string, payload any) (any, error) {
	if !s.Active() {
		return nil, nil
	}
	msg := fmt.Sprint(payload)
	s.msgMu.Lock()
	s.messages = append(s.messages, msg)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
	s.cursor = len(s.messages) - 1
	s.msgMu.Unlock()
	return nil, nil
}

func (s *MessageScreen) onButton(_ string, _ any) (any, error) {
	if !s.Active() {
		return nil, nil
	}
	s.msgMu.Lock()
	defer s.msgMu.Unlock()
	if len(s.messages) > 0 {
		s.cursor = (s.cursor + 1) % len(s.messages)
	}
	return s.cursor, nil
}

// View 渲染
func (s *MessageScreen) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Messages", s.clockLabel())

	s.msgMu.RLock()
	defer s.msgMu.RUnlock()
	if len(s.messages) == 0 {
		b.WriteString("\n(no messages)")
		return b.String()
	}
	fmt.Fprintf(&b, "\n%d/%d %s", s.cursor+1, len(s.messages), s.messages[s.cursor])
	return b.String()
}

var (
	_ Screen = (*WelcomeScreen)(nil)
	_ Screen = (*ConnectingScreen)(nil)
	_ Screen = (*MessageScreen)(nil)
)
