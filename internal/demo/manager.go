package demo

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// ScreenManager 屏幕切换
//
// 切换规则：
//   - 欢迎屏按键：已连接进入消息屏，否则进入连接屏
//   - CONNECTED：欢迎屏或连接屏进入消息屏
//   - DISCONNECTED：消息屏回到连接屏
//
// 切换时先销毁旧屏幕再创建新屏幕。
type ScreenManager struct {
	bus pkgif.EventBus

	mu        sync.Mutex
	current   Screen
	connected bool
	history   []string
	started   bool
}

// NewScreenManager 创建屏幕管理器
func NewScreenManager(bus pkgif.EventBus) *ScreenManager {
	return &ScreenManager{bus: bus}
}

// Start 订阅 network.status 与 button.press，并显示欢迎屏
func (m *ScreenManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil
	}

	if _, err := m.bus.Subscribe(EventNetworkStatus, pkgif.OnPayload(m.onStatus), m); err != nil {
		return fmt.Errorf("screen manager: %w", err)
	}
	if _, err := m.bus.Subscribe(EventButtonPress, pkgif.OnPayload(m.onButton), m); err != nil {
		_, _ = m.bus.UnsubscribeByOwner(m)
		return fmt.Errorf("screen manager: %w", err)
	}
	m.started = true
	return m.show(NewWelcomeScreen(m.bus))
}

// Close 销毁当前屏幕并取消管理器的订阅
func (m *ScreenManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false

	var err error
	if m.current != nil {
		err = m.current.Destroy()
		m.current = nil
	}
	_, uerr := m.bus.UnsubscribeByOwner(m)
	return multierr.Append(err, uerr)
}

// Current 返回当前屏幕
func (m *ScreenManager) Current() Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// History 返回依次显示过的屏幕名称
func (m *ScreenManager) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.history)
}

// Show 切换到指定屏幕
func (m *ScreenManager) Show(s Screen) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.show(s)
}

// show 需持有 m.mu
func (m *ScreenManager) show(s Screen) error {
	if m.current != nil {
		if err := m.current.Destroy(); err != nil {
			return err
		}
	}
	m.current = s
	m.history = append(m.history, s.Name())
	logger.Info("screen switched", "screen", s.Name())
	return s.Create()
}

func (m *ScreenManager) onStatus(_ string, payload any) (any, error) {
	status, ok := payload.(string)
	if !ok {
		return nil, fmt.Errorf("network.status: unexpected payload %T", payload)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil, nil
	}

	m.connected = status == StatusConnected
	switch m.current.(type) {
	case *WelcomeScreen, *ConnectingScreen:
		if m.connected {
			return nil, m.show(NewMessageScreen(m.bus))
		}
	case *MessageScreen:
		if !m.connected {
			return nil, m.show(NewConnectingScreen(m.bus))
		}
	}
	return nil, nil
}

func (m *ScreenManager) onButton(_ string, _ any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil, nil
	}

	if _, ok := m.current.(*WelcomeScreen); !ok {
		return nil, nil
	}
	if m.connected {
		return nil, m.show(NewMessageScreen(m.bus))
	}
	return nil, m.show(NewConnectingScreen(m.bus))
}
