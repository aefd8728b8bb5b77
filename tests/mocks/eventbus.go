package mocks

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dep2p/go-eventstore/pkg/interfaces"
)

// PublishCall 一次发布调用
type PublishCall struct {
	Event string
	Args  []any
	Async bool
}

// SubscribeCall 一次订阅调用
type SubscribeCall struct {
	Event string
	Owner interfaces.Owner
}

// mockSub 已注册的订阅
type mockSub struct {
	id    string
	cb    interfaces.Callback
	owner interfaces.Owner
}

// MockEventBus 模拟 EventBus 接口实现
//
// 用于测试需要事件总线依赖的组件。零值可用。
// owner 按 == 比较，不适用于不可比较的 owner 值。
type MockEventBus struct {
	mu sync.Mutex

	// 存储
	subs    map[string][]mockSub
	counter int

	// 可覆盖的方法
	SubscribeFunc    func(event string, cb interfaces.Callback, owner interfaces.Owner) (string, error)
	PublishSyncFunc  func(event string, args ...any) ([]any, error)
	PublishAsyncFunc func(event string, args ...any) (int, error)

	// 调用记录
	SubscribeCalls          []SubscribeCall
	UnsubscribeCalls        []string
	UnsubscribeByOwnerCalls []interfaces.Owner
	PublishCalls            []PublishCall
}

// NewMockEventBus 创建 MockEventBus
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subs: make(map[string][]mockSub)}
}

// Subscribe 订阅事件
func (m *MockEventBus) Subscribe(event string, cb interfaces.Callback, owner interfaces.Owner) (string, error) {
	m.mu.Lock()
	m.SubscribeCalls = append(m.SubscribeCalls, SubscribeCall{Event: event, Owner: owner})
	m.mu.Unlock()

	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(event, cb, owner)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs == nil {
		m.subs = make(map[string][]mockSub)
	}
	m.counter++
	id := fmt.Sprintf("mock_%d", m.counter)
	m.subs[event] = append(m.subs[event], mockSub{id: id, cb: cb, owner: owner})
	return id, nil
}

// Unsubscribe 按 ID 取消订阅
func (m *MockEventBus) Unsubscribe(event, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnsubscribeCalls = append(m.UnsubscribeCalls, id)

	list := m.subs[event]
	i := slices.IndexFunc(list, func(s mockSub) bool { return s.id == id })
	if i < 0 {
		return false, nil
	}
	m.store(event, slices.Delete(list, i, i+1))
	return true, nil
}

// UnsubscribeByOwner 移除 owner 的全部订阅
func (m *MockEventBus) UnsubscribeByOwner(owner interfaces.Owner) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnsubscribeByOwnerCalls = append(m.UnsubscribeByOwnerCalls, owner)

	n := 0
	for event, list := range m.subs {
		before := len(list)
		list = slices.DeleteFunc(list, func(s mockSub) bool { return s.owner == owner })
		n += before - len(list)
		m.store(event, list)
	}
	return n, nil
}

// UnsubscribeAll 移除事件的全部订阅
func (m *MockEventBus) UnsubscribeAll(event string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.subs[event])
	delete(m.subs, event)
	return n, nil
}

// PublishSync 记录并同步调用回调
//
// 结果与订阅一一对应，失败的回调对应 nil。
func (m *MockEventBus) PublishSync(event string, args ...any) ([]any, error) {
	m.record(event, args, false)
	if m.PublishSyncFunc != nil {
		return m.PublishSyncFunc(event, args...)
	}

	subs := m.snapshot(event)
	results := make([]any, len(subs))
	for i, s := range subs {
		results[i], _ = call(s.cb, event, args)
	}
	return results, nil
}

// Publish 同 PublishSync
func (m *MockEventBus) Publish(event string, args ...any) ([]any, error) {
	return m.PublishSync(event, args...)
}

// PublishAsync 记录并同步调用回调，返回调用数量
func (m *MockEventBus) PublishAsync(event string, args ...any) (int, error) {
	m.record(event, args, true)
	if m.PublishAsyncFunc != nil {
		return m.PublishAsyncFunc(event, args...)
	}

	subs := m.snapshot(event)
	for _, s := range subs {
		call(s.cb, event, args)
	}
	return len(subs), nil
}

// SubscriberCount 返回事件订阅数
func (m *MockEventBus) SubscriberCount(event string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[event]), nil
}

// Events 返回有订阅者的事件名（已排序）
func (m *MockEventBus) Events() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.subs))
	for event := range m.subs {
		names = append(names, event)
	}
	slices.Sort(names)
	return names, nil
}

// Cleanup 无操作
func (m *MockEventBus) Cleanup() error { return nil }

// Published 返回指定事件的发布记录
func (m *MockEventBus) Published(event string) []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []PublishCall
	for _, c := range m.PublishCalls {
		if c.Event == event {
			calls = append(calls, c)
		}
	}
	return calls
}

func (m *MockEventBus) record(event string, args []any, async bool) {
	m.mu.Lock()
	m.PublishCalls = append(m.PublishCalls, PublishCall{Event: event, Args: slices.Clone(args), Async: async})
	m.mu.Unlock()
}

func (m *MockEventBus) snapshot(event string) []mockSub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.subs[event])
}

func (m *MockEventBus) store(event string, list []mockSub) {
	if len(list) == 0 {
		delete(m.subs, event)
		return
	}
	m.subs[event] = list
}

// call 按参数数量选择回调形态，形态不符或出错时返回 (nil, false)
func call(cb interfaces.Callback, event string, args []any) (any, bool) {
	var (
		r   any
		err error
	)
	switch {
	case cb.Shape() == interfaces.ShapeVariadic:
		r, err = cb.VariadicFn()(event, args...)
	case cb.Shape() == interfaces.ShapeEvent && len(args) == 0:
		r, err = cb.EventFn()(event)
	case cb.Shape() == interfaces.ShapePayload && len(args) == 1:
		r, err = cb.PayloadFn()(event, args[0])
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return r, true
}

var _ interfaces.EventBus = (*MockEventBus)(nil)
