// Package mocks 提供统一的测试 Mock 实现
//
// # 核心 Mock
//
//   - MockEventBus: 模拟 interfaces.EventBus，记录订阅与发布调用，
//     默认行为按订阅顺序同步调用已注册回调
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 关键 Mock 记录调用历史，便于验证测试行为
// 3. 简化实现: 不做存活探测与惰性回收，仅提供测试所需的核心功能
//
// # 使用示例
//
// 验证调用:
//
//	func TestButtonPress(t *testing.T) {
//	    bus := mocks.NewMockEventBus()
//	    btn := demo.NewButton(bus)
//	    btn.Press()
//
//	    require.Len(t, bus.PublishCalls, 1)
//	    assert.Equal(t, "button.press", bus.PublishCalls[0].Event)
//	}
//
// 注入失败:
//
//	bus := &mocks.MockEventBus{
//	    PublishSyncFunc: func(event string, args ...any) ([]any, error) {
//	        return nil, eventbus.ErrLockTimeout
//	    },
//	}
package mocks
