// Package demo 模拟一台使用事件总线的小屏设备
//
// 各组件只通过 EventBus 的发布/订阅契约交互，互不持有引用：
//
//	TimeService    --time.update(HH:MM:SS, 异步)-->  屏幕
//	NetworkMonitor --network.status(CONNECTED/DISCONNECTED)--> ScreenManager, 屏幕
//	Button         --button.press(次数)-->           ScreenManager, 屏幕
//
// 屏幕以自身为 owner 订阅，Destroy 时按 owner 一次性取消订阅，
// Destroy 之后 Active() 返回 false，遗漏的订阅会被总线惰性回收。
package demo

// 事件名
const (
	EventTimeUpdate    = "time.update"
	EventNetworkStatus = "network.status"
	EventButtonPress   = "button.press"
)

// 网络状态
const (
	StatusConnected    = "CONNECTED"
	StatusDisconnected = "DISCONNECTED"
)
