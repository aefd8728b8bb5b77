// Package interfaces 定义 go-eventstore 的公共接口
//
// 接口文件：
//   - eventbus.go       - EventBus、Inspector、Owner 与存活信号
//   - callback.go       - 回调形态（EventFunc / PayloadFunc / VariadicFunc）
//
// 实现位于 internal/core/eventbus，外部通过根包 eventstore 使用。
//
// # 设计原则
//
//  1. 调用方只依赖接口，总线实现可替换（测试中使用 tests/mocks.MockEventBus）
//  2. 回调形态在订阅时显式声明，发布时按参数数量校验
//  3. owner 不被总线持有生命周期，只做身份比较与存活探测
package interfaces
