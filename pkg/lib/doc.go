// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - log: 日志封装（按组件的懒加载 slog logger）
//
// # 使用示例
//
//	import "github.com/dep2p/go-eventstore/pkg/lib/log"
//
//	var logger = log.Logger("demo")
package lib
