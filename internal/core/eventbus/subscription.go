package eventbus

import (
	"fmt"
	"reflect"
	"strings"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// subscription 一条订阅记录
//
// 插入注册表后不再修改，快照可以直接共享指针。
type subscription struct {
	id       string
	event    string
	callback pkgif.Callback
	owner    pkgif.Owner
	active   bool
}

// newSubscriptionID 生成订阅 ID
//
// 格式: sub_<事件名，'.' 替换为 '_'>_<回调代码地址十六进制>_<序号>
// 序号单调递增，保证 ID 唯一。
func newSubscriptionID(event string, cb pkgif.Callback, seq uint64) string {
	return fmt.Sprintf("sub_%s_%x_%d", strings.ReplaceAll(event, ".", "_"), callbackIdentity(cb), seq)
}

// callbackIdentity 返回回调的代码地址，未设置时为 0
func callbackIdentity(cb pkgif.Callback) uintptr {
	fn := cb.Func()
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// ownerTypeName 返回 owner 的类型名，无 owner 时为 "None"
func ownerTypeName(owner pkgif.Owner) string {
	if owner == nil {
		return "None"
	}
	return fmt.Sprintf("%T", owner)
}
