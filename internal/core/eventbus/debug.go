package eventbus

import (
	"fmt"
	"io"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// DebugInfo 返回全部订阅的快照
//
// 按事件名排序，事件内保持订阅顺序。不回收失效订阅，
// 失效 owner 的订阅以 Active=false 出现。
func (b *Bus) DebugInfo() ([]pkgif.SubscriptionInfo, error) {
	var infos []pkgif.SubscriptionInfo
	err := b.locked("debug_info", func() error {
		for _, event := range b.reg.events() {
			for _, s := range b.reg.subscribers[event] {
				infos = append(infos, pkgif.SubscriptionInfo{
					ID:        s.id,
					Event:     event,
					OwnerType: ownerTypeName(s.owner),
					Active:    s.active && isAlive(s.owner),
					Shape:     s.callback.Shape().String(),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// WriteDebugInfo 以文本形式输出订阅快照
//
//	=== EventStore Debug Info ===
//	Event 'time.update': 2 subscribers
//	  - sub_time_update_4a3f20_1 (owner=*demo.MessageScreen, shape=payload, active=true)
func (b *Bus) WriteDebugInfo(w io.Writer) error {
	infos, err := b.DebugInfo()
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "=== EventStore Debug Info ==="); err != nil {
		return err
	}
	for i := 0; i < len(infos); {
		event := infos[i].Event
		j := i
		for j < len(infos) && infos[j].Event == event {
			j++
		}
		if _, err := fmt.Fprintf(w, "Event '%s': %d subscribers\n", event, j-i); err != nil {
			return err
		}
		for _, info := range infos[i:j] {
			if _, err := fmt.Fprintf(w, "  - %s (owner=%s, shape=%s, active=%t)\n",
				info.ID, info.OwnerType, info.Shape, info.Active); err != nil {
				return err
			}
		}
		i = j
	}
	return nil
}
