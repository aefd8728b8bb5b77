package eventbus

import (
	"slices"
	"sort"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// registry 订阅注册表
//
// 所有方法都要求调用方持有 timedLock。
// 不变量：subscribers 中不存在空列表；每条订阅只属于一个列表。
type registry struct {
	subscribers map[string][]*subscription
	counter     uint64
	total       int
}

func newRegistry() *registry {
	return &registry{
		subscribers: make(map[string][]*subscription),
	}
}

// add 追加订阅，同一回调重复订阅会得到独立的订阅
func (r *registry) add(event string, cb pkgif.Callback, owner pkgif.Owner) *subscription {
	r.counter++
	sub := &subscription{
		id:       newSubscriptionID(event, cb, r.counter),
		event:    event,
		callback: cb,
		owner:    owner,
		active:   true,
	}
	r.subscribers[event] = append(r.subscribers[event], sub)
	r.total++
	return sub
}

// remove 按 ID 移除第一条匹配的订阅
func (r *registry) remove(event, id string) bool {
	subs := r.subscribers[event]
	i := slices.IndexFunc(subs, func(s *subscription) bool { return s.id == id })
	if i < 0 {
		return false
	}
	r.store(event, slices.Delete(subs, i, i+1))
	r.total--
	return true
}

// removeByOwner 移除所有归属于 owner 的订阅
func (r *registry) removeByOwner(owner pkgif.Owner) int {
	removed := 0
	for event, subs := range r.subscribers {
		before := len(subs)
		subs = slices.DeleteFunc(subs, func(s *subscription) bool {
			return sameOwner(s.owner, owner)
		})
		if n := before - len(subs); n > 0 {
			removed += n
			r.store(event, subs)
		}
	}
	r.total -= removed
	return removed
}

// removeAll 移除某事件的全部订阅
func (r *registry) removeAll(event string) int {
	n := len(r.subscribers[event])
	delete(r.subscribers, event)
	r.total -= n
	return n
}

// store 写回列表，空列表直接删除
func (r *registry) store(event string, subs []*subscription) {
	if len(subs) == 0 {
		delete(r.subscribers, event)
		return
	}
	r.subscribers[event] = subs
}

// events 返回有订阅者的事件名（已排序）
func (r *registry) events() []string {
	names := make([]string, 0, len(r.subscribers))
	for event := range r.subscribers {
		names = append(names, event)
	}
	sort.Strings(names)
	return names
}

// sweep 回收所有事件中 owner 已失效的订阅，返回每个事件的回收数量
func (r *registry) sweep() map[string]int {
	reclaimed := make(map[string]int)
	for event := range r.subscribers {
		if n := r.reclaim(event); n > 0 {
			reclaimed[event] = n
		}
	}
	return reclaimed
}

// size 返回订阅总数
func (r *registry) size() int {
	return r.total
}
