package eventbus

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
)

// valueOwner 可比较的值类型 owner
type valueOwner struct {
	name string
}

// boxedOwner 含接口字段，运行期可能不可比较
type boxedOwner struct {
	v any
}

// TestIsAlive 测试存活探测
func TestIsAlive(t *testing.T) {
	released := NewHandle("released")
	released.Release()
	var nilScreen *screen

	tests := []struct {
		name  string
		owner pkgif.Owner
		want  bool
	}{
		{"nil owner", nil, true},
		{"owner without liveness", &valueOwner{name: "plain"}, true},
		{"value owner", "welcome", true},
		{"active screen", &screen{active: true}, true},
		{"inactive screen", &screen{active: false}, false},
		{"active handle", NewHandle("h"), true},
		{"released handle", released, false},
		{"probe panics", nilScreen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAlive(tt.owner))
		})
	}
}

// TestSameOwner 测试 owner 身份比较
func TestSameOwner(t *testing.T) {
	a := &screen{name: "a"}
	b := &screen{name: "a"}
	m := map[string]int{}

	tests := []struct {
		name string
		x, y pkgif.Owner
		want bool
	}{
		{"nil and nil", nil, nil, true},
		{"nil and pointer", nil, a, false},
		{"pointer and nil", a, nil, false},
		{"same pointer", a, a, true},
		{"equal but distinct pointers", a, b, false},
		{"same map", m, m, true},
		{"equal strings", "screen", "screen", true},
		{"different strings", "screen", "other", false},
		{"different types", 1, int64(1), false},
		{"equal structs", valueOwner{"x"}, valueOwner{"x"}, true},
		{"uncomparable type", []int{1}, []int{2}, false},
		{"uncomparable dynamic value", boxedOwner{v: []int{1}}, boxedOwner{v: []int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameOwner(tt.x, tt.y))
		})
	}
}

// TestHandle 测试 owner 令牌
func TestHandle(t *testing.T) {
	h := NewHandle("time_service")

	_, err := uuid.Parse(h.ID())
	require.NoError(t, err)
	assert.Equal(t, "time_service", h.Name())
	assert.True(t, strings.HasPrefix(h.String(), "time_service#"))

	assert.True(t, h.Active())
	h.Release()
	assert.False(t, h.Active())

	assert.NotEqual(t, h.ID(), NewHandle("time_service").ID())
}

// weakTarget 弱引用目标（含指针字段，避免微对象分配）
type weakTarget struct {
	name string
	buf  [64]byte
}

// TestWeakOwner 测试弱引用 owner
func TestWeakOwner(t *testing.T) {
	target := &weakTarget{name: "screen"}
	o1 := WeakOwner(target)
	o2 := WeakOwner(target)

	assert.True(t, isAlive(o1))
	assert.True(t, sameOwner(o1, o2))
	assert.False(t, sameOwner(o1, WeakOwner(&weakTarget{name: "screen"})))

	runtime.KeepAlive(target)
}

// TestWeakOwner_Collected 测试目标回收后 owner 失效
func TestWeakOwner_Collected(t *testing.T) {
	bus := newTestBus(t)

	o := func() pkgif.Owner {
		target := &weakTarget{name: "ephemeral"}
		return WeakOwner(target)
	}()
	_, err := bus.Subscribe("x", pkgif.OnEvent(noop), o)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		runtime.GC()
		count, err := bus.SubscriberCount("x")
		return err == nil && count == 0
	}, 2*time.Second, 10*time.Millisecond)
}
