package interfaces

// ============================================================================
// 回调形态
// ============================================================================

// EventFunc 只接收事件名的回调
type EventFunc func(event string) (any, error)

// PayloadFunc 接收事件名和单个载荷的回调
type PayloadFunc func(event string, payload any) (any, error)

// VariadicFunc 接收事件名和任意数量参数的回调
type VariadicFunc func(event string, args ...any) (any, error)

// CallbackShape 回调形态标签
type CallbackShape uint8

const (
	// ShapeNone 零值，表示未设置回调
	ShapeNone CallbackShape = iota
	// ShapeEvent 对应 EventFunc
	ShapeEvent
	// ShapePayload 对应 PayloadFunc
	ShapePayload
	// ShapeVariadic 对应 VariadicFunc
	ShapeVariadic
)

// String 返回形态名称
func (s CallbackShape) String() string {
	switch s {
	case ShapeEvent:
		return "event"
	case ShapePayload:
		return "payload"
	case ShapeVariadic:
		return "variadic"
	default:
		return "none"
	}
}

// Callback 回调的标签联合体
//
// 形态在订阅时确定，发布时按参数数量选择调用方式：
// 0 个参数调用 EventFunc，1 个参数调用 PayloadFunc，更多参数调用 VariadicFunc；
// VariadicFunc 可接受任意数量参数。
type Callback struct {
	shape    CallbackShape
	event    EventFunc
	payload  PayloadFunc
	variadic VariadicFunc
}

// OnEvent 包装只接收事件名的回调
func OnEvent(fn EventFunc) Callback {
	if fn == nil {
		return Callback{}
	}
	return Callback{shape: ShapeEvent, event: fn}
}

// OnPayload 包装接收单个载荷的回调
func OnPayload(fn PayloadFunc) Callback {
	if fn == nil {
		return Callback{}
	}
	return Callback{shape: ShapePayload, payload: fn}
}

// OnArgs 包装接收任意参数的回调
func OnArgs(fn VariadicFunc) Callback {
	if fn == nil {
		return Callback{}
	}
	return Callback{shape: ShapeVariadic, variadic: fn}
}

// Shape 返回回调形态
func (c Callback) Shape() CallbackShape { return c.shape }

// IsZero 是否未设置回调
func (c Callback) IsZero() bool { return c.shape == ShapeNone }

// Func 返回底层函数值（用于身份计算）
func (c Callback) Func() any {
	switch c.shape {
	case ShapeEvent:
		return c.event
	case ShapePayload:
		return c.payload
	case ShapeVariadic:
		return c.variadic
	default:
		return nil
	}
}

// EventFn 返回 EventFunc（形态不符时为 nil）
func (c Callback) EventFn() EventFunc { return c.event }

// PayloadFn 返回 PayloadFunc（形态不符时为 nil）
func (c Callback) PayloadFn() PayloadFunc { return c.payload }

// VariadicFn 返回 VariadicFunc（形态不符时为 nil）
func (c Callback) VariadicFn() VariadicFunc { return c.variadic }
