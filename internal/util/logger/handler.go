package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// globalOutput 全局日志输出目标，默认为 stderr
	globalOutput   io.Writer = os.Stderr
	globalOutputMu sync.RWMutex
)

// dynamicWriter 是一个动态查找 globalOutput 的 io.Writer
// 这样即使在 logger 创建后修改 globalOutput，也能生效
type dynamicWriter struct{}

func (w *dynamicWriter) Write(p []byte) (n int, err error) {
	globalOutputMu.RLock()
	output := globalOutput
	globalOutputMu.RUnlock()
	return output.Write(p)
}

// levelTable 按组件保存可动态调整的级别
type levelTable struct {
	cfg *Config

	mu     sync.Mutex
	levels map[string]*slog.LevelVar
	def    *slog.LevelVar
}

func newLevelTable(cfg *Config) *levelTable {
	def := new(slog.LevelVar)
	def.Set(cfg.DefaultLevel)
	return &levelTable{
		cfg:    cfg,
		levels: make(map[string]*slog.LevelVar),
		def:    def,
	}
}

// levelVar 返回组件对应的级别变量，首次访问时按配置创建
func (t *levelTable) levelVar(component string) *slog.LevelVar {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lv, ok := t.levels[component]; ok {
		return lv
	}
	lv := new(slog.LevelVar)
	lv.Set(t.cfg.LevelForSubsystem(component))
	t.levels[component] = lv
	return lv
}

// setAll 将所有组件（含默认）设置为同一级别
func (t *levelTable) setAll(level slog.Level) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.def.Set(level)
	for _, lv := range t.levels {
		lv.Set(level)
	}
}

// componentHandler 是一个按 component 属性决定级别的 slog.Handler
//
// pkg/lib/log.LazyLogger 通过 With("component", name) 派生 logger，
// WithAttrs 在这里捕获组件名并切换到该组件的级别。
type componentHandler struct {
	table *levelTable
	level *slog.LevelVar
	inner slog.Handler
}

// newHandler 创建根 Handler
func newHandler(cfg *Config, w io.Writer) *componentHandler {
	opts := &slog.HandlerOptions{
		// 级别由 componentHandler.Enabled 决定，内层全部放行
		Level:     slog.LevelDebug,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			// 简化时间格式
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			// 简化级别名称
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelToString(lvl))
				}
			}
			return a
		},
	}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}

	table := newLevelTable(cfg)
	return &componentHandler{
		table: table,
		level: table.def,
		inner: inner,
	}
}

// Enabled 检查是否启用指定级别
func (h *componentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle 处理日志记录
func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

// WithAttrs 添加属性
func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, a := range attrs {
		if a.Key == "component" {
			level = h.table.levelVar(a.Value.String())
		}
	}
	return &componentHandler{
		table: h.table,
		level: level,
		inner: h.inner.WithAttrs(attrs),
	}
}

// WithGroup 添加组
func (h *componentHandler) WithGroup(name string) slog.Handler {
	return &componentHandler{
		table: h.table,
		level: h.level,
		inner: h.inner.WithGroup(name),
	}
}

// levelToString 将日志级别转换为小写字符串
func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelInfo:
		return "info"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}
