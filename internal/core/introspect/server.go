// Package introspect 提供本地自省 HTTP 服务
//
// 该服务运行在本地端口，提供事件总线的诊断信息，用于调试和监控。
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// 端点：
//   - GET /debug/introspect               - 完整诊断报告 (JSON)
//   - GET /debug/introspect/subscriptions - 订阅快照（文本）
//   - GET /debug/introspect/stats         - 按事件统计 (JSON)
//   - GET /metrics                        - Prometheus 指标（启用指标时）
//   - GET /debug/pprof/*                  - Go pprof 端点
//   - GET /health                         - 健康检查
package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-eventstore/internal/core/metrics"
	pkgif "github.com/dep2p/go-eventstore/pkg/interfaces"
	"github.com/dep2p/go-eventstore/pkg/lib/log"
)

var logger = log.Logger("core/introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:6060"

// Server 本地自省 HTTP 服务
type Server struct {
	// 依赖组件
	bus       pkgif.EventBus
	inspector pkgif.Inspector
	stats     *metrics.EventStats // 可选
	gatherer  prometheus.Gatherer // 可选

	// 配置
	addr string

	// HTTP 服务器
	server   *http.Server
	listener net.Listener

	// 状态
	running bool
	mu      sync.Mutex
}

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6060"
	Addr string

	// Bus 必需的事件总线
	Bus pkgif.EventBus

	// Inspector 必需的订阅自省
	Inspector pkgif.Inspector

	// Stats 可选的按事件统计
	Stats *metrics.EventStats

	// Gatherer 可选的 Prometheus 采集源
	Gatherer prometheus.Gatherer
}

// New 创建自省服务
func New(cfg Config) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	return &Server{
		bus:       cfg.Bus,
		inspector: cfg.Inspector,
		stats:     cfg.Stats,
		gatherer:  cfg.Gatherer,
		addr:      addr,
	}
}

// Handler 返回路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// 自省端点
	mux.HandleFunc("/debug/introspect", s.handleIntrospect)
	mux.HandleFunc("/debug/introspect/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("/debug/introspect/stats", s.handleStats)

	// 指标
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// pprof 端点
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 健康检查
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("自省服务异常退出", "error", err)
		}
	}()

	s.running = true
	logger.Info("自省服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("关闭自省服务失败", "error", err)
		return err
	}

	s.running = false
	logger.Info("自省服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// Report 完整诊断报告
type Report struct {
	Timestamp     time.Time                `json:"timestamp"`
	Events        []EventReport            `json:"events"`
	Subscriptions []pkgif.SubscriptionInfo `json:"subscriptions"`
	Stats         []metrics.EventStat      `json:"stats,omitempty"`
}

// EventReport 单个事件的订阅数
type EventReport struct {
	Event       string `json:"event"`
	Subscribers int    `json:"subscribers"`
}

// handleIntrospect 处理完整诊断请求
func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := s.collectReport()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, report)
}

// handleSubscriptions 处理订阅快照请求
func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.inspector.WriteDebugInfo(w); err != nil {
		logger.Warn("写入订阅快照失败", "error", err)
	}
}

// handleStats 处理统计请求
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.stats == nil {
		http.Error(w, "Stats not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, s.stats.All())
}

// handleHealth 处理健康检查请求
//
// 注册表锁超时视为 degraded。
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}{
		Status:    "ok",
		Timestamp: time.Now(),
	}

	if _, err := s.bus.Events(); err != nil {
		health.Status = "degraded"
	}

	s.writeJSON(w, health)
}

// ============================================================================
//                              辅助方法
// ============================================================================

// collectReport 收集诊断报告
func (s *Server) collectReport() (*Report, error) {
	infos, err := s.inspector.DebugInfo()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Timestamp:     time.Now(),
		Events:        []EventReport{},
		Subscriptions: infos,
	}
	for _, info := range infos {
		n := len(report.Events)
		if n > 0 && report.Events[n-1].Event == info.Event {
			report.Events[n-1].Subscribers++
			continue
		}
		report.Events = append(report.Events, EventReport{Event: info.Event, Subscribers: 1})
	}
	if report.Subscriptions == nil {
		report.Subscriptions = []pkgif.SubscriptionInfo{}
	}
	if s.stats != nil {
		report.Stats = s.stats.All()
	}
	return report, nil
}

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("编码 JSON 失败", "error", err)
	}
}
