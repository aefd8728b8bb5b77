package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PromReporter 基于 Prometheus 的 Reporter
type PromReporter struct {
	published        *prometheus.CounterVec
	callbackFailures *prometheus.CounterVec
	scheduled        prometheus.Counter
	schedulingFails  *prometheus.CounterVec
	reclaimed        prometheus.Counter
	lockTimeouts     *prometheus.CounterVec
	subscriptions    prometheus.Gauge
}

// NewPromReporter 创建 PromReporter 并注册到 reg
//
// namespace 为空时使用 "eventstore"。同一 reg 上重复注册会返回错误。
func NewPromReporter(reg prometheus.Registerer, namespace string) (*PromReporter, error) {
	if reg == nil {
		return nil, fmt.Errorf("prometheus registerer is nil")
	}
	if namespace == "" {
		namespace = "eventstore"
	}

	r := &PromReporter{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Number of publish operations, by delivery mode.",
		}, []string{"mode"}),
		callbackFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callback_failures_total",
			Help:      "Number of subscriber callbacks that returned an error or panicked.",
		}, []string{"reason"}),
		scheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "async_scheduled_total",
			Help:      "Number of callbacks scheduled for asynchronous execution.",
		}),
		schedulingFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduling_failures_total",
			Help:      "Number of asynchronous callbacks that could not be scheduled.",
		}, []string{"reason"}),
		reclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclaimed_subscriptions_total",
			Help:      "Number of subscriptions removed because their owner became inactive.",
		}),
		lockTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_timeouts_total",
			Help:      "Number of registry lock acquisitions that timed out, by operation.",
		}, []string{"op"}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions",
			Help:      "Current number of registered subscriptions.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.published, r.callbackFailures, r.scheduled, r.schedulingFails,
		r.reclaimed, r.lockTimeouts, r.subscriptions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// Published 实现 Reporter
func (r *PromReporter) Published(_ string, _ int, async bool) {
	mode := "sync"
	if async {
		mode = "async"
	}
	r.published.WithLabelValues(mode).Inc()
}

// CallbackFailed 实现 Reporter
func (r *PromReporter) CallbackFailed(_ string, reason string) {
	r.callbackFailures.WithLabelValues(reason).Inc()
}

// Scheduled 实现 Reporter
func (r *PromReporter) Scheduled(string) {
	r.scheduled.Inc()
}

// SchedulingFailed 实现 Reporter
func (r *PromReporter) SchedulingFailed(_ string, reason string) {
	r.schedulingFails.WithLabelValues(reason).Inc()
}

// Reclaimed 实现 Reporter
func (r *PromReporter) Reclaimed(_ string, n int) {
	if n > 0 {
		r.reclaimed.Add(float64(n))
	}
}

// LockTimeout 实现 Reporter
func (r *PromReporter) LockTimeout(op string) {
	r.lockTimeouts.WithLabelValues(op).Inc()
}

// Subscriptions 实现 Reporter
func (r *PromReporter) Subscriptions(delta int) {
	r.subscriptions.Add(float64(delta))
}
