// Package metrics defines the custom Prometheus metrics for the task API. It
// is the single source of truth for metric names, labels, and help strings.
//
// Build one Metrics per registry with New. All methods are safe on a nil
// *Metrics so components can run without instrumentation in tests.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "todo"

// Metrics groups the domain collectors.
type Metrics struct {
	// AuthAttemptsTotal counts register and login attempts that reached the handler.
	// Labels:
	//   - action: "register" or "login"
	//   - result: "success", "invalid", "conflict", "denied", or "error"
	AuthAttemptsTotal *prometheus.CounterVec

	// RateLimitedTotal counts requests rejected by the auth rate limiter.
	RateLimitedTotal prometheus.Counter

	// TaskMutationsTotal counts successful task writes.
	// Label:
	//   - action: "created", "status_changed", or "deleted"
	TaskMutationsTotal *prometheus.CounterVec

	// AuditEventsTotal counts audit events by outcome.
	// Label:
	//   - result: "recorded", "failed", or "dropped"
	AuditEventsTotal *prometheus.CounterVec

	// AuditQueueDepth tracks the events waiting in each dispatcher worker channel.
	// Label:
	//   - worker_id: numeric worker index (e.g. "0", "1", …)
	AuditQueueDepth *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuthAttemptsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Total number of register and login attempts, by action and result.",
			},
			[]string{"action", "result"},
		),
		RateLimitedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Total number of auth requests rejected by the rate limiter.",
			},
		),
		TaskMutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_mutations_total",
				Help:      "Total number of successful task mutations, by action.",
			},
			[]string{"action"},
		),
		AuditEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_events_total",
				Help:      "Total number of task audit events, by outcome.",
			},
			[]string{"result"},
		),
		AuditQueueDepth: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "audit_queue_depth",
				Help:      "Current number of audit events pending in each dispatcher worker channel.",
			},
			[]string{"worker_id"},
		),
	}
}

func (m *Metrics) AuthAttempt(action, result string) {
	if m == nil {
		return
	}
	m.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

func (m *Metrics) TaskMutation(action string) {
	if m == nil {
		return
	}
	m.TaskMutationsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) AuditEvent(result string) {
	if m == nil {
		return
	}
	m.AuditEventsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetQueueDepth(worker, depth int) {
	if m == nil {
		return
	}
	m.AuditQueueDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}
