// Package metrics exposes Prometheus collectors for the intake bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oca"

// Metrics groups every collector the bot reports. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	transitions    *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	analyses       *prometheus.CounterVec
	ruleErrors     *prometheus.CounterVec
	ruleReloads    *prometheus.CounterVec
	sessionEvicted prometheus.Counter
	gatherer       prometheus.Gatherer
}

// MustNew registers all collectors on reg and panics on duplicates, like
// promauto.
func MustNew(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "transitions_total",
			Help:      "Intake state transitions by source and target state.",
		}, []string{"from", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "rejections_total",
			Help:      "Replies rejected by a state's validator.",
		}, []string{"state"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "reports_total",
			Help:      "Reports rendered, by entry point.",
		}, []string{"source"}),
		ruleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "rule_errors_total",
			Help:      "Syndrome rules skipped because they failed to evaluate.",
		}, []string{"rule"}),
		ruleReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rules",
			Name:      "reloads_total",
			Help:      "Rule configuration load attempts by result.",
		}, []string{"result"}),
		sessionEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "evictions_total",
			Help:      "Sessions removed by TTL expiry or capacity eviction.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.transitions, m.rejections, m.analyses, m.ruleErrors, m.ruleReloads, m.sessionEvicted)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Rejection(state string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(state).Inc()
}

func (m *Metrics) Analysis(source string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(source).Inc()
}

func (m *Metrics) RuleError(ruleID string) {
	if m == nil {
		return
	}
	m.ruleErrors.WithLabelValues(ruleID).Inc()
}

func (m *Metrics) RuleReload(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.ruleReloads.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionEvicted() {
	if m == nil {
		return
	}
	m.sessionEvicted.Inc()
}
