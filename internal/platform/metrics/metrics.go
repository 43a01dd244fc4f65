// Package metrics expone los contadores Prometheus del ledger y el handler /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livestock"

// Outcomes usados como label.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Registry agrupa los collectors del servicio en un registry propio
// (no el global), así cada test puede crear el suyo.
type Registry struct {
	reg *prometheus.Registry

	LifecycleOps      *prometheus.CounterVec
	AnalyticsRequests *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		LifecycleOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_operations_total",
			Help:      "Lifecycle operations (sale, status change, bulk sale) by outcome.",
		}, []string{"operation", "outcome"}),
		AnalyticsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_requests_total",
			Help:      "Analytics series computed, by source and period mode.",
		}, []string{"source", "mode"}),
	}

	reg.MustRegister(
		r.LifecycleOps,
		r.AnalyticsRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Registry) ObserveLifecycle(operation, outcome string) {
	if r == nil {
		return
	}
	r.LifecycleOps.WithLabelValues(operation, outcome).Inc()
}

func (r *Registry) ObserveAnalytics(source, mode string) {
	if r == nil {
		return
	}
	r.AnalyticsRequests.WithLabelValues(source, mode).Inc()
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
