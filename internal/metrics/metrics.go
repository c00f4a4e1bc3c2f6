// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "messmonitor"

// Metrics groups the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	// NotificationsCreated counts fan-out notifications, labelled by outcome
	// ("ok" or "failed").
	NotificationsCreated *prometheus.CounterVec

	// Reconciliations counts dashboard recomputes per view ("admin" or "member").
	Reconciliations *prometheus.CounterVec

	// SubscriptionErrors counts snapshots replaced by an empty list.
	SubscriptionErrors *prometheus.CounterVec

	// ActiveViews tracks live dashboard streams.
	ActiveViews prometheus.Gauge
}

// New creates the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		NotificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_notifications_total",
			Help:      "Notifications written by announcement fan-out, by outcome.",
		}, []string{"outcome"}),
		Reconciliations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_reconciliations_total",
			Help:      "Dashboard statistics recomputes, by view.",
		}, []string{"view"}),
		SubscriptionErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_errors_total",
			Help:      "Subscription snapshots that failed and were replaced by an empty list.",
		}, []string{"collection"}),
		ActiveViews: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dashboard_active_views",
			Help:      "Dashboard streams currently open.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
