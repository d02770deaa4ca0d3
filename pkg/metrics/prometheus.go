// Package metrics exports dashboard telemetry as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "feedback_dashboard"

// Telemetry implements dashboard.Telemetry on top of Prometheus collectors.
type Telemetry struct {
	events         *prometheus.CounterVec
	filterChanges  *prometheus.CounterVec
	exportedRows   *prometheus.CounterVec
	aggregateSize  prometheus.Histogram
	activeSessions prometheus.Gauge
}

// New registers the dashboard collectors on reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Telemetry {
	factory := promauto.With(reg)
	return &Telemetry{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_total",
			Help:      "Dashboard events by name",
		}, []string{"event"}),
		filterChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "filter_changes_total",
			Help:      "Applied filter changes by field",
		}, []string{"field"}),
		exportedRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "exported_rows_total",
			Help:      "Rows written by exports by format",
		}, []string{"format"}),
		aggregateSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "aggregate_groups",
			Help:      "Groups returned per aggregation",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250},
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_sessions",
			Help:      "Open dashboard sessions",
		}),
	}
}

// Record updates the collectors for event.
func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.events.WithLabelValues(event).Inc()
	switch event {
	case "dashboard.session.open":
		t.activeSessions.Inc()
	case "dashboard.session.close":
		t.activeSessions.Dec()
	case "dashboard.session.sweep":
		if n, ok := number(payload["evicted"]); ok {
			t.activeSessions.Sub(n)
		}
	case "dashboard.filter.apply":
		if field, ok := payload["field"].(string); ok {
			t.filterChanges.WithLabelValues(field).Inc()
		}
	case "dashboard.aggregate":
		if n, ok := number(payload["groups"]); ok {
			t.aggregateSize.Observe(n)
		}
	case "dashboard.export":
		format, _ := payload["format"].(string)
		if n, ok := number(payload["rows"]); ok {
			t.exportedRows.WithLabelValues(format).Add(n)
		}
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
