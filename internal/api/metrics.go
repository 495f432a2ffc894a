package api

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medinv_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medinv_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})

	reconcileMismatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "medinv_ledger_reconcile_mismatches",
		Help: "Stock records diverging from ledger replay at last reconciliation",
	})
)

// SetReconcileMismatches records the result of a reconciliation run.
func SetReconcileMismatches(n int) {
	reconcileMismatches.Set(float64(n))
}

// metricEndpoint collapses a request path to its first two API segments so
// per-entity IDs do not explode the label cardinality.
func metricEndpoint(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "/" + strings.Join(parts, "/")
}
