package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Backend outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Search backend Prometheus metrics.
var (
	BackendOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nodesearch",
			Name:      "backend_operations_total",
			Help:      "Total number of search backend operations",
		},
		[]string{"op", "outcome"},
	)

	BackendOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nodesearch",
			Name:      "backend_operation_duration_seconds",
			Help:      "Search backend operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)

	BackendDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nodesearch",
			Name:      "backend_degraded_total",
			Help:      "Calls answered with a neutral value because the backend is unavailable",
		},
		[]string{"op"},
	)

	ReindexItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nodesearch",
			Name:      "reindex_items_total",
			Help:      "Entities processed by bulk reindex",
		},
		[]string{"kind", "status"},
	)
)

var registerBackend sync.Once

// RegisterBackendMetrics registers the backend and reindex metrics. Safe to
// call more than once.
func RegisterBackendMetrics() {
	registerBackend.Do(func() {
		prometheus.MustRegister(BackendOperationsTotal)
		prometheus.MustRegister(BackendOperationDuration)
		prometheus.MustRegister(BackendDegradedTotal)
		prometheus.MustRegister(ReindexItemsTotal)
	})
}

// ObserveBackend records one backend call.
func ObserveBackend(op, outcome string, started time.Time) {
	BackendOperationsTotal.WithLabelValues(op, outcome).Inc()
	BackendOperationDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
