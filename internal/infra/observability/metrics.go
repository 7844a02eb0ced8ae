package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the finance service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	mutationsTotal    *prometheus.CounterVec
	storageErrors     *prometheus.CounterVec
	dataChangedTotal  prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finanzas_operation_duration_seconds",
				Help:    "Duration of storage operations by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finanzas_mutations_total",
				Help: "Total mutations through the orchestration layer.",
			},
			[]string{"operation", "status"},
		),
		storageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finanzas_storage_errors_total",
				Help: "Total storage-engine failures by operation.",
			},
			[]string{"operation"},
		),
		dataChangedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "finanzas_data_changed_signals_total",
				Help: "Total data-changed broadcasts to view collaborators.",
			},
		),
	}
}

// RecordOperationDuration records the duration of a storage operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrMutation counts one orchestration-layer mutation outcome.
func (m *Metrics) IncrMutation(operation, status string) {
	m.mutationsTotal.WithLabelValues(operation, status).Inc()
}

// IncrStorageError counts a storage-engine failure.
func (m *Metrics) IncrStorageError(operation string) {
	m.storageErrors.WithLabelValues(operation).Inc()
}

// IncrDataChanged counts one data-changed broadcast.
func (m *Metrics) IncrDataChanged() {
	m.dataChangedTotal.Inc()
}

// MutationCount reads back the cumulative count for one operation/status
// pair without going through the scrape endpoint.
func (m *Metrics) MutationCount(operation, status string) float64 {
	counter := m.mutationsTotal.WithLabelValues(operation, status)
	msg := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(msg); err != nil {
		return 0
	}
	if msg.Counter != nil && msg.Counter.Value != nil {
		return *msg.Counter.Value
	}
	return 0
}
