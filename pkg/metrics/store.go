package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// StoreMetrics records every persistence operation the core performs. Failures
// swallowed at a component boundary still show up here.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStoreMetrics registers the store metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmcart",
		Name:      "operations_total",
		Help:      "Persistence operations by outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "farmcart",
		Name:      "operation_duration_seconds",
		Help:      "Duration of persistence operations in seconds.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})
	reg.MustRegister(operations, duration)
	return &StoreMetrics{
		operations: operations,
		duration:   duration,
	}
}

// Observe records the duration since start and an ok/error outcome.
func (m *StoreMetrics) Observe(operation string, start time.Time, err error) {
	if m == nil || m.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// Reject counts an operation refused as bad input, either up front or by a
// store constraint such as an unknown owner.
func (m *StoreMetrics) Reject(operation string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation), OutcomeRejected).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
