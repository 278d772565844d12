package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storageOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "operations_total",
		Help:      "Count of storage operations.",
	}, []string{"operation", "status"})
	storageOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "operation_duration_seconds",
		Help:      "Duration of storage operations.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"operation", "status"})
)

// Storage tracks metrics for the badger storage.
type Storage struct{}

// NewStorage creates a Storage metrics collector.
func NewStorage() *Storage {
	return &Storage{}
}

// Observe records duration and status of a storage operation.
func (m Storage) Observe(operation string, err error, started time.Time) {
	s := status(err)
	storageOperationsTotal.WithLabelValues(operation, s).Inc()
	storageOperationDuration.WithLabelValues(operation, s).Observe(time.Since(started).Seconds())
}
