package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clickhouseRepositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "clickhouse_repository",
		Name:      "operations_total",
		Help:      "Count of repository operations.",
	}, []string{"operation", "status"})
	clickhouseRepositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "clickhouse_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of repository operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "status"})
	clickhouseRepositoryRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "clickhouse_repository",
		Name:      "rows_total",
		Help:      "Count of rows written by successful operations.",
	}, []string{"operation"})
)

// ClickhouseRepository tracks metrics for ClickHouse repository operations.
type ClickhouseRepository struct{}

// NewClickhouseRepository creates a ClickhouseRepository metrics collector.
func NewClickhouseRepository() *ClickhouseRepository {
	return &ClickhouseRepository{}
}

// Observe records duration, status and row count of a repository operation.
func (m ClickhouseRepository) Observe(operation string, rows int, err error, started time.Time) {
	s := status(err)
	clickhouseRepositoryRequestsTotal.WithLabelValues(operation, s).Inc()
	clickhouseRepositoryRequestDuration.WithLabelValues(operation, s).Observe(time.Since(started).Seconds())
	if err == nil {
		clickhouseRepositoryRowsTotal.WithLabelValues(operation).Add(float64(rows))
	}
}
