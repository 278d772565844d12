package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

var (
	indexerBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "blocks_total",
		Help:      "Count of blocks processed by the indexer.",
	}, []string{"network", "status"})

	indexerBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "block_duration_seconds",
		Help:      "Duration of processing one block from fetch to publish.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	indexerStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "stage_duration_seconds",
		Help:      "Duration of the fetch, extract, check and commit stages.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "stage", "status"})

	indexerCandidates = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "candidates_per_block",
		Help:      "Number of transactions verified per block.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"network"})

	indexerRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "retries_total",
		Help:      "Count of retried indexer stages.",
	}, []string{"network", "stage"})

	indexerReorgsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "reorgs_total",
		Help:      "Count of chain reorganizations rolled back.",
	}, []string{"network"})

	indexerReorgDepth = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "reorg_depth_blocks",
		Help:      "Number of blocks rolled back per reorganization.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	}, []string{"network"})

	indexerHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "indexer",
		Name:      "height",
		Help:      "Height of the last committed block.",
	}, []string{"network"})
)

// Indexer tracks metrics for the block indexer.
type Indexer struct {
	network string
}

// NewIndexer constructs an Indexer collector.
func NewIndexer(network model.Network) *Indexer {
	return &Indexer{network: orUnknown(string(network))}
}

// ObserveBlock records the outcome of one block.
func (m Indexer) ObserveBlock(err error, height uint64, candidates int, started time.Time) {
	s := status(err)
	indexerBlocksTotal.WithLabelValues(m.network, s).Inc()
	indexerBlockDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
	if err == nil {
		indexerHeight.WithLabelValues(m.network).Set(float64(height))
		indexerCandidates.WithLabelValues(m.network).Observe(float64(candidates))
	}
}

// ObserveStage records the duration of a pipeline stage.
func (m Indexer) ObserveStage(stage string, err error, started time.Time) {
	indexerStageDuration.WithLabelValues(m.network, stage, status(err)).Observe(time.Since(started).Seconds())
}

// ObserveRetry counts a retried stage.
func (m Indexer) ObserveRetry(stage string) {
	indexerRetriesTotal.WithLabelValues(m.network, stage).Inc()
}

// ObserveReorg records a rollback of depth blocks.
func (m Indexer) ObserveReorg(depth uint64) {
	indexerReorgsTotal.WithLabelValues(m.network).Inc()
	indexerReorgDepth.WithLabelValues(m.network).Observe(float64(depth))
}
