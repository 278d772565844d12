package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

var (
	verifierVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "verdicts_total",
		Help:      "Count of verdicts by outcome.",
	}, []string{"network", "verdict"})

	verifierDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "verify_duration_seconds",
		Help:      "Duration of verifying one transaction.",
		Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"network"})
)

// Verifier tracks verification outcomes.
type Verifier struct {
	network string
}

// NewVerifier constructs a Verifier collector.
func NewVerifier(network model.Network) *Verifier {
	return &Verifier{network: orUnknown(string(network))}
}

// ObserveVerify records one verdict.
func (m Verifier) ObserveVerify(verdict model.Verdict, started time.Time) {
	label := "valid"
	if !verdict.Valid {
		label = orUnknown(string(verdict.Reason))
	}
	verifierVerdictsTotal.WithLabelValues(m.network, label).Inc()
	verifierDuration.WithLabelValues(m.network).Observe(time.Since(started).Seconds())
}
