package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EncodingRejectedTotal tracks per-solution encoding rejections by kind.
	EncodingRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_encoding_rejected_total",
			Help: "Total number of solutions rejected during encoding, by reason",
		},
		[]string{"reason"},
	)

	// ScoreRejectedTotal tracks per-solution score rejections by kind.
	ScoreRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_score_rejected_total",
			Help: "Total number of solutions rejected during scoring, by reason",
		},
		[]string{"reason"},
	)

	// EncodingDurationSeconds tracks the encoder's wall-clock latency.
	EncodingDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_encoding_duration_seconds",
		Help:    "Duration of the settlement encoding pipeline",
		Buckets: prometheus.DefBuckets,
	})

	// GasEstimateUsed tracks the gas estimate accepted for settlements.
	GasEstimateUsed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_gas_estimate_used",
		Help:    "Gas estimate accepted for an encoded settlement",
		Buckets: prometheus.ExponentialBuckets(100_000, 2, 10),
	})

	// MergesAttemptedTotal tracks pairwise merge attempts and their outcome.
	MergesAttemptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_merges_attempted_total",
			Help: "Total number of settlement merge attempts, by outcome",
		},
		[]string{"outcome"},
	)
)
