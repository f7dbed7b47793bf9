package auction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SolutionsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_solutions_received_total",
		Help: "Number of solver solutions received across all rounds.",
	})

	SolutionsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_solutions_dropped_total",
		Help: "Number of solver solutions dropped, by reason.",
	}, []string{"reason"})

	MergesAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_merges_applied_total",
		Help: "Number of times a merged candidate superseded its parents.",
	})

	RoundDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "auction_round_duration_seconds",
		Help:    "Wall-clock time to run one full auction round.",
		Buckets: prometheus.DefBuckets,
	})

	WinnerlessRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_winnerless_rounds_total",
		Help: "Number of rounds where no candidate survived to be a winner.",
	})
)
