package liquidity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PoolQueriesTotal tracks pool-discovery queries by outcome.
	PoolQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liquidity_pool_queries_total",
			Help: "Total number of pool discovery queries, by outcome",
		},
		[]string{"outcome"},
	)

	// PathCandidatesGenerated tracks how many path candidates a routing
	// call enumerates.
	PathCandidatesGenerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "liquidity_path_candidates_generated",
		Help:    "Number of path candidates enumerated per routing call",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
	})

	// AbsentPoolCacheHitsTotal tracks how often the missing-pool cache
	// shortcuts a discovery call.
	AbsentPoolCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liquidity_absent_pool_cache_hits_total",
		Help: "Total number of pool queries short-circuited by the absence cache",
	})
)
