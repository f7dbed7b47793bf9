package ethrpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChunksDispatchedTotal tracks batch chunks dispatched, by whether
	// they were sent as a single call or a true batch.
	ChunksDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethrpc_chunks_dispatched_total",
			Help: "Total number of RPC chunks dispatched, by shape",
		},
		[]string{"shape"},
	)

	// ChunkSize tracks how many calls land in each dispatched chunk.
	ChunkSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ethrpc_chunk_size",
		Help:    "Number of calls collected per dispatched chunk",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})

	// CallsCancelledTotal tracks calls dropped before dispatch because
	// their caller's context was already done.
	CallsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ethrpc_calls_cancelled_total",
		Help: "Total number of calls cancelled before their chunk was dispatched",
	})

	// DispatchDurationSeconds tracks chunk dispatch latency.
	DispatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ethrpc_dispatch_duration_seconds",
		Help:    "Duration of a dispatched chunk's round trip",
		Buckets: prometheus.DefBuckets,
	})
)
