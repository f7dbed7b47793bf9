// Package ethrpc implements the batched JSON-RPC transport in front of
// an inner batch-capable Ethereum client: calls enqueued by concurrent
// callers are collected into size/delay-bounded chunks and dispatched
// with a bounded number in flight.
package ethrpc

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Configuration tunes the batching policy.
type Configuration struct {
	// MaxConcurrentRequests bounds chunks in flight at once; 0 means
	// unbounded.
	MaxConcurrentRequests int
	// MaxBatchLen bounds calls per chunk; 0 means unbounded (limited
	// only by the underlying RPC cap, left to the caller to enforce).
	MaxBatchLen int
	// BatchDelay is how long a chunk waits for more calls once it has
	// at least one, before flushing (0 flushes as soon as none are
	// immediately ready).
	BatchDelay time.Duration
}

// InnerClient is the batch-capable JSON-RPC client the transport
// wraps; satisfied by *rpc.Client.
type InnerClient interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

type pendingCall struct {
	ctx      context.Context
	method   string
	args     []interface{}
	result   interface{}
	traceID  string
	resultCh chan error
}

// Transport exposes a single-call interface backed by a background
// batching worker.
type Transport struct {
	cfg    Configuration
	inner  InnerClient
	sem    *semaphore.Weighted
	queue  chan *pendingCall
	logger *zap.Logger

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewTransport builds a Transport and starts its background worker.
func NewTransport(cfg Configuration, inner InnerClient, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Transport{
		cfg:     cfg,
		inner:   inner,
		queue:   make(chan *pendingCall),
		logger:  logger,
		closeCh: make(chan struct{}),
	}
	if cfg.MaxConcurrentRequests > 0 {
		t.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentRequests))
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Close stops accepting new calls and waits for in-flight chunks to
// finish dispatching.
func (t *Transport) Close() {
	t.closeOnce.Do(func() { close(t.closeCh) })
	t.wg.Wait()
}

// Call enqueues method/args for batching and blocks for its result.
// Cancelling ctx before the owning chunk dispatches drops the call
// without ever sending it upstream.
func (t *Transport) Call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	pc := &pendingCall{
		ctx:      ctx,
		method:   method,
		args:     args,
		result:   result,
		traceID:  TraceIDFromContext(ctx),
		resultCh: make(chan error, 1),
	}

	select {
	case t.queue <- pc:
	case <-ctx.Done():
		return ctx.Err()
	case <-t.closeCh:
		return context.Canceled
	}

	select {
	case err := <-pc.resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) run() {
	defer t.wg.Done()
	for {
		chunk := t.collectChunk()
		if chunk == nil {
			return
		}

		if t.sem != nil {
			if err := t.sem.Acquire(context.Background(), 1); err != nil {
				continue
			}
		}
		t.wg.Add(1)
		go func(c []*pendingCall) {
			defer t.wg.Done()
			if t.sem != nil {
				defer t.sem.Release(1)
			}
			t.dispatch(c)
		}(chunk)
	}
}

// collectChunk blocks for the first call, then keeps collecting until
// the chunk is full, the batch delay elapses, or (when no delay is
// configured) no further call is immediately ready.
func (t *Transport) collectChunk() []*pendingCall {
	var chunk []*pendingCall

	select {
	case pc, ok := <-t.queue:
		if !ok {
			return nil
		}
		chunk = append(chunk, pc)
	case <-t.closeCh:
		return nil
	}

	var timerC <-chan time.Time
	if t.cfg.BatchDelay > 0 {
		timer := time.NewTimer(t.cfg.BatchDelay)
		defer timer.Stop()
		timerC = timer.C
	}

	for {
		if t.cfg.MaxBatchLen > 0 && len(chunk) >= t.cfg.MaxBatchLen {
			return chunk
		}

		if timerC == nil {
			select {
			case pc, ok := <-t.queue:
				if !ok {
					return chunk
				}
				chunk = append(chunk, pc)
				continue
			default:
				return chunk
			}
		}

		select {
		case pc, ok := <-t.queue:
			if !ok {
				return chunk
			}
			chunk = append(chunk, pc)
		case <-timerC:
			return chunk
		case <-t.closeCh:
			return chunk
		}
	}
}

// dispatch filters out cancelled calls, then sends the survivors
// either as a single call or as a real batch, fanning out batch-level errors
// to every item.
func (t *Transport) dispatch(chunk []*pendingCall) {
	start := time.Now()
	defer func() { DispatchDurationSeconds.Observe(time.Since(start).Seconds()) }()

	live := make([]*pendingCall, 0, len(chunk))
	for _, pc := range chunk {
		select {
		case <-pc.ctx.Done():
			CallsCancelledTotal.Inc()
			pc.resultCh <- pc.ctx.Err()
		default:
			live = append(live, pc)
		}
	}
	if len(live) == 0 {
		return
	}

	ChunkSize.Observe(float64(len(live)))

	if len(live) == 1 {
		ChunksDispatchedTotal.WithLabelValues("single").Inc()
		pc := live[0]
		err := t.inner.CallContext(pc.ctx, pc.result, pc.method, pc.args...)
		pc.resultCh <- err
		return
	}

	ChunksDispatchedTotal.WithLabelValues("batch").Inc()

	header := buildHeaderSafely(live)
	ctx := context.Background()
	if header != "" {
		ctx = withDiagnosticHeader(context.Background(), header)
	}

	elems := make([]rpc.BatchElem, len(live))
	for i, pc := range live {
		elems[i] = rpc.BatchElem{Method: pc.method, Args: pc.args, Result: pc.result}
	}

	if err := t.inner.BatchCallContext(ctx, elems); err != nil {
		for _, pc := range live {
			pc.resultCh <- err
		}
		return
	}
	for i, pc := range live {
		pc.resultCh <- elems[i].Error
	}
}

// buildHeaderSafely renders the diagnostic header, never letting a
// formatting panic block the dispatch.
func buildHeaderSafely(calls []*pendingCall) (header string) {
	defer func() {
		if r := recover(); r != nil {
			header = ""
		}
	}()
	items := make([]HeaderItem, len(calls))
	for i, pc := range calls {
		items[i] = HeaderItem{Index: i, Method: pc.method, TraceID: pc.traceID}
	}
	return BuildHeader(items)
}

type diagnosticHeaderKey struct{}

func withDiagnosticHeader(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, diagnosticHeaderKey{}, header)
}

// DiagnosticHeaderFromContext returns the trace-grouped header attached
// to a dispatched batch's context, for an inner client that wants to
// forward it (e.g. as an HTTP header) for diagnostic correlation.
func DiagnosticHeaderFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(diagnosticHeaderKey{}).(string)
	return v, ok
}
