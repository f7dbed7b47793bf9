package auction

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/batchauction/engine/internal/domain/order"
	"github.com/batchauction/engine/internal/domain/settlement"
	"github.com/batchauction/engine/internal/guard"
)

// Config wires the dispatcher's collaborators and fixed parameters.
type Config struct {
	Solvers   []common.Address
	Driver    SolverDriver
	Submitter TxSubmitter
	Quality   QualityEstimator
	Encoder   *settlement.Encoder
	Scorer    *settlement.Scorer
	Guard     *guard.Guard
	// RedispatchLimit bounds how often a single solver may be
	// re-dispatched across rounds, so a flapping solver never crowds
	// out the others; 0 disables the limit.
	RedispatchLimit rate.Limit
	Logger          *zap.Logger
}

// Dispatcher runs sequential auction rounds.
type Dispatcher struct {
	cfg Config

	mu       sync.Mutex
	limiters map[common.Address]*rate.Limiter
}

// New builds a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Dispatcher{cfg: cfg, limiters: make(map[common.Address]*rate.Limiter)}
}

func (d *Dispatcher) limiterFor(solver common.Address) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.limiters[solver]
	if !ok {
		burst := 1
		if d.cfg.RedispatchLimit <= 0 {
			l = rate.NewLimiter(rate.Inf, 1)
		} else {
			l = rate.NewLimiter(d.cfg.RedispatchLimit, burst)
		}
		d.limiters[solver] = l
	}
	return l
}

type solverResult struct {
	solver    common.Address
	solutions []settlement.Solution
	err       error
}

// RunRound executes one full dispatcher round: fan-out, encode, score,
// rank, merge, emit.
func (d *Dispatcher) RunRound(ctx context.Context, a Auction) (Outcome, error) {
	start := time.Now()
	defer func() { RoundDurationSeconds.Observe(time.Since(start).Seconds()) }()

	results := d.fanOut(ctx, a)

	var arrivalSeq int64
	var candidates []Candidate
	var dropped []DroppedSolution

	for _, r := range results {
		if r.err != nil {
			d.cfg.Guard.Observe(guard.CompetitionEntry{AuctionID: a.ID, Solver: r.solver, Settled: false})
			continue
		}
		settled := false
		for _, sol := range r.solutions {
			SolutionsReceivedTotal.Inc()
			cand, ok := d.buildCandidate(ctx, a, sol, &arrivalSeq)
			if !ok {
				dropped = append(dropped, DroppedSolution{Solver: r.solver, SolutionID: sol.ID, Reason: "encode-or-score-failed"})
				continue
			}
			candidates = append(candidates, cand)
			settled = true
		}
		d.cfg.Guard.Observe(guard.CompetitionEntry{AuctionID: a.ID, Solver: r.solver, Settled: settled})
	}

	candidates = d.mergePass(ctx, a, candidates)

	winner := rank(candidates)

	out := Outcome{AuctionID: a.ID, Candidates: candidates, Dropped: dropped}
	if winner == nil {
		WinnerlessRoundsTotal.Inc()
		return out, nil
	}
	out.Winner = winner.Settlement

	if err := d.cfg.Submitter.Submit(ctx, winner.Settlement); err != nil {
		return out, err
	}
	return out, nil
}

func (d *Dispatcher) fanOut(ctx context.Context, a Auction) []solverResult {
	results := make([]solverResult, 0, len(d.cfg.Solvers))
	resultsCh := make(chan solverResult, len(d.cfg.Solvers))

	var wg sync.WaitGroup
	for _, solver := range d.cfg.Solvers {
		allowed, commit := d.cfg.Guard.IsAllowed(solver)
		if !allowed {
			continue
		}
		if !d.limiterFor(solver).Allow() {
			commit(true)
			continue
		}

		wg.Add(1)
		go func(solver common.Address) {
			defer wg.Done()
			dctx := ctx
			var cancel context.CancelFunc
			if a.Deadline > 0 {
				dctx, cancel = context.WithTimeout(ctx, a.Deadline)
				defer cancel()
			}
			solutions, err := d.cfg.Driver.Solve(dctx, solver, a)
			commit(err == nil)
			resultsCh <- solverResult{solver: solver, solutions: solutions, err: err}
		}(solver)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()
	for r := range resultsCh {
		results = append(results, r)
	}
	return results
}

func (d *Dispatcher) buildCandidate(ctx context.Context, a Auction, sol settlement.Solution, seq *int64) (Candidate, bool) {
	settled, err := d.cfg.Encoder.Encode(ctx, a.ID, sol)
	if err != nil {
		SolutionsDroppedTotal.WithLabelValues("encoding").Inc()
		return Candidate{}, false
	}

	quality, err := d.cfg.Quality.Quality(ctx, sol)
	if err != nil {
		SolutionsDroppedTotal.WithLabelValues("quality").Inc()
		return Candidate{}, false
	}

	score, err := d.cfg.Scorer.Score(settled, sol, quality, a.NativePrices)
	if err != nil {
		SolutionsDroppedTotal.WithLabelValues("scoring").Inc()
		return Candidate{}, false
	}

	n := atomic.AddInt64(seq, 1)
	return Candidate{Settlement: settled, Solution: sol, Score: score, ArrivedAt: n}, true
}

// mergePass attempts every same-solver pair once; a merged candidate
// that outscores both parents supersedes them.
func (d *Dispatcher) mergePass(ctx context.Context, a Auction, candidates []Candidate) []Candidate {
	superseded := make(map[int]bool)
	merged := make([]Candidate, 0)

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			ci, cj := candidates[i], candidates[j]
			if ci.Solution.Solver != cj.Solution.Solver {
				continue
			}
			mergedSettlement, err := d.cfg.Encoder.Merge(ctx, ci.Settlement, cj.Settlement, ci.Solution, cj.Solution)
			if err != nil {
				continue
			}
			mergedSolution := settlement.Solution{
				ID:           mergedSettlement.ID,
				Solver:       ci.Solution.Solver,
				Prices:       ci.Solution.Prices,
				Trades:       append(append([]order.Trade{}, ci.Solution.Trades...), cj.Solution.Trades...),
				Interactions: append(append([]order.Interaction{}, ci.Solution.Interactions...), cj.Solution.Interactions...),
				Score:        ci.Solution.Score,
			}
			quality, err := d.cfg.Quality.Quality(ctx, mergedSolution)
			if err != nil {
				continue
			}
			score, err := d.cfg.Scorer.Score(mergedSettlement, mergedSolution, quality, a.NativePrices)
			if err != nil {
				continue
			}
			if score.Cmp(ci.Score) > 0 && score.Cmp(cj.Score) > 0 {
				MergesAppliedTotal.Inc()
				superseded[i] = true
				superseded[j] = true
				seq := ci.ArrivedAt
				if cj.ArrivedAt < seq {
					seq = cj.ArrivedAt
				}
				merged = append(merged, Candidate{Settlement: mergedSettlement, Solution: mergedSolution, Score: score, ArrivedAt: seq})
			}
		}
	}

	out := make([]Candidate, 0, len(candidates)+len(merged))
	for i, c := range candidates {
		if !superseded[i] {
			out = append(out, c)
		}
	}
	out = append(out, merged...)
	return out
}

// rank picks the highest-scored candidate, breaking ties by earliest
// arrival then lexicographically smallest solver address.
func rank(candidates []Candidate) *Candidate {
	if len(candidates) == 0 {
		return nil
	}
	sorted := append([]Candidate{}, candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if cmp := a.Score.Cmp(b.Score); cmp != 0 {
			return cmp > 0
		}
		if a.ArrivedAt != b.ArrivedAt {
			return a.ArrivedAt < b.ArrivedAt
		}
		return a.Solution.Solver.Hex() < b.Solution.Solver.Hex()
	})
	return &sorted[0]
}
