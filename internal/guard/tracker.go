package guard

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// CompetitionEntry is one observed competition outcome for a solver.
type CompetitionEntry struct {
	AuctionID string
	Solver    common.Address
	Settled   bool
}

// CompetitionsTracker is a bounded FIFO window of competition entries
// with rolling per-solver stats derived from it.
type CompetitionsTracker struct {
	mu sync.Mutex

	windowSize           int
	highFailureThreshold float64
	minWinsForEvaluation uint64
	nonSettlingThreshold int

	queue []CompetitionEntry
	stats map[common.Address]*SolverCompetitionStats
}

// TrackerConfig configures a CompetitionsTracker.
type TrackerConfig struct {
	WindowSize           int
	HighFailureThreshold float64
	MinWinsForEvaluation uint64
	NonSettlingThreshold int
}

// NewCompetitionsTracker builds an empty tracker.
func NewCompetitionsTracker(cfg TrackerConfig) *CompetitionsTracker {
	return &CompetitionsTracker{
		windowSize:           cfg.WindowSize,
		highFailureThreshold: cfg.HighFailureThreshold,
		minWinsForEvaluation: cfg.MinWinsForEvaluation,
		nonSettlingThreshold: cfg.NonSettlingThreshold,
		stats:                make(map[common.Address]*SolverCompetitionStats),
	}
}

// Record inserts a competition entry, evicting and decrementing the
// oldest entry first if the window is already full.
func (t *CompetitionsTracker) Record(e CompetitionEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.windowSize > 0 && len(t.queue) >= t.windowSize {
		oldest := t.queue[0]
		t.queue = t.queue[1:]
		if s, ok := t.stats[oldest.Solver]; ok {
			s.decrement(oldest.Settled)
		}
	}

	s, ok := t.stats[e.Solver]
	if !ok {
		s = &SolverCompetitionStats{}
		t.stats[e.Solver] = s
	}
	if e.Settled {
		s.IncrementSuccess(t.highFailureThreshold)
	} else {
		s.IncrementFailure(t.highFailureThreshold)
	}

	t.queue = append(t.queue, e)
}

// Stats returns a copy of a solver's current rolling stats.
func (t *CompetitionsTracker) Stats(solver common.Address) SolverCompetitionStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.stats[solver]; ok {
		return *s
	}
	return SolverCompetitionStats{}
}

// HighFailureFlagged returns every solver whose rolling failure rate is
// above threshold, having competed at least MinWinsForEvaluation times.
func (t *CompetitionsTracker) HighFailureFlagged() []common.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	var flagged []common.Address
	for solver, s := range t.stats {
		if s.HighFailureFlagged(t.minWinsForEvaluation, t.highFailureThreshold) {
			flagged = append(flagged, solver)
		}
	}
	return flagged
}

// ConsecutiveFailed returns every solver that appears unsettled at
// least NonSettlingThreshold times among the most recent distinct
// auctions in the window, up to NonSettlingThreshold distinct auctions.
// The walk is newest-to-oldest. An entry belonging to an auction-id
// already admitted into the window is always processed; a new
// auction-id is admitted only while fewer than NonSettlingThreshold
// distinct ids have been admitted so far, so the last admitted auction
// may still contribute several entries before the walk stops.
func (t *CompetitionsTracker) ConsecutiveFailed() []common.Address {
	t.mu.Lock()
	defer t.mu.Unlock()

	admitted := make(map[string]bool)
	unsettled := make(map[common.Address]int)

	for i := len(t.queue) - 1; i >= 0; i-- {
		e := t.queue[i]
		if !admitted[e.AuctionID] {
			if len(admitted) >= t.nonSettlingThreshold {
				break
			}
			admitted[e.AuctionID] = true
		}
		if !e.Settled {
			unsettled[e.Solver]++
		}
	}

	var flagged []common.Address
	for solver, count := range unsettled {
		if count >= t.nonSettlingThreshold {
			flagged = append(flagged, solver)
		}
	}
	return flagged
}
