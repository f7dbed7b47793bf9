package guard

import (
	"github.com/ethereum/go-ethereum/common"
)

// Config bundles the tunables for a Guard.
type Config struct {
	TrackerConfig
	// BanLength is how many subsequent observed competitions a ban
	// survives before the solver is automatically reinstated.
	BanLength int
	// MinActiveSolvers is the number of solvers that must remain
	// unbanned after evaluation; a flagged solver is spared if banning
	// it would drop the active set below this floor.
	MinActiveSolvers int
	// LowSettlingEnabled gates the high-failure-rate ban mechanism.
	LowSettlingEnabled bool
	// NonSettlingEnabled gates the consecutive-unsettled ban mechanism.
	NonSettlingEnabled bool
}

// Guard combines a rolling CompetitionsTracker with a per-solver
// BanMap, applying the active-solver floor before any new ban takes
// effect.
type Guard struct {
	tracker *CompetitionsTracker
	bans    *BanMap
	cfg     Config

	known map[common.Address]struct{}
}

// New builds a Guard from Config.
func New(cfg Config) *Guard {
	return &Guard{
		tracker: NewCompetitionsTracker(cfg.TrackerConfig),
		bans:    NewBanMap(cfg.BanLength),
		cfg:     cfg,
		known:   make(map[common.Address]struct{}),
	}
}

// Replay feeds a batch of historical competition entries through the
// same update path as Observe, in chronological order, so a guard
// initialized from persistence starts with accurate rolling stats.
func (g *Guard) Replay(entries []CompetitionEntry) {
	for _, e := range entries {
		g.Observe(e)
	}
}

// Observe records one competition outcome, decrements every currently
// banned solver's countdown by one, and re-evaluates bans.
func (g *Guard) Observe(entry CompetitionEntry) {
	g.known[entry.Solver] = struct{}{}
	g.tracker.Record(entry)
	g.bans.DecrementAll()
	g.evaluate()
}

func (g *Guard) activeCount() int {
	active := 0
	for solver := range g.known {
		if allowed, commit := g.bans.IsAllowed(solver); allowed {
			active++
			commit(true)
		}
	}
	return active
}

func (g *Guard) evaluate() {
	flagged := make(map[common.Address]BanReason)
	for _, s := range g.tracker.HighFailureFlagged() {
		flagged[s] = BanReasonHighFailure
	}
	for _, s := range g.tracker.ConsecutiveFailed() {
		if _, already := flagged[s]; !already {
			flagged[s] = BanReasonConsecutiveFailed
		}
	}

	for solver, reason := range flagged {
		if !g.banMechanismEnabled(reason) {
			continue
		}
		if allowed, _ := g.bans.IsAllowed(solver); !allowed {
			continue
		}
		if g.activeCount()-1 < g.cfg.MinActiveSolvers {
			continue
		}
		g.bans.Ban(solver, reason)
		SolversBannedTotal.WithLabelValues(string(reason)).Inc()
	}
	ActiveSolversGauge.Set(float64(g.activeCount()))
}

// banMechanismEnabled reports whether the ban mechanism responsible
// for reason is enabled; an unenabled mechanism never bans, regardless
// of how its finder flags a solver.
func (g *Guard) banMechanismEnabled(reason BanReason) bool {
	switch reason {
	case BanReasonHighFailure:
		return g.cfg.LowSettlingEnabled
	case BanReasonConsecutiveFailed:
		return g.cfg.NonSettlingEnabled
	default:
		return false
	}
}

// IsAllowed reports whether solver may currently participate, along
// with a commit callback for the trial's outcome. The callback does
// nothing: bans are lifted only by the countdown that Observe drives.
func (g *Guard) IsAllowed(solver common.Address) (bool, func(success bool)) {
	return g.bans.IsAllowed(solver)
}

// Stats exposes a solver's rolling stats, e.g. for a status endpoint.
func (g *Guard) Stats(solver common.Address) SolverCompetitionStats {
	return g.tracker.Stats(solver)
}

// StatsFor is the same rolling stats in (total, failed) form, for
// StatusProvider implementations that don't want to import guard's
// struct type.
func (g *Guard) StatsFor(solver common.Address) (total, failed uint64) {
	s := g.tracker.Stats(solver)
	return s.Total, s.Failed
}
