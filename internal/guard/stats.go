// Package guard tracks each solver's rolling competition outcomes and
// decides which solvers are currently allowed to participate in an
// auction.
package guard

// SolverCompetitionStats is a solver's rolling (total, failed)
// competition counters.
type SolverCompetitionStats struct {
	Total  uint64
	Failed uint64
}

// FailureRate is Failed/Total, or 0 when Total is 0.
func (s SolverCompetitionStats) FailureRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Failed) / float64(s.Total)
}

// IncrementSuccess applies the success-side increment rule: Total
// always goes up by one; if the solver was already at or above the
// high-failure threshold, Total is padded with further successes until
// the failure rate drops back below it.
func (s *SolverCompetitionStats) IncrementSuccess(highFailureThreshold float64) {
	wasAboveThreshold := s.Failed > 0 && s.FailureRate() >= highFailureThreshold
	s.Total++
	if !wasAboveThreshold {
		return
	}
	for s.FailureRate() >= highFailureThreshold {
		s.Total++
	}
}

// IncrementFailure applies the failure-side increment rule: a failure
// only counts while the failure rate is still at or below the
// threshold, capping how fast sustained failures can depress it
// further.
func (s *SolverCompetitionStats) IncrementFailure(highFailureThreshold float64) {
	if s.FailureRate() <= highFailureThreshold {
		s.Failed++
		s.Total++
	}
}

// decrement reverses exactly the original (non-padded) contribution of
// one entry, saturating at 0.
func (s *SolverCompetitionStats) decrement(settled bool) {
	if !settled {
		s.Failed = saturatingSub(s.Failed, 1)
	}
	s.Total = saturatingSub(s.Total, 1)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

// HighFailureFlagged reports whether the solver should be flagged for
// high failure rate.
func (s SolverCompetitionStats) HighFailureFlagged(minWinsForEvaluation uint64, highFailureThreshold float64) bool {
	return s.Total >= minWinsForEvaluation && s.FailureRate() > highFailureThreshold
}
