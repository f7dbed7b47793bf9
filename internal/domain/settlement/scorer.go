package settlement

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// ScorerConfig wires the scorer's fixed-per-auction parameters.
type ScorerConfig struct {
	ScoreCap                fixedpoint.Amount
	RevertProtectionEnabled bool
	ScoringFunc             ScoringFunc
}

// Scorer computes a settlement's score from its solution's declared
// scoring mode, rejecting it with a ScoreError if the mode's
// constraints are violated.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer builds a Scorer from cfg.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes settlement's score against quality, given sol's
// declared mode and (for the Surplus mode) the auction's native-token
// prices.
func (s *Scorer) Score(settlement *Settlement, sol Solution, quality fixedpoint.Amount, nativePrices map[common.Address]fixedpoint.Amount) (fixedpoint.Amount, error) {
	switch decl := sol.Score.(type) {
	case SolverScore:
		if decl.Value.Cmp(quality) > 0 {
			ScoreRejectedTotal.WithLabelValues(ScoreHigherThanQuality.String()).Inc()
			return fixedpoint.Amount{}, &ScoreError{Kind: ScoreHigherThanQuality, Score: decl.Value.String(), Quality: quality.String()}
		}
		return decl.Value, nil

	case RiskAdjustedScore:
		return s.scoreRiskAdjusted(settlement, decl, quality)

	case SurplusScore:
		return s.scoreSurplus(sol, nativePrices)

	default:
		return fixedpoint.Amount{}, &ScoreError{Kind: ScoreHigherThanQuality, Score: "unknown", Quality: quality.String()}
	}
}

func (s *Scorer) scoreRiskAdjusted(settlement *Settlement, decl RiskAdjustedScore, quality fixedpoint.Amount) (fixedpoint.Amount, error) {
	if decl.SuccessProbability <= 0 || decl.SuccessProbability >= 1 {
		ScoreRejectedTotal.WithLabelValues(ProbabilityOutOfRange.String()).Inc()
		return fixedpoint.Amount{}, &ScoreError{Kind: ProbabilityOutOfRange}
	}

	gasCost, err := fixedpoint.Mul(fixedpoint.NewFromUint64(settlement.Gas.Estimate), settlement.Gas.Price)
	if err != nil {
		return fixedpoint.Amount{}, err
	}

	objective, err := fixedpoint.Sub(quality, gasCost)
	if err != nil || objective.IsZero() {
		ScoreRejectedTotal.WithLabelValues(ObjectiveNonPositive.String()).Inc()
		return fixedpoint.Amount{}, &ScoreError{Kind: ObjectiveNonPositive}
	}

	failureCost := fixedpoint.Zero
	if !s.cfg.RevertProtectionEnabled {
		failureCost = gasCost
	}

	score, err := s.cfg.ScoringFunc(s.cfg.ScoreCap, objective, decl.SuccessProbability, failureCost)
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	if score.Cmp(quality) > 0 {
		ScoreRejectedTotal.WithLabelValues(ScoreHigherThanQuality.String()).Inc()
		return fixedpoint.Amount{}, &ScoreError{Kind: ScoreHigherThanQuality, Score: score.String(), Quality: quality.String()}
	}
	return score, nil
}

func (s *Scorer) scoreSurplus(sol Solution, nativePrices map[common.Address]fixedpoint.Amount) (fixedpoint.Amount, error) {
	total := fixedpoint.Zero
	for i := range sol.Trades {
		surplus, err := sol.Trades[i].SurplusInEther(nativePrices)
		if err != nil {
			continue // a single trade's missing price never poisons the solution's score
		}
		total, err = fixedpoint.Add(total, surplus)
		if err != nil {
			return fixedpoint.Amount{}, err
		}
	}
	return total, nil
}
