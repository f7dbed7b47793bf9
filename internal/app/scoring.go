package app

import (
	"github.com/batchauction/engine/pkg/fixedpoint"
)

// riskAdjustedScore computes the expected-value score the original
// CIP-38 formula describes: the objective discounted by its success
// probability, minus the failure cost weighted by the complementary
// probability, capped at scoreCap and floored at zero.
func riskAdjustedScore(scoreCap, objective fixedpoint.Amount, successProbability float64, failureCost fixedpoint.Amount) (fixedpoint.Amount, error) {
	expectedGain, err := fixedpoint.MulFloat(objective, successProbability)
	if err != nil {
		return fixedpoint.Amount{}, err
	}

	// failureCost*(1-p) is taken as failureCost - failureCost*p: 1-p is
	// inexact in float64 (1-0.9 is just under 0.1), and truncating that
	// product would understate the loss by one unit.
	weightedCost, err := fixedpoint.MulFloat(failureCost, successProbability)
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	expectedLoss, err := fixedpoint.Sub(failureCost, weightedCost)
	if err != nil {
		return fixedpoint.Amount{}, err
	}

	score, err := fixedpoint.Sub(expectedGain, expectedLoss)
	if err != nil {
		// expectedLoss outweighing expectedGain means the solution
		// isn't worth the risk; floor it at zero rather than propagating
		// a Negative MathError.
		return fixedpoint.Zero, nil
	}

	if score.Cmp(scoreCap) > 0 {
		return scoreCap, nil
	}
	return score, nil
}
