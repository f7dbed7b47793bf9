// Package settlement turns a solver's proposed solution into a verified,
// gas-costed, scored settlement, and merges compatible settlements from
// the same solver.
package settlement

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/batchauction/engine/internal/domain/order"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

// ScoreDeclaration is the solver-declared scoring mode a solution is
// submitted with.
type ScoreDeclaration interface {
	isScoreDeclaration()
}

// SolverScore is a solver-computed score taken at face value, subject
// only to the quality ceiling.
type SolverScore struct {
	Value fixedpoint.Amount
}

func (SolverScore) isScoreDeclaration() {}

// RiskAdjustedScore asks the engine to derive a score from the
// solution's gas cost, quality objective and a solver-declared
// probability of successful inclusion.
type RiskAdjustedScore struct {
	SuccessProbability float64
}

func (RiskAdjustedScore) isScoreDeclaration() {}

// SurplusScore scores a solution by the sum of its trades' surplus,
// converted to ether.
type SurplusScore struct{}

func (SurplusScore) isScoreDeclaration() {}

// Solution is a solver's proposal for a single auction: a set of
// clearing prices, the trades they support, the interactions needed to
// realize them on-chain, and a declared scoring mode.
type Solution struct {
	ID           string
	Solver       common.Address
	Prices       map[common.Address]fixedpoint.Amount
	Trades       []order.Trade
	Interactions []order.Interaction
	Score        ScoreDeclaration
}

// GasBudget is the gas accounting the encoder derives for a settlement.
type GasBudget struct {
	Estimate        uint64
	Limit           uint64
	Price           fixedpoint.Amount
	RequiredBalance fixedpoint.Amount
}

// ExecutedTrade is one user trade's reported executed amounts, computed
// against the solution's uniform prices. A trade whose computation failed
// reports a zero Sell/Buy rather than aborting the whole settlement.
type ExecutedTrade struct {
	UID  order.UID
	Sell fixedpoint.Amount
	Buy  fixedpoint.Amount
}

// Settlement is a solver solution that has passed encoding: a verified,
// costed, scoreable on-chain transaction candidate.
type Settlement struct {
	ID          string
	AuctionID   string
	Solver      common.Address
	SolutionIDs []string
	EncodedTx   []byte
	AccessList  types.AccessList
	Gas         GasBudget
	Trades      []ExecutedTrade
}
