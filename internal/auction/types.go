// Package auction implements the per-round dispatcher: it fans an
// auction out to every allowed solver, turns returning solutions into
// scored settlement candidates, ranks them, attempts a same-solver
// merge pass, and emits the winner.
package auction

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/internal/domain/order"
	"github.com/batchauction/engine/internal/domain/settlement"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

// Auction is the snapshot shipped to solvers: orders already reduced to
// their available amounts.
type Auction struct {
	ID           string
	Orders       []order.Order
	NativePrices map[common.Address]fixedpoint.Amount
	Deadline     time.Duration
}

// Candidate is a scored settlement still in the running for a round.
type Candidate struct {
	Settlement *settlement.Settlement
	Solution   settlement.Solution
	Score      fixedpoint.Amount
	ArrivedAt  int64 // monotonic sequence number, lower arrived first
}

// Outcome is one round's result: the winning settlement (if any), every
// scored candidate, and the solutions dropped along the way.
type Outcome struct {
	AuctionID  string
	Winner     *settlement.Settlement
	Candidates []Candidate
	Dropped    []DroppedSolution
}

// DroppedSolution records a solution that failed encoding or scoring,
// for logging and metrics.
type DroppedSolution struct {
	Solver     common.Address
	SolutionID string
	Reason     string
}
