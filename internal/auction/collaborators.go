package auction

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/internal/domain/settlement"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

// SolverDriver ships an auction to one solver and returns its proposed
// solutions before ctx's deadline expires.
type SolverDriver interface {
	Solve(ctx context.Context, solver common.Address, a Auction) ([]settlement.Solution, error)
}

// TxSubmitter emits a winning settlement on-chain.
type TxSubmitter interface {
	Submit(ctx context.Context, s *settlement.Settlement) error
}

// QualityEstimator computes a candidate's quality ceiling, the
// reference value scores are checked against.
type QualityEstimator interface {
	Quality(ctx context.Context, sol settlement.Solution) (fixedpoint.Amount, error)
}
