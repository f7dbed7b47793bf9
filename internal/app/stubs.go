package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/batchauction/engine/internal/auction"
	"github.com/batchauction/engine/internal/domain/settlement"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

// Real solver transport, transaction encoding/simulation and on-chain
// submission are out of scope here. These adapters satisfy the
// collaborator contracts with a logging-only implementation: detect
// and log, never broadcast.

type noopSolverDriver struct {
	logger *zap.Logger
}

func (d *noopSolverDriver) Solve(_ context.Context, solver common.Address, a auction.Auction) ([]settlement.Solution, error) {
	d.logger.Debug("solver-driver-not-configured",
		zap.String("solver", solver.Hex()),
		zap.String("auction-id", a.ID))
	return nil, nil
}

type loggingTxSubmitter struct {
	logger *zap.Logger
}

func (s *loggingTxSubmitter) Submit(_ context.Context, settled *settlement.Settlement) error {
	s.logger.Info("settlement-submit-dry-run",
		zap.String("settlement-id", settled.ID),
		zap.String("auction-id", settled.AuctionID),
		zap.String("solver", settled.Solver.Hex()),
		zap.String("note", "on-chain submission is out of scope, settlement logged only"))
	return nil
}

// ceilingQuality reports a fixed score ceiling instead of deriving one
// from live token prices. It never blocks a declared score below the
// configured cap.
type ceilingQuality struct {
	ceiling fixedpoint.Amount
}

func (q ceilingQuality) Quality(_ context.Context, _ settlement.Solution) (fixedpoint.Amount, error) {
	return q.ceiling, nil
}

type noopTxEncoder struct{}

func (noopTxEncoder) Encode(_ context.Context, sol settlement.Solution) ([]byte, error) {
	return []byte(sol.ID), nil
}

type noopMerger struct{}

func (noopMerger) Merge(_ context.Context, a, b []byte) ([]byte, error) {
	merged := make([]byte, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return merged, nil
}

type noopSimulator struct{}

func (noopSimulator) AccessListCall(_ context.Context, _ settlement.NativeTransferCall) (types.AccessList, error) {
	return nil, nil
}

func (noopSimulator) Simulate(_ context.Context, _ settlement.PendingTx) (types.AccessList, uint64, error) {
	return nil, 0, nil
}
