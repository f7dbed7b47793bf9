package settlement

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// PendingTx is the encoded, not-yet-validated transaction blob produced
// by the boundary's solution encoder, tagged with whether
// internalization should be applied during simulation.
type PendingTx struct {
	Blob        []byte
	Internalize bool
}

// NativeTransferCall is the 1-wei probe call the partial access-list
// step issues per eligible user trade.
type NativeTransferCall struct {
	To common.Address
}

// TxEncoder turns a solution into an opaque pending transaction blob.
// The encoding itself is outside this package's concern; only its
// outcome (success/failure) matters here.
type TxEncoder interface {
	Encode(ctx context.Context, sol Solution) ([]byte, error)
}

// BlobMerger combines two solver-proposed transaction blobs into one,
// used by Merge.
type BlobMerger interface {
	Merge(ctx context.Context, a, b []byte) ([]byte, error)
}

// Simulator is the external collaborator that runs a pending
// transaction (or access-list probe) against a simulated chain state.
type Simulator interface {
	// AccessListCall estimates the access list a standalone native
	// transfer call would touch.
	AccessListCall(ctx context.Context, call NativeTransferCall) (types.AccessList, error)
	// Simulate runs tx and reports the access list it touched and the
	// gas it used. Reverts surface as errors.
	Simulate(ctx context.Context, tx PendingTx) (types.AccessList, uint64, error)
}

// GasPricer reports the current network gas price.
type GasPricer interface {
	CurrentGasPrice(ctx context.Context) (fixedpoint.Amount, error)
}

// BalanceChecker reports a solver's on-chain native balance.
type BalanceChecker interface {
	Balance(ctx context.Context, solver common.Address) (fixedpoint.Amount, error)
}

// ContractChecker reports whether an address is a smart contract, used
// by the partial access-list step to decide whether a receiver is
// eligible for the 1-wei probe.
type ContractChecker interface {
	IsContract(ctx context.Context, addr common.Address) (bool, error)
}

// ScoringFunc computes a risk-adjusted score from the auction-provided
// scoring function. Supplied by the boundary layer; this package never
// hardcodes its shape.
type ScoringFunc func(scoreCap, objective fixedpoint.Amount, successProbability float64, failureCost fixedpoint.Amount) (fixedpoint.Amount, error)
