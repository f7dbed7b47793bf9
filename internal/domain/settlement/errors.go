package settlement

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// EncodingErrorKind tags the ways a single solution can fail encoding
// . Every kind is per-solution fatal: the solution is dropped, the auction
// continues.
type EncodingErrorKind int

const (
	NonBufferableTokensUsed EncodingErrorKind = iota
	GasLimitExceeded
	SolverAccountInsufficientBalance
	Simulation
	DifferentSolvers
)

func (k EncodingErrorKind) String() string {
	switch k {
	case NonBufferableTokensUsed:
		return "non-bufferable tokens used"
	case GasLimitExceeded:
		return "gas limit exceeded"
	case SolverAccountInsufficientBalance:
		return "solver account insufficient balance"
	case Simulation:
		return "simulation failed"
	case DifferentSolvers:
		return "different solvers"
	default:
		return "unknown encoding error"
	}
}

// EncodingError is the single error type the encoder returns; callers
// branch on Kind, not on string matching.
type EncodingError struct {
	Kind EncodingErrorKind

	Tokens          []common.Address  // NonBufferableTokensUsed
	GasEstimate     uint64            // GasLimitExceeded
	GasMax          uint64            // GasLimitExceeded
	RequiredBalance fixedpoint.Amount // SolverAccountInsufficientBalance
	Err             error             // Simulation
}

func (e *EncodingError) Error() string {
	switch e.Kind {
	case NonBufferableTokensUsed:
		return fmt.Sprintf("settlement: non-bufferable tokens used: %v", e.Tokens)
	case GasLimitExceeded:
		return fmt.Sprintf("settlement: gas limit exceeded: estimate=%d max=%d", e.GasEstimate, e.GasMax)
	case SolverAccountInsufficientBalance:
		return fmt.Sprintf("settlement: solver account insufficient balance: required=%s", e.RequiredBalance.String())
	case Simulation:
		return fmt.Sprintf("settlement: simulation failed: %v", e.Err)
	case DifferentSolvers:
		return "settlement: cannot merge settlements from different solvers"
	default:
		return "settlement: unknown encoding error"
	}
}

func (e *EncodingError) Unwrap() error { return e.Err }

// ScoreErrorKind tags the ways a solution's declared score can be
// rejected.
type ScoreErrorKind int

const (
	ScoreHigherThanQuality ScoreErrorKind = iota
	ObjectiveNonPositive
	ProbabilityOutOfRange
)

func (k ScoreErrorKind) String() string {
	switch k {
	case ScoreHigherThanQuality:
		return "score higher than quality"
	case ObjectiveNonPositive:
		return "objective non-positive"
	case ProbabilityOutOfRange:
		return "probability out of range"
	default:
		return "unknown score error"
	}
}

// ScoreError is the single error type the scorer returns.
type ScoreError struct {
	Kind    ScoreErrorKind
	Score   string
	Quality string
}

func (e *ScoreError) Error() string {
	switch e.Kind {
	case ScoreHigherThanQuality:
		return fmt.Sprintf("settlement: score %s higher than quality %s", e.Score, e.Quality)
	case ObjectiveNonPositive:
		return "settlement: objective non-positive"
	case ProbabilityOutOfRange:
		return "settlement: success probability out of range"
	default:
		return "settlement: unknown score error"
	}
}
