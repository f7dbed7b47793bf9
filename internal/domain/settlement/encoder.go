package settlement

import (
	"context"
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/batchauction/engine/internal/domain/order"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

// EncoderConfig wires the encoder's external collaborators and the
// per-auction parameters steps 1-6 need.
type EncoderConfig struct {
	TrustedTokens mapset.Set[common.Address]
	TxEncoder     TxEncoder
	Merger        BlobMerger
	Simulator     Simulator
	GasPricer     GasPricer
	Balances      BalanceChecker
	Contracts     ContractChecker
	BlockGasLimit uint64
	MaxGasPrice   fixedpoint.Amount
	Logger        *zap.Logger
}

// Encoder runs a solver solution through the encoding pipeline,
// producing a verified, gas-costed Settlement or a per-solution fatal
// EncodingError.
type Encoder struct {
	cfg EncoderConfig
}

// NewEncoder builds an Encoder from cfg.
func NewEncoder(cfg EncoderConfig) *Encoder {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Encoder{cfg: cfg}
}

// Encode runs steps 1-6 for a single solution against auctionID.
func (e *Encoder) Encode(ctx context.Context, auctionID string, sol Solution) (*Settlement, error) {
	if err := e.checkInternalization(sol.Interactions); err != nil {
		EncodingRejectedTotal.WithLabelValues(NonBufferableTokensUsed.String()).Inc()
		return nil, err
	}

	blob, err := e.cfg.TxEncoder.Encode(ctx, sol)
	if err != nil {
		EncodingRejectedTotal.WithLabelValues(Simulation.String()).Inc()
		return nil, &EncodingError{Kind: Simulation, Err: err}
	}

	validated, err := e.validate(ctx, blob, sol.Interactions, sol.Trades, sol.Solver)
	if err != nil {
		return nil, err
	}

	trades, tradeErr := e.computeOrderAmounts(sol.Trades)
	if tradeErr != nil {
		e.cfg.Logger.Warn("order amount computation failed for one or more trades",
			zap.String("auction-id", auctionID),
			zap.String("solution-id", sol.ID),
			zap.Error(tradeErr))
	}

	return &Settlement{
		ID:          uuid.New().String(),
		AuctionID:   auctionID,
		Solver:      sol.Solver,
		SolutionIDs: []string{sol.ID},
		EncodedTx:   blob,
		AccessList:  validated.accessList,
		Gas:         validated.gas,
		Trades:      trades,
	}, nil
}

// Merge combines two same-solver settlements, re-running steps 3-6
// against the merged blob and interaction set.
func (e *Encoder) Merge(ctx context.Context, a, b *Settlement, solA, solB Solution) (*Settlement, error) {
	if a.Solver != b.Solver {
		MergesAttemptedTotal.WithLabelValues("different-solvers").Inc()
		return nil, &EncodingError{Kind: DifferentSolvers}
	}

	mergedBlob, err := e.cfg.Merger.Merge(ctx, a.EncodedTx, b.EncodedTx)
	if err != nil {
		MergesAttemptedTotal.WithLabelValues("merge-failed").Inc()
		return nil, &EncodingError{Kind: Simulation, Err: err}
	}

	interactions := append(append([]order.Interaction{}, solA.Interactions...), solB.Interactions...)
	trades := append(append([]order.Trade{}, solA.Trades...), solB.Trades...)

	validated, err := e.validate(ctx, mergedBlob, interactions, trades, a.Solver)
	if err != nil {
		MergesAttemptedTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	executedTrades, tradeErr := e.computeOrderAmounts(trades)
	if tradeErr != nil {
		e.cfg.Logger.Warn("order amount computation failed during merge",
			zap.String("auction-id", a.AuctionID), zap.Error(tradeErr))
	}

	MergesAttemptedTotal.WithLabelValues("merged").Inc()
	return &Settlement{
		ID:          uuid.New().String(),
		AuctionID:   a.AuctionID,
		Solver:      a.Solver,
		SolutionIDs: unionStrings(a.SolutionIDs, b.SolutionIDs),
		EncodedTx:   mergedBlob,
		AccessList:  validated.accessList,
		Gas:         validated.gas,
		Trades:      executedTrades,
	}, nil
}

// checkInternalization rejects the solution if any internalized
// interaction moves a token outside the trusted set.
func (e *Encoder) checkInternalization(interactions []order.Interaction) error {
	untrusted := mapset.NewThreadUnsafeSet[common.Address]()
	for _, i := range interactions {
		if i.Internalize && !e.cfg.TrustedTokens.Contains(i.Token) {
			untrusted.Add(i.Token)
		}
	}
	if untrusted.Cardinality() == 0 {
		return nil
	}
	return &EncodingError{Kind: NonBufferableTokensUsed, Tokens: untrusted.ToSlice()}
}

type validatedTx struct {
	accessList types.AccessList
	gas        GasBudget
}

// validate runs steps 3-6 of the encoding pipeline against an already
// produced blob: partial access list, full simulation, gas budget, and
// (conditionally) the no-internalization double simulation.
func (e *Encoder) validate(ctx context.Context, blob []byte, interactions []order.Interaction, trades []order.Trade, solver common.Address) (*validatedTx, error) {
	partial, err := e.partialAccessList(ctx, trades)
	if err != nil {
		return nil, &EncodingError{Kind: Simulation, Err: err}
	}

	fullAccessList, gasUsed, err := e.cfg.Simulator.Simulate(ctx, PendingTx{Blob: blob, Internalize: true})
	if err != nil {
		EncodingRejectedTotal.WithLabelValues(Simulation.String()).Inc()
		return nil, &EncodingError{Kind: Simulation, Err: err}
	}

	gasPrice, err := e.cfg.GasPricer.CurrentGasPrice(ctx)
	if err != nil {
		return nil, &EncodingError{Kind: Simulation, Err: err}
	}

	gas, err := e.gasBudget(ctx, gasUsed, gasPrice, solver)
	if err != nil {
		return nil, err
	}

	anyInternalized := false
	for _, i := range interactions {
		if i.Internalize {
			anyInternalized = true
			break
		}
	}
	if anyInternalized {
		if _, _, err := e.cfg.Simulator.Simulate(ctx, PendingTx{Blob: blob, Internalize: false}); err != nil {
			EncodingRejectedTotal.WithLabelValues(Simulation.String()).Inc()
			return nil, &EncodingError{Kind: Simulation, Err: err}
		}
	}

	GasEstimateUsed.Observe(float64(gasUsed))

	return &validatedTx{accessList: mergeAccessLists(partial, fullAccessList), gas: gas}, nil
}

// partialAccessList probes a 1-wei native transfer for every user trade
// whose buy side is native and whose receiver is a smart contract.
func (e *Encoder) partialAccessList(ctx context.Context, trades []order.Trade) (types.AccessList, error) {
	var merged types.AccessList
	for _, t := range trades {
		if !t.BuyIsNative {
			continue
		}
		isContract, err := e.cfg.Contracts.IsContract(ctx, t.Receiver)
		if err != nil {
			return nil, err
		}
		if !isContract {
			continue
		}
		al, err := e.cfg.Simulator.AccessListCall(ctx, NativeTransferCall{To: t.Receiver})
		if err != nil {
			return nil, err
		}
		merged = mergeAccessLists(merged, al)
	}
	return merged, nil
}

// gasBudget rejects the solution if its gas estimate exceeds half the
// block gas limit, otherwise sets the settlement's gas limit to double
// the estimate capped at that same half-limit, and rejects if the
// solver can't cover the resulting required balance.
func (e *Encoder) gasBudget(ctx context.Context, estimate uint64, gasPrice fixedpoint.Amount, solver common.Address) (GasBudget, error) {
	max := e.cfg.BlockGasLimit / 2
	if estimate > max {
		EncodingRejectedTotal.WithLabelValues(GasLimitExceeded.String()).Inc()
		return GasBudget{}, &EncodingError{Kind: GasLimitExceeded, GasEstimate: estimate, GasMax: max}
	}

	doubled := uint64(math.Round(float64(estimate) * 2.0))
	limit := doubled
	if limit > max {
		limit = max
	}

	required, err := fixedpoint.Mul(fixedpoint.NewFromUint64(limit), e.cfg.MaxGasPrice)
	if err != nil {
		return GasBudget{}, &EncodingError{Kind: Simulation, Err: err}
	}

	balance, err := e.cfg.Balances.Balance(ctx, solver)
	if err != nil {
		return GasBudget{}, &EncodingError{Kind: Simulation, Err: err}
	}
	if balance.Cmp(required) < 0 {
		EncodingRejectedTotal.WithLabelValues(SolverAccountInsufficientBalance.String()).Inc()
		return GasBudget{}, &EncodingError{Kind: SolverAccountInsufficientBalance, RequiredBalance: required}
	}

	return GasBudget{Estimate: estimate, Limit: limit, Price: gasPrice, RequiredBalance: required}, nil
}

// computeOrderAmounts reports each trade's executed amounts against its
// solution's uniform prices. A trade whose computation fails logs and
// contributes a zero entry rather than aborting the settlement.
func (e *Encoder) computeOrderAmounts(trades []order.Trade) ([]ExecutedTrade, error) {
	out := make([]ExecutedTrade, len(trades))
	var errs error
	for i, t := range trades {
		uniform := t
		uniform.Prices.Custom = uniform.Prices.Uniform

		sell, err := uniform.ExecutedSellAmount()
		if err != nil {
			errs = multierr.Append(errs, err)
			sell = fixedpoint.Zero
		}
		buy, err := uniform.ExecutedBuyAmount()
		if err != nil {
			errs = multierr.Append(errs, err)
			buy = fixedpoint.Zero
		}
		out[i] = ExecutedTrade{UID: t.UID, Sell: sell, Buy: buy}
	}
	return out, errs
}

func mergeAccessLists(lists ...types.AccessList) types.AccessList {
	var merged types.AccessList
	for _, l := range lists {
		merged = append(merged, l...)
	}
	return merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(a, b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
