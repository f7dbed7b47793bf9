package settlement

import (
	"context"
	"errors"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchauction/engine/internal/domain/order"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

type fakeTxEncoder struct{ blob []byte }

func (f fakeTxEncoder) Encode(context.Context, Solution) ([]byte, error) { return f.blob, nil }

type fakeMerger struct{}

func (fakeMerger) Merge(_ context.Context, a, b []byte) ([]byte, error) {
	return append(append([]byte{}, a...), b...), nil
}

type fakeSimulator struct {
	gasUsed       uint64
	simulateErr   error
	accessListErr error
}

func (f fakeSimulator) AccessListCall(context.Context, NativeTransferCall) (gethtypes.AccessList, error) {
	return nil, f.accessListErr
}

func (f fakeSimulator) Simulate(context.Context, PendingTx) (gethtypes.AccessList, uint64, error) {
	if f.simulateErr != nil {
		return nil, 0, f.simulateErr
	}
	return nil, f.gasUsed, nil
}

type fakeGasPricer struct{ price fixedpoint.Amount }

func (f fakeGasPricer) CurrentGasPrice(context.Context) (fixedpoint.Amount, error) { return f.price, nil }

type fakeBalances struct{ balance fixedpoint.Amount }

func (f fakeBalances) Balance(context.Context, common.Address) (fixedpoint.Amount, error) {
	return f.balance, nil
}

type fakeContracts struct{ isContract bool }

func (f fakeContracts) IsContract(context.Context, common.Address) (bool, error) { return f.isContract, nil }

func baseConfig() EncoderConfig {
	return EncoderConfig{
		TrustedTokens: mapset.NewSet[common.Address](),
		TxEncoder:     fakeTxEncoder{blob: []byte("tx")},
		Merger:        fakeMerger{},
		Simulator:     fakeSimulator{gasUsed: 5_000_000},
		GasPricer:     fakeGasPricer{price: fixedpoint.NewFromUint64(1)},
		Balances:      fakeBalances{balance: fixedpoint.NewFromUint64(1_000_000_000_000)},
		Contracts:     fakeContracts{},
		BlockGasLimit: 30_000_000,
		MaxGasPrice:   fixedpoint.NewFromUint64(100),
	}
}

func TestEncode_GasBudget_S5(t *testing.T) {
	enc := NewEncoder(baseConfig())
	sol := Solution{ID: "s1", Solver: common.HexToAddress("0x1")}

	settlement, err := enc.Encode(context.Background(), "auction-1", sol)
	require.NoError(t, err)

	assert.Equal(t, uint64(5_000_000), settlement.Gas.Estimate)
	assert.Equal(t, uint64(10_000_000), settlement.Gas.Limit)
	assert.Equal(t, "1000000000", settlement.Gas.RequiredBalance.String())
}

func TestEncode_RejectsGasAboveHalfBlockLimit(t *testing.T) {
	cfg := baseConfig()
	cfg.Simulator = fakeSimulator{gasUsed: 20_000_000}
	enc := NewEncoder(cfg)

	_, err := enc.Encode(context.Background(), "auction-1", Solution{ID: "s1"})
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, GasLimitExceeded, encErr.Kind)
}

func TestEncode_RejectsInsufficientSolverBalance(t *testing.T) {
	cfg := baseConfig()
	cfg.Balances = fakeBalances{balance: fixedpoint.NewFromUint64(1)}
	enc := NewEncoder(cfg)

	_, err := enc.Encode(context.Background(), "auction-1", Solution{ID: "s1"})
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, SolverAccountInsufficientBalance, encErr.Kind)
}

func TestEncode_RejectsUntrustedInternalizedToken(t *testing.T) {
	cfg := baseConfig()
	untrusted := common.HexToAddress("0xdead")
	enc := NewEncoder(cfg)

	sol := Solution{
		ID: "s1",
		Interactions: []order.Interaction{
			{Token: untrusted, Internalize: true},
		},
	}

	_, err := enc.Encode(context.Background(), "auction-1", sol)
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, NonBufferableTokensUsed, encErr.Kind)
	assert.Contains(t, encErr.Tokens, untrusted)
}

func TestEncode_AllowsTrustedInternalizedToken(t *testing.T) {
	cfg := baseConfig()
	trusted := common.HexToAddress("0xbeef")
	cfg.TrustedTokens.Add(trusted)
	enc := NewEncoder(cfg)

	sol := Solution{
		ID: "s1",
		Interactions: []order.Interaction{
			{Token: trusted, Internalize: true},
		},
	}

	_, err := enc.Encode(context.Background(), "auction-1", sol)
	require.NoError(t, err)
}

func TestMerge_DifferentSolversRejected(t *testing.T) {
	enc := NewEncoder(baseConfig())
	a := &Settlement{Solver: common.HexToAddress("0x1")}
	b := &Settlement{Solver: common.HexToAddress("0x2")}

	_, err := enc.Merge(context.Background(), a, b, Solution{}, Solution{})
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, DifferentSolvers, encErr.Kind)
}

func TestMerge_SameSolverUnionsSolutionIDs(t *testing.T) {
	enc := NewEncoder(baseConfig())
	solver := common.HexToAddress("0x1")
	a := &Settlement{Solver: solver, EncodedTx: []byte("a"), SolutionIDs: []string{"s1"}}
	b := &Settlement{Solver: solver, EncodedTx: []byte("b"), SolutionIDs: []string{"s2"}}

	merged, err := enc.Merge(context.Background(), a, b, Solution{ID: "s1"}, Solution{ID: "s2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, merged.SolutionIDs)
}
