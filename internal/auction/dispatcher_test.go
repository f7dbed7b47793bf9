package auction

import (
	"context"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchauction/engine/internal/domain/settlement"
	"github.com/batchauction/engine/internal/guard"
	"github.com/batchauction/engine/pkg/fixedpoint"
)

type fakeTxEncoder struct{}

func (fakeTxEncoder) Encode(context.Context, settlement.Solution) ([]byte, error) {
	return []byte("tx"), nil
}

type fakeMerger struct{}

func (fakeMerger) Merge(_ context.Context, a, b []byte) ([]byte, error) {
	return append(append([]byte{}, a...), b...), nil
}

type fakeSimulator struct{}

func (fakeSimulator) AccessListCall(context.Context, settlement.NativeTransferCall) (gethtypes.AccessList, error) {
	return nil, nil
}

func (fakeSimulator) Simulate(context.Context, settlement.PendingTx) (gethtypes.AccessList, uint64, error) {
	return nil, 1_000_000, nil
}

type fakeGasPricer struct{}

func (fakeGasPricer) CurrentGasPrice(context.Context) (fixedpoint.Amount, error) {
	return fixedpoint.NewFromUint64(1), nil
}

type fakeBalances struct{}

func (fakeBalances) Balance(context.Context, common.Address) (fixedpoint.Amount, error) {
	return fixedpoint.NewFromUint64(1_000_000_000_000), nil
}

type fakeContracts struct{}

func (fakeContracts) IsContract(context.Context, common.Address) (bool, error) { return false, nil }

func newTestEncoder() *settlement.Encoder {
	return settlement.NewEncoder(settlement.EncoderConfig{
		TrustedTokens: mapset.NewSet[common.Address](),
		TxEncoder:     fakeTxEncoder{},
		Merger:        fakeMerger{},
		Simulator:     fakeSimulator{},
		GasPricer:     fakeGasPricer{},
		Balances:      fakeBalances{},
		Contracts:     fakeContracts{},
		BlockGasLimit: 30_000_000,
		MaxGasPrice:   fixedpoint.NewFromUint64(100),
	})
}

func newTestScorer() *settlement.Scorer {
	return settlement.NewScorer(settlement.ScorerConfig{
		ScoreCap: fixedpoint.NewFromUint64(1_000_000_000),
	})
}

type fakeQuality struct{ value fixedpoint.Amount }

func (f fakeQuality) Quality(context.Context, settlement.Solution) (fixedpoint.Amount, error) {
	return f.value, nil
}

type fakeDriver struct {
	bySolver map[common.Address][]settlement.Solution
}

func (f fakeDriver) Solve(_ context.Context, solver common.Address, _ Auction) ([]settlement.Solution, error) {
	return f.bySolver[solver], nil
}

type fakeSubmitter struct{ submitted *settlement.Settlement }

func (f *fakeSubmitter) Submit(_ context.Context, s *settlement.Settlement) error {
	f.submitted = s
	return nil
}

func solverScore(v uint64) settlement.SolverScore {
	return settlement.SolverScore{Value: fixedpoint.NewFromUint64(v)}
}

func TestRunRound_HighestScoreWins(t *testing.T) {
	solverA := common.HexToAddress("0xA")
	solverB := common.HexToAddress("0xB")

	driver := fakeDriver{bySolver: map[common.Address][]settlement.Solution{
		solverA: {{ID: "sa", Solver: solverA, Score: solverScore(10)}},
		solverB: {{ID: "sb", Solver: solverB, Score: solverScore(20)}},
	}}
	submitter := &fakeSubmitter{}

	d := New(Config{
		Solvers:   []common.Address{solverA, solverB},
		Driver:    driver,
		Submitter: submitter,
		Quality:   fakeQuality{value: fixedpoint.NewFromUint64(1_000_000_000)},
		Encoder:   newTestEncoder(),
		Scorer:    newTestScorer(),
		Guard: guard.New(guard.Config{
			TrackerConfig: guard.TrackerConfig{WindowSize: 100, HighFailureThreshold: 0.3, MinWinsForEvaluation: 5, NonSettlingThreshold: 5},
			MinActiveSolvers: 1,
		}),
	})

	out, err := d.RunRound(context.Background(), Auction{ID: "auction-1"})
	require.NoError(t, err)
	require.NotNil(t, out.Winner)
	assert.Equal(t, solverB, out.Winner.Solver)
	assert.Same(t, out.Winner, submitter.submitted)
}

func TestRunRound_TieBrokenByArrivalThenAddress(t *testing.T) {
	solverA := common.HexToAddress("0xA")
	solverB := common.HexToAddress("0xB")

	driver := fakeDriver{bySolver: map[common.Address][]settlement.Solution{
		solverA: {{ID: "sa", Solver: solverA, Score: solverScore(10)}},
		solverB: {{ID: "sb", Solver: solverB, Score: solverScore(10)}},
	}}
	submitter := &fakeSubmitter{}

	d := New(Config{
		Solvers:   []common.Address{solverA, solverB},
		Driver:    driver,
		Submitter: submitter,
		Quality:   fakeQuality{value: fixedpoint.NewFromUint64(1_000_000_000)},
		Encoder:   newTestEncoder(),
		Scorer:    newTestScorer(),
		Guard: guard.New(guard.Config{
			TrackerConfig: guard.TrackerConfig{WindowSize: 100, HighFailureThreshold: 0.3, MinWinsForEvaluation: 5, NonSettlingThreshold: 5},
			MinActiveSolvers: 1,
		}),
	})

	out, err := d.RunRound(context.Background(), Auction{ID: "auction-1"})
	require.NoError(t, err)
	require.NotNil(t, out.Winner)
	require.Len(t, out.Candidates, 2)

	// Equal scores: the earlier arrival wins.
	earliest := out.Candidates[0]
	if out.Candidates[1].ArrivedAt < earliest.ArrivedAt {
		earliest = out.Candidates[1]
	}
	assert.Same(t, earliest.Settlement, out.Winner)

	// Equal scores and equal arrival: the smaller solver address wins.
	low, high := common.HexToAddress("0x1"), common.HexToAddress("0x2")
	tied := []Candidate{
		{Solution: settlement.Solution{Solver: high}, Score: fixedpoint.NewFromUint64(10), ArrivedAt: 1},
		{Solution: settlement.Solution{Solver: low}, Score: fixedpoint.NewFromUint64(10), ArrivedAt: 1},
	}
	assert.Equal(t, low, rank(tied).Solution.Solver)
}

func TestRunRound_NoSolutionsIsWinnerless(t *testing.T) {
	submitter := &fakeSubmitter{}
	d := New(Config{
		Solvers:   nil,
		Driver:    fakeDriver{},
		Submitter: submitter,
		Quality:   fakeQuality{},
		Encoder:   newTestEncoder(),
		Scorer:    newTestScorer(),
		Guard: guard.New(guard.Config{
			TrackerConfig: guard.TrackerConfig{WindowSize: 100, HighFailureThreshold: 0.3, MinWinsForEvaluation: 5, NonSettlingThreshold: 5},
			MinActiveSolvers: 0,
		}),
	})

	out, err := d.RunRound(context.Background(), Auction{ID: "auction-2"})
	require.NoError(t, err)
	assert.Nil(t, out.Winner)
	assert.Nil(t, submitter.submitted)
}
