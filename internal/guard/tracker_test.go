package guard

import (
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func addr(b byte) common.Address {
	var a common.Address
	a[len(a)-1] = b
	return a
}

func addresses(in []common.Address) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = a.Hex()
	}
	sort.Strings(out)
	return out
}

func TestCompetitionsTracker_S2(t *testing.T) {
	solverA := addr(0xA)
	solverB := addr(0xB)

	tracker := NewCompetitionsTracker(TrackerConfig{
		WindowSize:           8,
		HighFailureThreshold: 0.3,
		MinWinsForEvaluation: 2,
		NonSettlingThreshold: 2,
	})

	entries := []CompetitionEntry{
		{AuctionID: "1", Solver: solverA, Settled: true},
		{AuctionID: "1", Solver: solverB, Settled: true},
		{AuctionID: "2", Solver: solverA, Settled: false},
		{AuctionID: "2", Solver: solverB, Settled: false},
		{AuctionID: "3", Solver: solverA, Settled: false},
		{AuctionID: "3", Solver: solverB, Settled: true},
		{AuctionID: "4", Solver: solverA, Settled: false},
		{AuctionID: "4", Solver: solverB, Settled: false},
	}
	for _, e := range entries {
		tracker.Record(e)
	}

	wantHigh := addresses([]common.Address{solverA, solverB})
	gotHigh := addresses(tracker.HighFailureFlagged())
	if len(gotHigh) != len(wantHigh) {
		t.Fatalf("high-failure flagged = %v, want %v", gotHigh, wantHigh)
	}

	wantConsecutive := addresses([]common.Address{solverA})
	gotConsecutive := addresses(tracker.ConsecutiveFailed())
	if len(gotConsecutive) != len(wantConsecutive) || gotConsecutive[0] != wantConsecutive[0] {
		t.Fatalf("consecutive-failed = %v, want %v", gotConsecutive, wantConsecutive)
	}

	tracker.Record(CompetitionEntry{AuctionID: "5", Solver: solverA, Settled: true})
	tracker.Record(CompetitionEntry{AuctionID: "5", Solver: solverB, Settled: true})

	if got := tracker.HighFailureFlagged(); len(got) != 0 {
		t.Fatalf("high-failure flagged after recovery = %v, want empty", got)
	}
	if got := tracker.ConsecutiveFailed(); len(got) != 0 {
		t.Fatalf("consecutive-failed after recovery = %v, want empty", got)
	}
}

func TestCompetitionsTracker_WindowEvictsOldest(t *testing.T) {
	solver := addr(0x1)
	tracker := NewCompetitionsTracker(TrackerConfig{
		WindowSize:           2,
		HighFailureThreshold: 0.5,
		MinWinsForEvaluation: 1,
		NonSettlingThreshold: 1,
	})
	tracker.Record(CompetitionEntry{AuctionID: "1", Solver: solver, Settled: false})
	tracker.Record(CompetitionEntry{AuctionID: "2", Solver: solver, Settled: true})
	tracker.Record(CompetitionEntry{AuctionID: "3", Solver: solver, Settled: true})

	stats := tracker.Stats(solver)
	if stats.Total != 3 || stats.Failed != 0 {
		t.Fatalf("stats after eviction = %+v, want Total=3 Failed=0", stats)
	}
}
