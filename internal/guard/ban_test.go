package guard

import "testing"

func TestBanMap_BanRefusesUntilReinstated(t *testing.T) {
	solver := addr(0x1)
	bans := NewBanMap(3)

	allowed, commit := bans.IsAllowed(solver)
	if !allowed {
		t.Fatalf("unbanned solver should be allowed")
	}
	commit(true)

	bans.Ban(solver, BanReasonHighFailure)

	allowed, _ = bans.IsAllowed(solver)
	if allowed {
		t.Fatalf("banned solver should be refused")
	}
	reason, ok := bans.Reason(solver)
	if !ok || reason != BanReasonHighFailure {
		t.Fatalf("reason = %v, %v, want %v, true", reason, ok, BanReasonHighFailure)
	}

	bans.Reinstate(solver)
	allowed, commit = bans.IsAllowed(solver)
	if !allowed {
		t.Fatalf("reinstated solver should be allowed again")
	}
	commit(true)
}

func TestBanMap_DecrementAllReinstatesAfterBanLengthCompetitions(t *testing.T) {
	solver := addr(0x1)
	bans := NewBanMap(3)
	bans.Ban(solver, BanReasonConsecutiveFailed)

	for i := 0; i < 2; i++ {
		bans.DecrementAll()
		if allowed, _ := bans.IsAllowed(solver); allowed {
			t.Fatalf("solver should still be banned after %d decrement(s)", i+1)
		}
	}

	bans.DecrementAll()
	allowed, commit := bans.IsAllowed(solver)
	if !allowed {
		t.Fatalf("solver should be reinstated once its counter reaches zero")
	}
	commit(true)
}

func TestBanMap_DecrementAllIsIndependentOfWhichSolverCompeted(t *testing.T) {
	banned := addr(0x1)
	other := addr(0x2)
	bans := NewBanMap(1)
	bans.Ban(banned, BanReasonHighFailure)

	// A competition concerning a different solver still decrements
	// every banned entry.
	bans.DecrementAll()

	allowed, commit := bans.IsAllowed(banned)
	if !allowed {
		t.Fatalf("banned solver should be reinstated by a competition concerning another solver")
	}
	commit(true)

	allowed, commit = bans.IsAllowed(other)
	if !allowed {
		t.Fatalf("solver never banned should always be allowed")
	}
	commit(true)
}

func TestBanMap_DecrementAllSaturatesAtZero(t *testing.T) {
	solver := addr(0x1)
	bans := NewBanMap(1)
	bans.Ban(solver, BanReasonHighFailure)

	for i := 0; i < 5; i++ {
		bans.DecrementAll()
	}

	allowed, commit := bans.IsAllowed(solver)
	if !allowed {
		t.Fatalf("solver should remain reinstated, not wrap to a negative countdown")
	}
	commit(true)
}

func TestBanMap_BanRestartsAnAlreadyBannedSolversCountdown(t *testing.T) {
	solver := addr(0x1)
	bans := NewBanMap(2)
	bans.Ban(solver, BanReasonHighFailure)
	bans.DecrementAll()

	bans.Ban(solver, BanReasonConsecutiveFailed)
	bans.DecrementAll()
	if allowed, _ := bans.IsAllowed(solver); allowed {
		t.Fatalf("re-ban should restart the countdown at banLength, not resume the prior one")
	}

	reason, ok := bans.Reason(solver)
	if !ok || reason != BanReasonConsecutiveFailed {
		t.Fatalf("reason = %v, %v, want %v, true", reason, ok, BanReasonConsecutiveFailed)
	}
}
