package guard

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// BanReason records why a solver was banned, for logging and metrics.
type BanReason string

const (
	BanReasonHighFailure       BanReason = "high_failure"
	BanReasonConsecutiveFailed BanReason = "consecutive_failed"
)

// banEntry is a solver's ban countdown: the reason it was banned and
// how many further observed competitions it must survive before
// reinstatement.
type banEntry struct {
	reason    BanReason
	remaining int
}

// BanMap is a per-solver ban countdown. Banning a solver starts its
// counter at banLength; DecrementAll, called once per observed
// competition regardless of which solver it concerns, decrements every
// currently-banned solver's counter by one and reinstates it once the
// counter reaches zero.
type BanMap struct {
	mu        sync.Mutex
	entries   map[common.Address]*banEntry
	banLength int
}

// NewBanMap builds an empty BanMap; banLength is how many subsequent
// observed competitions a ban survives before the solver is
// automatically reinstated.
func NewBanMap(banLength int) *BanMap {
	return &BanMap{
		entries:   make(map[common.Address]*banEntry),
		banLength: banLength,
	}
}

// Ban starts (or restarts) a solver's ban countdown at banLength for
// the given reason.
func (b *BanMap) Ban(solver common.Address, reason BanReason) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[solver] = &banEntry{reason: reason, remaining: b.banLength}
}

// Reinstate clears any ban on the solver immediately.
func (b *BanMap) Reinstate(solver common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, solver)
}

// DecrementAll decrements every banned solver's remaining counter by
// one, saturating at zero, dropping entries that reach zero. Call once
// per observed competition, independent of which solver it concerns.
func (b *BanMap) DecrementAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for solver, e := range b.entries {
		e.remaining--
		if e.remaining <= 0 {
			delete(b.entries, solver)
		}
	}
}

// IsAllowed reports whether the solver currently may participate. The
// returned commit function is kept for callers built around the
// (allowed, commit) shape; ban reinstatement no longer depends on a
// trial outcome, so it is a no-op.
func (b *BanMap) IsAllowed(solver common.Address) (allowed bool, commit func(success bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, banned := b.entries[solver]
	return !banned, func(bool) {}
}

// Reason returns the last ban reason recorded for a solver, if any.
func (b *BanMap) Reason(solver common.Address) (BanReason, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[solver]
	if !ok {
		return "", false
	}
	return e.reason, true
}
