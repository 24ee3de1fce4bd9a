package ledger

import (
	"sync"

	"github.com/rustweek/royale/internal/models"
)

type capKey struct {
	playerID string
	kind     models.KillKind
}

// CapTracker holds the per-player bounded kill counters. Check and
// increment are atomic: two simultaneous qualifying kills with one slot
// remaining cannot both succeed.
type CapTracker struct {
	mu     sync.Mutex
	counts map[capKey]int
}

// NewCapTracker creates an empty tracker
func NewCapTracker() *CapTracker {
	return &CapTracker{
		counts: make(map[capKey]int),
	}
}

// TryConsume reports whether the scoring action is still eligible and,
// if so, consumes one slot. A cap of zero or less means unlimited.
func (t *CapTracker) TryConsume(kind models.KillKind, playerID string, cap int) bool {
	if cap <= 0 {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := capKey{playerID: playerID, kind: kind}
	if t.counts[key] >= cap {
		return false
	}

	t.counts[key]++
	return true
}

// Count returns the consumed slots for a player and kind
func (t *CapTracker) Count(kind models.KillKind, playerID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.counts[capKey{playerID: playerID, kind: kind}]
}

// Reset clears all counters; called at tournament start
func (t *CapTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts = make(map[capKey]int)
}
