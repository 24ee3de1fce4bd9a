package ledger

import "context"

// Service is the concurrent participant ledger. A single mutual
// exclusion domain covers score reads, read-modify-writes and whole
// ledger serialization, so those never interleave.
type Service interface {
	// EnsureParticipant inserts a participant if missing; an existing
	// participant is returned untouched (the name is never overwritten)
	EnsureParticipant(ctx context.Context, input *EnsureParticipantInput) (*EnsureParticipantOutput, error)

	// GetParticipant returns a copy of a participant
	GetParticipant(ctx context.Context, input *GetParticipantInput) (*GetParticipantOutput, error)

	// Mutate applies a score delta atomically and persists the ledger
	// best-effort before returning
	Mutate(ctx context.Context, input *MutateInput) (*MutateOutput, error)

	// ResetAllScores zeroes every participant's score
	ResetAllScores(ctx context.Context) error

	// Snapshot returns all participants ordered by descending score,
	// ties broken by insertion order
	Snapshot(ctx context.Context) (*SnapshotOutput, error)

	// SetActive adds or removes a player from the active-participant set
	// and records the opt-out flag
	SetActive(ctx context.Context, input *SetActiveInput) error

	// RebuildActiveSet recomputes the active set from the ledger: every
	// enrolled participant that has not opted out
	RebuildActiveSet(ctx context.Context) (*RebuildActiveSetOutput, error)

	// IsActive reports whether a player is eligible for scoring in the
	// current tournament
	IsActive(playerID string) bool

	// PersistSnapshot saves the ledger to durable storage
	PersistSnapshot(ctx context.Context) error

	// RestoreSnapshot replaces the in-memory ledger with the last
	// persisted one; a missing snapshot leaves the ledger empty
	RestoreSnapshot(ctx context.Context) (*RestoreSnapshotOutput, error)
}
