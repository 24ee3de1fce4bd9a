package ledger

import (
	"github.com/rustweek/royale/internal/models"
)

// EnsureParticipantInput identifies the player to enroll
type EnsureParticipantInput struct {
	PlayerID   string
	PlayerName string
}

// EnsureParticipantOutput contains the enrolled participant
type EnsureParticipantOutput struct {
	// Participant is a copy of the ledger entry
	Participant *models.Participant

	// Created is true when this call inserted the participant
	Created bool
}

// GetParticipantInput identifies the participant to read
type GetParticipantInput struct {
	PlayerID string
}

// GetParticipantOutput contains a copy of the participant
type GetParticipantOutput struct {
	Participant *models.Participant
}

// MutateInput applies a score delta
type MutateInput struct {
	PlayerID string
	Delta    int
}

// MutateOutput reports the score transition
type MutateOutput struct {
	PreviousScore int
	NewScore      int
}

// SnapshotOutput contains the ranked participants
type SnapshotOutput struct {
	// Participants is ordered by descending score, insertion order on ties
	Participants []*models.Participant
}

// SetActiveInput marks a player in or out of the active set
type SetActiveInput struct {
	PlayerID string
	Active   bool
}

// RebuildActiveSetOutput reports the rebuilt set size
type RebuildActiveSetOutput struct {
	ActiveCount int
}

// RestoreSnapshotOutput reports the restored ledger size
type RestoreSnapshotOutput struct {
	ParticipantCount int
}
