package ledger

import (
	"github.com/rustweek/royale/internal/models"
)

// SaveSnapshotInput contains the participants to persist
type SaveSnapshotInput struct {
	// Participants is the full ledger, in insertion order
	Participants []*models.Participant
}

// LoadSnapshotOutput contains the restored participants
type LoadSnapshotOutput struct {
	// Participants is the persisted ledger, in the order it was saved
	Participants []*models.Participant
}
