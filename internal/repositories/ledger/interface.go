package ledger

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/rustweek/royale/internal/repositories/ledger Repository

// Repository persists the participant ledger as one durable snapshot
type Repository interface {
	// SaveSnapshot writes the full participant list, replacing any
	// previous snapshot
	SaveSnapshot(ctx context.Context, input *SaveSnapshotInput) error

	// LoadSnapshot reads the last persisted participant list
	LoadSnapshot(ctx context.Context) (*LoadSnapshotOutput, error)
}
