package messaging

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_notifier.go github.com/rustweek/royale/internal/services/messaging Notifier

// Notifier delivers outbound messages. The core neither knows nor cares
// whether delivery is chat, webhook or UI; implementations must never
// block on the ledger and failures are logged, not propagated.
type Notifier interface {
	// Announce broadcasts a message to everyone
	Announce(ctx context.Context, message string) error

	// Notify sends a directed message to one player
	Notify(ctx context.Context, playerID string, message string) error
}

// Service formats outbound messages for tournament and scoring events
type Service interface {
	// GetKillFeedMessage returns a broadcast line for a scored event
	GetKillFeedMessage(ctx context.Context, input *GetKillFeedMessageInput) (*GetKillFeedMessageOutput, error)

	// GetStartMessage returns the tournament-start announcement
	GetStartMessage(ctx context.Context, input *GetStartMessageInput) (*GetStartMessageOutput, error)

	// GetEndMessage returns the leaderboard and top-group summary
	GetEndMessage(ctx context.Context, input *GetEndMessageInput) (*GetEndMessageOutput, error)

	// GetScheduledMessage returns the next-start announcement
	GetScheduledMessage(ctx context.Context, input *GetScheduledMessageInput) (*GetScheduledMessageOutput, error)

	// GetCountdownMessage returns a threshold countdown announcement
	GetCountdownMessage(ctx context.Context, input *GetCountdownMessageInput) (*GetCountdownMessageOutput, error)
}
