package messaging

import (
	"time"

	"github.com/rustweek/royale/internal/models"
)

// GetKillFeedMessageInput describes a scored event
type GetKillFeedMessageInput struct {
	// Category is the attribution outcome
	Category models.Category

	// VictimName is the dying actor's display name
	VictimName string

	// CreditedName is the actor credited with the event, when different
	// from the victim
	CreditedName string

	// Delta is the applied point change for the primary award
	Delta int

	// NewScore is the credited player's score after the change
	NewScore int
}

// GetKillFeedMessageOutput contains the broadcast line
type GetKillFeedMessageOutput struct {
	Message string
}

// GetStartMessageInput describes the starting tournament
type GetStartMessageInput struct {
	EndTime      time.Time
	Participants int
}

// GetStartMessageOutput contains the announcement
type GetStartMessageOutput struct {
	Message string
}

// GetEndMessageInput describes the finished tournament
type GetEndMessageInput struct {
	Standings     []*models.Standing
	TopGroup      string
	TopGroupScore int
}

// GetEndMessageOutput contains the announcement
type GetEndMessageOutput struct {
	Message string
}

// GetScheduledMessageInput carries the next start time
type GetScheduledMessageInput struct {
	StartTime time.Time
}

// GetScheduledMessageOutput contains the announcement
type GetScheduledMessageOutput struct {
	Message string
}

// GetCountdownMessageInput describes a threshold crossing
type GetCountdownMessageInput struct {
	// Phase is the pending transition target
	Phase models.Phase

	// Remaining is the configured threshold that fired
	Remaining time.Duration
}

// GetCountdownMessageOutput contains the announcement
type GetCountdownMessageOutput struct {
	Message string
}
