package tournament

import (
	"time"

	"github.com/rustweek/royale/internal/models"
)

// StartInput distinguishes admin commands from timer callbacks
type StartInput struct {
	// Manual is true for an explicit admin start. A timer start that
	// finds the tournament already running is logged and skipped; a
	// manual one is an error back to the caller.
	Manual bool
}

// EndInput distinguishes admin commands from timer callbacks
type EndInput struct {
	Manual bool
}

// EnrollInput adds a player
type EnrollInput struct {
	PlayerID   string
	PlayerName string

	// Explicit is true when the player asked to join. After the join
	// cutoff an explicit enrollment is rejected with ErrEnrollmentClosed;
	// an automatic one is silently skipped.
	Explicit bool
}

// EnrollOutput reports the enrollment result
type EnrollOutput struct {
	// Enrolled is false when the cutoff silently skipped an automatic
	// enrollment
	Enrolled bool

	// Created is true when the player was not previously known
	Created bool
}

// WithdrawInput identifies the player to remove
type WithdrawInput struct {
	PlayerID string
}

// SetOptOutInput toggles a player's scoring eligibility
type SetOptOutInput struct {
	PlayerID string
	OptOut   bool
}

// StatusOutput describes the machine state
type StatusOutput struct {
	Phase models.Phase

	// StartTime is the running tournament's start, or the next scheduled
	// start
	StartTime time.Time

	// EndTime is the running tournament's end; zero outside running
	EndTime time.Time

	// Remaining is the time until the pending transition
	Remaining time.Duration

	// Participants is the total ledger size
	Participants int

	// Active is the number of participants eligible for scoring
	Active int
}

// LeaderboardInput bounds the standings
type LeaderboardInput struct {
	// Limit caps the rows returned; 0 means all
	Limit int
}

// LeaderboardOutput contains the live ranked standings
type LeaderboardOutput struct {
	Standings []*models.Standing
}

// ApplySettingInput names one runtime setting
type ApplySettingInput struct {
	// Key is one of: duration, join_cutoff, npc_kill_cap,
	// animal_kill_cap, min_long_shot_distance
	Key string

	// Value is parsed according to the key's type
	Value string
}
