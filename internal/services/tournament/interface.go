package tournament

import "context"

// Service is the tournament state machine. Phases loop
// scheduled -> running -> ended -> scheduled; transitions fire on
// scheduler timers or explicit admin commands. All timers are owned
// here and cancelled before re-arming.
type Service interface {
	// Resume restores the machine at process start: a latest event log
	// without an ended marker re-enters the running phase, anything else
	// arms the next scheduled start
	Resume(ctx context.Context) error

	// Start begins a tournament now
	Start(ctx context.Context, input *StartInput) error

	// End finishes the running tournament: rank, persist history,
	// announce, reset scores and reschedule
	End(ctx context.Context, input *EndInput) error

	// Enroll adds a player to the tournament, subject to the join cutoff
	Enroll(ctx context.Context, input *EnrollInput) (*EnrollOutput, error)

	// Withdraw removes a player from the active roster
	Withdraw(ctx context.Context, input *WithdrawInput) error

	// SetOptOut marks a player in or out of scoring
	SetOptOut(ctx context.Context, input *SetOptOutInput) error

	// Status reports the current phase and timing
	Status(ctx context.Context) (*StatusOutput, error)

	// Leaderboard returns the live ranked standings
	Leaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error)

	// ApplySetting updates one whitelisted runtime setting by key
	ApplySetting(ctx context.Context, input *ApplySettingInput) error

	// Stop cancels all armed timers; called on shutdown
	Stop(ctx context.Context) error
}
