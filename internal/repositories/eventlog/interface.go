package eventlog

import "context"

// Repository is the append-only per-tournament event log. Each
// tournament gets its own log keyed by start timestamp; a terminal
// marker line records a clean end. A log without the marker means the
// process died mid-tournament and the state machine resumes from it.
type Repository interface {
	// Open starts a new log for a tournament
	Open(ctx context.Context, input *OpenInput) error

	// Append adds one line to a tournament's log
	Append(ctx context.Context, input *AppendInput) error

	// MarkEnded writes the clean-end marker
	MarkEnded(ctx context.Context, input *MarkEndedInput) error

	// Latest returns the newest log, if any
	Latest(ctx context.Context) (*LatestOutput, error)
}
