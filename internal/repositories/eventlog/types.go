package eventlog

import "time"

// OpenInput identifies the tournament by its start time
type OpenInput struct {
	StartedAt time.Time
}

// AppendInput adds one line to the identified log
type AppendInput struct {
	StartedAt time.Time
	Line      string
}

// MarkEndedInput identifies the log to close
type MarkEndedInput struct {
	StartedAt time.Time
}

// LatestOutput describes the newest log
type LatestOutput struct {
	// Found is false when no log exists at all
	Found bool

	// StartedAt is the start time encoded in the log key
	StartedAt time.Time

	// Ended reports whether the clean-end marker is present
	Ended bool
}
