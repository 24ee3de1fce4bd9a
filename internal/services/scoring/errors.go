package scoring

import "errors"

var (
	// ErrNotRunning is returned when a kit redemption arrives outside a
	// running tournament
	ErrNotRunning = errors.New("no tournament is running")

	// ErrUnknownParticipant is returned when a kit redemption names a
	// player the ledger has never seen
	ErrUnknownParticipant = errors.New("unknown participant")
)
