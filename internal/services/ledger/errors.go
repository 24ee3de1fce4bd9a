package ledger

import "errors"

// Define errors
var (
	ErrParticipantNotFound = errors.New("participant not found")
)
