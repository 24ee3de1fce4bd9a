package models

import (
	"time"
)

// Participant represents a player enrolled in the current or a past
// tournament. Participants are never deleted; opting out marks them
// inactive so their score history survives.
type Participant struct {
	// ID is the stable game identity of the player (steam id)
	ID string

	// Name is the display name of the player
	Name string

	// Score is the cumulative point total. There is no floor; penalties
	// and kit purchases can push it negative.
	Score int

	// Inactive excludes the player from scoring while keeping the record
	Inactive bool

	// JoinedAt is when the player first enrolled
	JoinedAt time.Time
}
