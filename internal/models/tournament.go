package models

import (
	"time"
)

// Phase is the lifecycle state of the tournament
type Phase string

const (
	// PhaseScheduled means the next start time is armed but not reached
	PhaseScheduled Phase = "scheduled"

	// PhaseRunning means scoring is live
	PhaseRunning Phase = "running"

	// PhaseEnded is the transient state between a finished tournament and
	// the next scheduled one
	PhaseEnded Phase = "ended"
)

// Standing is one row of a ranked leaderboard
type Standing struct {
	Rank       int
	PlayerID   string
	PlayerName string
	Score      int
}

// HistoryEntry is the durable record of one finished tournament
type HistoryEntry struct {
	// ID is a generated unique id for the entry
	ID string

	StartedAt time.Time
	EndedAt   time.Time

	// Standings is the final ranking, descending by score
	Standings []*Standing

	// Participants is the full ledger at the moment the tournament ended,
	// including inactive players
	Participants []*Participant

	// TopGroup is the clan/group with the highest combined score, when
	// group resolution produced one
	TopGroup string

	// TopGroupScore is the combined score of TopGroup
	TopGroupScore int
}
