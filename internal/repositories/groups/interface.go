package groups

import "context"

// Repository resolves a player's clan/group key for the top-group
// leaderboard. Group membership is maintained by an external system;
// this repository only reads (and, for administration, writes) the
// mapping.
type Repository interface {
	// ResolveGroup looks up a player's group key
	ResolveGroup(ctx context.Context, input *ResolveGroupInput) (*ResolveGroupOutput, error)

	// SetGroup assigns a player to a group
	SetGroup(ctx context.Context, input *SetGroupInput) error
}
