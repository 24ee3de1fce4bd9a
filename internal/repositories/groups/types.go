package groups

// ResolveGroupInput identifies the player to look up
type ResolveGroupInput struct {
	PlayerID string
}

// ResolveGroupOutput contains the resolution result
type ResolveGroupOutput struct {
	// Found is false when the player has no group; such players are
	// excluded from group aggregation
	Found bool

	// GroupKey is the clan tag or permission-group name
	GroupKey string
}

// SetGroupInput assigns a player to a group
type SetGroupInput struct {
	PlayerID string
	GroupKey string
}
