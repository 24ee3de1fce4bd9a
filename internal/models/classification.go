package models

// Category is the fixed scoring category a death event resolves to
type Category string

const (
	// CategoryVehicleDeath is a participant killed by a patrol helicopter
	// or bradley
	CategoryVehicleDeath Category = "vehicle_death"

	// CategoryVehicleDestroyed is a helicopter or bradley destroyed by a
	// participant
	CategoryVehicleDestroyed Category = "vehicle_destroyed"

	// CategoryNPCDeath is a participant killed by an NPC or an unowned
	// entity
	CategoryNPCDeath Category = "npc_death"

	// CategoryPlayerKill is a participant killed by another participant
	CategoryPlayerKill Category = "player_kill"

	// CategoryTrapSelf is a participant killed by their own trap
	CategoryTrapSelf Category = "trap_self"

	// CategoryTrapKill is a participant killed by another participant's
	// deployed trap or turret
	CategoryTrapKill Category = "trap_kill"

	// CategoryTrapHazard is a participant killed by an unowned or
	// non-participant hazard
	CategoryTrapHazard Category = "trap_hazard"

	// CategoryNPCKill is an NPC killed directly by a participant
	CategoryNPCKill Category = "npc_kill"

	// CategoryTrapNPCKill is an NPC killed by a participant's trap
	CategoryTrapNPCKill Category = "trap_npc_kill"

	// CategorySelfInflicted is a participant death with no other cause
	CategorySelfInflicted Category = "self_inflicted"

	// CategoryLongShot is a long-distance projectile kill on an animal
	CategoryLongShot Category = "long_shot"

	// CategoryUnclassified means no attribution rule matched
	CategoryUnclassified Category = "unclassified"
)

// Award is one score-affecting consequence of a classified event.
// Awards are applied in order; each stands alone (a failed award never
// rolls back an earlier one).
type Award struct {
	// PlayerID is the participant credited or penalized
	PlayerID string

	// PlayerName is carried for notification formatting
	PlayerName string

	// Code selects the rule-table delta to apply
	Code RuleCode

	// CapKind gates the award through a kill-cap counter when non-empty
	CapKind KillKind
}

// Classification is the outcome of attributing one death event
type Classification struct {
	Category Category

	// VictimID identifies the dying actor, for logging
	VictimID string

	// VictimName is the dying actor's display name
	VictimName string

	// Awards lists the score changes implied by the category, in
	// application order
	Awards []Award
}
