package models

// RuleCode identifies a scoring action in the rule table
type RuleCode string

const (
	// RuleCodeKill is awarded to a player who kills another participant
	RuleCodeKill RuleCode = "KILL"

	// RuleCodeDead is applied to a participant killed by another player
	RuleCodeDead RuleCode = "DEAD"

	// RuleCodeJoke is applied for self-inflicted or miscellaneous deaths
	RuleCodeJoke RuleCode = "JOKE"

	// RuleCodeNPC is awarded for killing an NPC, subject to the NPC kill cap
	RuleCodeNPC RuleCode = "NPC"

	// RuleCodeEnt is awarded for destroying a patrol helicopter or bradley
	RuleCodeEnt RuleCode = "ENT"

	// RuleCodeBruh is applied when a participant dies to a vehicle, an NPC
	// or their own deployed trap
	RuleCodeBruh RuleCode = "BRUH"

	// RuleCodeWhy is awarded for a long-distance projectile kill on an
	// animal, subject to the animal kill cap
	RuleCodeWhy RuleCode = "WHY"
)

// KillKind distinguishes the capped kill counters
type KillKind string

const (
	// KillKindNPC counts NPC kills against the NPC kill cap
	KillKindNPC KillKind = "npc"

	// KillKindAnimal counts long-shot animal kills against the animal kill cap
	KillKindAnimal KillKind = "animal"
)
