package scoring

import "context"

// Service is the scoring engine: it feeds raw game events through the
// attribution engine, applies rule-table deltas to the ledger, and
// emits outbound notifications. Events received while no tournament is
// running are dropped.
type Service interface {
	// BeginTournament arms scoring: resets the kill caps and attribution
	// state and opens the given event log
	BeginTournament(ctx context.Context, input *BeginTournamentInput) error

	// EndTournament disarms scoring
	EndTournament(ctx context.Context) error

	// RecordDamage notes a non-terminal hit for attacker backfill
	RecordDamage(ctx context.Context, input *RecordDamageInput) error

	// RecordDeath scores a terminal death event
	RecordDeath(ctx context.Context, input *RecordDeathInput) (*RecordDeathOutput, error)

	// RecordEntityDeath scores an entity destruction event
	RecordEntityDeath(ctx context.Context, input *RecordEntityDeathInput) (*RecordEntityDeathOutput, error)

	// RedeemKit deducts a kit's cost from a participant. The deduction is
	// unconditional: a balance below the cost goes negative and the
	// redemption still succeeds.
	RedeemKit(ctx context.Context, input *RedeemKitInput) (*RedeemKitOutput, error)

	// SetNPCKillCap updates the per-player NPC kill cap; 0 is unlimited
	SetNPCKillCap(cap int)

	// SetAnimalKillCap updates the per-player animal kill cap; 0 is unlimited
	SetAnimalKillCap(cap int)

	// SetMinLongShotDistance updates the wildlife long-shot threshold
	SetMinLongShotDistance(distance float64)
}
