package scoring

import (
	"time"

	"github.com/rustweek/royale/internal/models"
)

// BeginTournamentInput identifies the tournament's event log
type BeginTournamentInput struct {
	StartedAt time.Time
}

// RecordDamageInput wraps a non-terminal damage event
type RecordDamageInput struct {
	Event *models.DamageEvent
}

// RecordDeathInput wraps a terminal death event
type RecordDeathInput struct {
	Event *models.DeathEvent
}

// AppliedAward is one score change that actually landed
type AppliedAward struct {
	PlayerID string
	Code     models.RuleCode
	Delta    int
	NewScore int
}

// RecordDeathOutput reports what the event did
type RecordDeathOutput struct {
	// Category is empty when the event was suppressed or dropped
	Category models.Category

	// Applied lists the score changes in application order
	Applied []AppliedAward
}

// RecordEntityDeathInput wraps an entity destruction event
type RecordEntityDeathInput struct {
	Event *models.EntityDeathEvent
}

// RecordEntityDeathOutput reports what the event did
type RecordEntityDeathOutput struct {
	Category models.Category
	Applied  []AppliedAward
}

// RedeemKitInput deducts a kit cost
type RedeemKitInput struct {
	PlayerID string
	KitName  string
	Cost     int
}

// RedeemKitOutput reports the post-deduction balance
type RedeemKitOutput struct {
	NewBalance int
}
