package attribution

import (
	"errors"
	"sync"
	"time"

	"github.com/rustweek/royale/internal/common/clock"
	"github.com/rustweek/royale/internal/models"
)

const (
	// defaultRecencyWindow bounds how old a last-damage record may be to
	// backfill an attacker on an indirectly attributed death
	defaultRecencyWindow = 30 * time.Second

	// defaultSuppressionWindow guards against the host firing more than
	// one death notification for a single kill
	defaultSuppressionWindow = 5 * time.Second

	// defaultMinLongShotDistance qualifies a wildlife kill as a long shot
	defaultMinLongShotDistance = 150.0
)

// Roster reports whether a player is eligible for scoring in the
// currently running tournament
type Roster interface {
	IsActive(playerID string) bool
}

// Config holds the attribution engine dependencies
type Config struct {
	// Roster resolves active participants
	Roster Roster

	// Clock drives the suppression window
	Clock clock.Clock

	// RecencyWindow overrides the 30s attacker-backfill window
	RecencyWindow time.Duration

	// SuppressionWindow overrides the 5s duplicate-death window
	SuppressionWindow time.Duration

	// MinLongShotDistance overrides the wildlife long-shot threshold
	MinLongShotDistance float64
}

type damageRecord struct {
	attackerID   string
	attackerName string
	at           time.Time
}

// deathRule is one step of the ordered classification chain. Rules are
// evaluated in sequence; the first non-nil result wins and later rules
// are unreachable for that event.
type deathRule func(*deathContext) *models.Classification

type deathContext struct {
	event    *models.DeathEvent
	attacker *models.Actor
	roster   Roster
}

// Engine classifies death events into scoring categories. It owns the
// short-lived last-damage map and the duplicate-suppression map; both
// are guarded by one mutex because game callbacks for different players
// can be delivered concurrently.
type Engine struct {
	roster Roster
	clock  clock.Clock

	recencyWindow     time.Duration
	suppressionWindow time.Duration

	mu            sync.Mutex
	lastDamage    map[string]damageRecord
	recentDeaths  map[string]time.Time
	minLongShot   float64
	deathRules    []deathRule
}

// New creates a new attribution engine
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Roster == nil {
		return nil, errors.New("roster cannot be nil")
	}

	if cfg.Clock == nil {
		cfg.Clock = &clock.DefaultClock{}
	}

	e := &Engine{
		roster:            cfg.Roster,
		clock:             cfg.Clock,
		recencyWindow:     cfg.RecencyWindow,
		suppressionWindow: cfg.SuppressionWindow,
		minLongShot:       cfg.MinLongShotDistance,
		lastDamage:        make(map[string]damageRecord),
		recentDeaths:      make(map[string]time.Time),
	}

	if e.recencyWindow <= 0 {
		e.recencyWindow = defaultRecencyWindow
	}
	if e.suppressionWindow <= 0 {
		e.suppressionWindow = defaultSuppressionWindow
	}
	if e.minLongShot <= 0 {
		e.minLongShot = defaultMinLongShotDistance
	}

	// The chain order is load-bearing: each rule assumes everything
	// above it has already declined the event
	e.deathRules = []deathRule{
		vehicleDeathRule,
		npcCauseRule,
		playerKillRule,
		trapRule,
		npcKillRule,
		npcTrapKillRule,
		selfInflictedRule,
	}

	return e, nil
}

// SetMinLongShotDistance updates the wildlife threshold at runtime
func (e *Engine) SetMinLongShotDistance(distance float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if distance > 0 {
		e.minLongShot = distance
	}
}

// Reset drops all transient state; called at tournament start
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastDamage = make(map[string]damageRecord)
	e.recentDeaths = make(map[string]time.Time)
}

// RecordDamage notes the most recent non-terminal hit on a victim.
// Most-recent wins; self-hits are not useful for backfill and are
// ignored.
func (e *Engine) RecordDamage(event *models.DamageEvent) {
	if event == nil || event.Victim.ID == "" || event.Attacker.ID == "" {
		return
	}
	if event.Attacker.ID == event.Victim.ID {
		return
	}

	at := event.OccurredAt
	if at.IsZero() {
		at = e.clock.Now()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastDamage[event.Victim.ID] = damageRecord{
		attackerID:   event.Attacker.ID,
		attackerName: event.Attacker.Name,
		at:           at,
	}
}

// ClassifyDeath runs the ordered decision chain over a terminal death
// event. It returns nil when the event is a suppressed duplicate; an
// unmatched event comes back as CategoryUnclassified so the caller can
// log and discard it.
func (e *Engine) ClassifyDeath(event *models.DeathEvent) *models.Classification {
	if event == nil || event.Victim.ID == "" {
		return nil
	}

	if e.suppressDuplicate(event.Victim.ID) {
		return nil
	}

	ctx := &deathContext{
		event:    event,
		attacker: e.resolveAttacker(event),
		roster:   e.roster,
	}

	for _, rule := range e.deathRules {
		if result := rule(ctx); result != nil {
			return result
		}
	}

	return &models.Classification{
		Category:   models.CategoryUnclassified,
		VictimID:   event.Victim.ID,
		VictimName: event.Victim.Name,
	}
}

// ClassifyEntityDeath handles the two entity-death shapes: a vehicle
// destroyed by a participant, and the long-distance wildlife rule.
// These are keyed by entity, not victim, so the player death
// suppression window does not apply.
func (e *Engine) ClassifyEntityDeath(event *models.EntityDeathEvent) *models.Classification {
	if event == nil || event.Entity.TypeTag == "" {
		return nil
	}

	if isVehicleTag(event.Entity.TypeTag) {
		if event.Killer != nil && !event.Killer.NPC && e.roster.IsActive(event.Killer.ID) {
			return &models.Classification{
				Category:   models.CategoryVehicleDestroyed,
				VictimID:   event.Entity.ID,
				VictimName: event.Entity.TypeTag,
				Awards: []models.Award{
					{PlayerID: event.Killer.ID, PlayerName: event.Killer.Name, Code: models.RuleCodeEnt},
				},
			}
		}
		return e.unclassifiedEntity(event)
	}

	if isAnimalTag(event.Entity.TypeTag) {
		if event.Killer == nil || event.Killer.NPC || !e.roster.IsActive(event.Killer.ID) {
			return e.unclassifiedEntity(event)
		}
		if event.Weapon.Class != models.WeaponClassProjectile {
			return e.unclassifiedEntity(event)
		}

		distance := event.KillerPosition.DistanceTo(event.EntityPosition)

		// A tie with the threshold does not qualify
		e.mu.Lock()
		qualifies := distance > e.minLongShot
		e.mu.Unlock()

		if !qualifies {
			return e.unclassifiedEntity(event)
		}

		return &models.Classification{
			Category:   models.CategoryLongShot,
			VictimID:   event.Entity.ID,
			VictimName: event.Entity.TypeTag,
			Awards: []models.Award{
				{PlayerID: event.Killer.ID, PlayerName: event.Killer.Name, Code: models.RuleCodeWhy, CapKind: models.KillKindAnimal},
			},
		}
	}

	return e.unclassifiedEntity(event)
}

func (e *Engine) unclassifiedEntity(event *models.EntityDeathEvent) *models.Classification {
	return &models.Classification{
		Category:   models.CategoryUnclassified,
		VictimID:   event.Entity.ID,
		VictimName: event.Entity.TypeTag,
	}
}

// suppressDuplicate reports whether the victim already produced a
// terminal classification inside the suppression window, recording this
// one otherwise
func (e *Engine) suppressDuplicate(victimID string) bool {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if last, ok := e.recentDeaths[victimID]; ok && now.Sub(last) < e.suppressionWindow {
		return true
	}

	e.recentDeaths[victimID] = now
	return false
}

// resolveAttacker picks the credited attacker. The event's own attacker
// stands unless it is missing or the victim itself; then the victim's
// last-damage record is substituted if it names someone else and is
// recent enough. The game sometimes attributes a fatal blow to an
// indirect cause (fall, drowning) moments after a player dealt the
// lethal damage; the backfill restores the credit.
func (e *Engine) resolveAttacker(event *models.DeathEvent) *models.Actor {
	if event.Attacker != nil && event.Attacker.ID != "" && event.Attacker.ID != event.Victim.ID {
		return event.Attacker
	}

	at := event.OccurredAt
	if at.IsZero() {
		at = e.clock.Now()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	record, ok := e.lastDamage[event.Victim.ID]
	if !ok {
		return event.Attacker
	}

	// Records are single-use
	delete(e.lastDamage, event.Victim.ID)

	if record.attackerID == event.Victim.ID {
		return event.Attacker
	}
	if at.Sub(record.at) > e.recencyWindow {
		return event.Attacker
	}

	return &models.Actor{ID: record.attackerID, Name: record.attackerName}
}
