package scoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rustweek/royale/internal/attribution"
	"github.com/rustweek/royale/internal/models"
	"github.com/rustweek/royale/internal/repositories/eventlog"
	"github.com/rustweek/royale/internal/rules"
	ledgerService "github.com/rustweek/royale/internal/services/ledger"
	"github.com/rustweek/royale/internal/services/messaging"
)

// service implements the Service interface
type service struct {
	ledger      ledgerService.Service
	caps        *ledgerService.CapTracker
	rules       *rules.Table
	attribution *attribution.Engine
	messaging   messaging.Service
	notifier    messaging.Notifier
	eventLog    eventlog.Repository

	// mu guards the arming state and the runtime-tunable caps. It is
	// never held across a ledger mutation or a notification.
	mu        sync.Mutex
	running   bool
	startedAt time.Time
	npcCap    int
	animalCap int
}

// Config holds the scoring service dependencies
type Config struct {
	Ledger      ledgerService.Service
	Caps        *ledgerService.CapTracker
	Rules       *rules.Table
	Attribution *attribution.Engine
	Messaging   messaging.Service
	Notifier    messaging.Notifier
	EventLog    eventlog.Repository

	// NPCKillCap bounds scored NPC kills per player; 0 is unlimited
	NPCKillCap int

	// AnimalKillCap bounds scored long-shot wildlife kills per player;
	// 0 is unlimited
	AnimalKillCap int
}

// NewService creates a new scoring service
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Ledger == nil {
		return nil, errors.New("ledger cannot be nil")
	}

	if cfg.Caps == nil {
		return nil, errors.New("caps cannot be nil")
	}

	if cfg.Rules == nil {
		return nil, errors.New("rules cannot be nil")
	}

	if cfg.Attribution == nil {
		return nil, errors.New("attribution cannot be nil")
	}

	if cfg.Messaging == nil {
		return nil, errors.New("messaging cannot be nil")
	}

	if cfg.Notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}

	if cfg.EventLog == nil {
		return nil, errors.New("event log cannot be nil")
	}

	return &service{
		ledger:      cfg.Ledger,
		caps:        cfg.Caps,
		rules:       cfg.Rules,
		attribution: cfg.Attribution,
		messaging:   cfg.Messaging,
		notifier:    cfg.Notifier,
		eventLog:    cfg.EventLog,
		npcCap:      cfg.NPCKillCap,
		animalCap:   cfg.AnimalKillCap,
	}, nil
}

// BeginTournament arms scoring for a fresh tournament
func (s *service) BeginTournament(ctx context.Context, input *BeginTournamentInput) error {
	if input == nil || input.StartedAt.IsZero() {
		return errors.New("start time is required")
	}

	s.caps.Reset()
	s.attribution.Reset()

	s.mu.Lock()
	s.running = true
	s.startedAt = input.StartedAt
	s.mu.Unlock()

	return nil
}

// EndTournament disarms scoring
func (s *service) EndTournament(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.startedAt = time.Time{}
	s.mu.Unlock()

	return nil
}

// RecordDamage notes a non-terminal hit. Damage is recorded even
// outside a running tournament; the records are cheap and the engine is
// reset at the next start anyway.
func (s *service) RecordDamage(ctx context.Context, input *RecordDamageInput) error {
	if input == nil || input.Event == nil {
		return errors.New("event is required")
	}

	s.attribution.RecordDamage(input.Event)
	return nil
}

// RecordDeath classifies and scores a terminal death event
func (s *service) RecordDeath(ctx context.Context, input *RecordDeathInput) (*RecordDeathOutput, error) {
	if input == nil || input.Event == nil {
		return nil, errors.New("event is required")
	}

	if !s.isRunning() {
		return &RecordDeathOutput{}, nil
	}

	classification := s.attribution.ClassifyDeath(input.Event)
	if classification == nil {
		// Suppressed duplicate
		return &RecordDeathOutput{}, nil
	}

	if classification.Category == models.CategoryUnclassified {
		log.Printf("discarding unclassified death: victim=%s", classification.VictimID)
		return &RecordDeathOutput{Category: classification.Category}, nil
	}

	applied := s.applyAwards(ctx, classification)
	s.broadcast(ctx, classification, applied)

	return &RecordDeathOutput{
		Category: classification.Category,
		Applied:  applied,
	}, nil
}

// RecordEntityDeath classifies and scores an entity destruction event
func (s *service) RecordEntityDeath(ctx context.Context, input *RecordEntityDeathInput) (*RecordEntityDeathOutput, error) {
	if input == nil || input.Event == nil {
		return nil, errors.New("event is required")
	}

	if !s.isRunning() {
		return &RecordEntityDeathOutput{}, nil
	}

	classification := s.attribution.ClassifyEntityDeath(input.Event)
	if classification == nil || classification.Category == models.CategoryUnclassified {
		return &RecordEntityDeathOutput{Category: models.CategoryUnclassified}, nil
	}

	applied := s.applyAwards(ctx, classification)
	s.broadcast(ctx, classification, applied)

	return &RecordEntityDeathOutput{
		Category: classification.Category,
		Applied:  applied,
	}, nil
}

// RedeemKit deducts the kit cost. The deduction always goes through;
// the balance is allowed to go negative.
func (s *service) RedeemKit(ctx context.Context, input *RedeemKitInput) (*RedeemKitOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("player id is required")
	}

	if !s.isRunning() {
		return nil, ErrNotRunning
	}

	mutation, err := s.ledger.Mutate(ctx, &ledgerService.MutateInput{
		PlayerID: input.PlayerID,
		Delta:    -input.Cost,
	})
	if err != nil {
		if errors.Is(err, ledgerService.ErrParticipantNotFound) {
			return nil, ErrUnknownParticipant
		}
		return nil, fmt.Errorf("failed to deduct kit cost: %w", err)
	}

	message := fmt.Sprintf("Kit %q redeemed for %d points. Balance: %d.", input.KitName, input.Cost, mutation.NewScore)
	if err := s.notifier.Notify(ctx, input.PlayerID, message); err != nil {
		log.Printf("failed to notify kit redemption: %v", err)
	}

	return &RedeemKitOutput{NewBalance: mutation.NewScore}, nil
}

// SetNPCKillCap updates the NPC kill cap
func (s *service) SetNPCKillCap(cap int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.npcCap = cap
}

// SetAnimalKillCap updates the animal kill cap
func (s *service) SetAnimalKillCap(cap int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animalCap = cap
}

// SetMinLongShotDistance updates the wildlife long-shot threshold
func (s *service) SetMinLongShotDistance(distance float64) {
	s.attribution.SetMinLongShotDistance(distance)
}

func (s *service) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *service) capFor(kind models.KillKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case models.KillKindNPC:
		return s.npcCap
	case models.KillKindAnimal:
		return s.animalCap
	default:
		return 0
	}
}

// applyAwards walks the classification's awards in order. A capped
// award whose cap is exhausted is dropped silently; an award naming an
// unknown rule code or participant is logged and skipped without
// disturbing the others.
func (s *service) applyAwards(ctx context.Context, classification *models.Classification) []AppliedAward {
	var applied []AppliedAward

	for _, award := range classification.Awards {
		if award.CapKind != "" && !s.caps.TryConsume(award.CapKind, award.PlayerID, s.capFor(award.CapKind)) {
			continue
		}

		delta, ok := s.rules.Lookup(award.Code)
		if !ok {
			log.Printf("WARN: no rule for code %s, skipping award for %s", award.Code, award.PlayerID)
			continue
		}

		mutation, err := s.ledger.Mutate(ctx, &ledgerService.MutateInput{
			PlayerID: award.PlayerID,
			Delta:    delta,
		})
		if err != nil {
			log.Printf("WARN: failed to apply %s to %s: %v", award.Code, award.PlayerID, err)
			continue
		}

		applied = append(applied, AppliedAward{
			PlayerID: award.PlayerID,
			Code:     award.Code,
			Delta:    delta,
			NewScore: mutation.NewScore,
		})
	}

	return applied
}

// broadcast formats and delivers the kill feed line and appends it to
// the tournament's event log. Runs after the awards have landed; the
// ledger lock is not held here. Delivery failures are logged, never
// propagated.
func (s *service) broadcast(ctx context.Context, classification *models.Classification, applied []AppliedAward) {
	if len(applied) == 0 {
		return
	}

	primary := s.pickCredited(ctx, classification, applied)

	feed, err := s.messaging.GetKillFeedMessage(ctx, &messaging.GetKillFeedMessageInput{
		Category:     classification.Category,
		VictimName:   classification.VictimName,
		CreditedName: primary.name,
		Delta:        primary.award.Delta,
		NewScore:     primary.award.NewScore,
	})
	if err != nil {
		log.Printf("failed to format kill feed message: %v", err)
		return
	}

	if err := s.notifier.Announce(ctx, feed.Message); err != nil {
		log.Printf("failed to announce kill feed message: %v", err)
	}

	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	if startedAt.IsZero() {
		return
	}

	if err := s.eventLog.Append(ctx, &eventlog.AppendInput{
		StartedAt: startedAt,
		Line:      feed.Message,
	}); err != nil {
		log.Printf("failed to append event log line: %v", err)
	}
}

type creditedAward struct {
	award AppliedAward
	name  string
}

// pickCredited picks the award the feed line is written around: the
// first applied award crediting someone other than the victim, falling
// back to the first award. Trap awards carry only the owner's ID, so a
// missing name is resolved from the ledger.
func (s *service) pickCredited(ctx context.Context, classification *models.Classification, applied []AppliedAward) creditedAward {
	chosen := applied[0]
	for _, a := range applied {
		if a.PlayerID != classification.VictimID {
			chosen = a
			break
		}
	}

	name := ""
	for _, award := range classification.Awards {
		if award.PlayerID == chosen.PlayerID && award.PlayerName != "" {
			name = award.PlayerName
			break
		}
	}

	if name == "" {
		participant, err := s.ledger.GetParticipant(ctx, &ledgerService.GetParticipantInput{PlayerID: chosen.PlayerID})
		if err == nil {
			name = participant.Participant.Name
		} else {
			name = chosen.PlayerID
		}
	}

	return creditedAward{award: chosen, name: name}
}
