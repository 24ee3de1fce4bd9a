package ledger

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/rustweek/royale/internal/common/clock"
	"github.com/rustweek/royale/internal/models"
	ledgerRepo "github.com/rustweek/royale/internal/repositories/ledger"
)

// Config holds the ledger service dependencies
type Config struct {
	// Repo is the durable snapshot store
	Repo ledgerRepo.Repository

	// Clock provides enrollment timestamps
	Clock clock.Clock
}

// service implements the Service interface.
//
// One mutex guards the participant map, the insertion order, the active
// set and serialization to storage. Snapshotting needs a consistent
// global view, so per-entry locking buys nothing here; event rates are
// far below contention levels that would make the coarse lock a problem.
type service struct {
	mu           sync.Mutex
	participants map[string]*models.Participant
	order        []string
	active       map[string]struct{}

	repo  ledgerRepo.Repository
	clock clock.Clock
}

// New creates a new ledger service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Repo == nil {
		return nil, errors.New("repo cannot be nil")
	}

	if cfg.Clock == nil {
		cfg.Clock = &clock.DefaultClock{}
	}

	return &service{
		participants: make(map[string]*models.Participant),
		active:       make(map[string]struct{}),
		repo:         cfg.Repo,
		clock:        cfg.Clock,
	}, nil
}

// EnsureParticipant inserts a participant if missing
func (s *service) EnsureParticipant(ctx context.Context, input *EnsureParticipantInput) (*EnsureParticipantOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.participants[input.PlayerID]; ok {
		return &EnsureParticipantOutput{
			Participant: copyParticipant(existing),
			Created:     false,
		}, nil
	}

	participant := &models.Participant{
		ID:       input.PlayerID,
		Name:     input.PlayerName,
		JoinedAt: s.clock.Now(),
	}

	s.participants[input.PlayerID] = participant
	s.order = append(s.order, input.PlayerID)

	s.persistLocked(ctx)

	return &EnsureParticipantOutput{
		Participant: copyParticipant(participant),
		Created:     true,
	}, nil
}

// GetParticipant returns a copy of a participant
func (s *service) GetParticipant(ctx context.Context, input *GetParticipantInput) (*GetParticipantOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[input.PlayerID]
	if !ok {
		return nil, ErrParticipantNotFound
	}

	return &GetParticipantOutput{
		Participant: copyParticipant(participant),
	}, nil
}

// Mutate applies a score delta atomically. The ledger is persisted
// before control returns to the event source, so a crash right after a
// scoring event loses at most this one write. Persistence failures are
// logged and skipped; the in-memory mutation stands.
func (s *service) Mutate(ctx context.Context, input *MutateInput) (*MutateOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[input.PlayerID]
	if !ok {
		return nil, ErrParticipantNotFound
	}

	previous := participant.Score
	participant.Score += input.Delta

	s.persistLocked(ctx)

	return &MutateOutput{
		PreviousScore: previous,
		NewScore:      participant.Score,
	}, nil
}

// ResetAllScores zeroes every participant's score
func (s *service) ResetAllScores(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, participant := range s.participants {
		participant.Score = 0
	}

	s.persistLocked(ctx)

	return nil
}

// Snapshot returns all participants ordered by descending score.
// Iterating the insertion order and sorting stably keeps equal scores
// in enrollment order, with no secondary sort key.
func (s *service) Snapshot(ctx context.Context) (*SnapshotOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participants := s.snapshotLocked()

	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].Score > participants[j].Score
	})

	return &SnapshotOutput{
		Participants: participants,
	}, nil
}

// SetActive adds or removes a player from the active set
func (s *service) SetActive(ctx context.Context, input *SetActiveInput) error {
	if input == nil || input.PlayerID == "" {
		return errors.New("input and player ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[input.PlayerID]
	if !ok {
		return ErrParticipantNotFound
	}

	participant.Inactive = !input.Active

	if input.Active {
		s.active[input.PlayerID] = struct{}{}
	} else {
		delete(s.active, input.PlayerID)
	}

	s.persistLocked(ctx)

	return nil
}

// RebuildActiveSet recomputes the active set from the ledger
func (s *service) RebuildActiveSet(ctx context.Context) (*RebuildActiveSetOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = make(map[string]struct{}, len(s.participants))
	for id, participant := range s.participants {
		if !participant.Inactive {
			s.active[id] = struct{}{}
		}
	}

	return &RebuildActiveSetOutput{
		ActiveCount: len(s.active),
	}, nil
}

// IsActive reports whether a player is eligible for scoring
func (s *service) IsActive(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.active[playerID]
	return ok
}

// PersistSnapshot saves the ledger to durable storage
func (s *service) PersistSnapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.SaveSnapshot(ctx, &ledgerRepo.SaveSnapshotInput{
		Participants: s.snapshotLocked(),
	})
}

// RestoreSnapshot replaces the in-memory ledger with the persisted one
func (s *service) RestoreSnapshot(ctx context.Context) (*RestoreSnapshotOutput, error) {
	output, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrSnapshotNotFound) {
			return &RestoreSnapshotOutput{ParticipantCount: 0}, nil
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = make(map[string]*models.Participant, len(output.Participants))
	s.order = make([]string, 0, len(output.Participants))

	for _, participant := range output.Participants {
		p := copyParticipant(participant)
		s.participants[p.ID] = p
		s.order = append(s.order, p.ID)
	}

	return &RestoreSnapshotOutput{
		ParticipantCount: len(s.participants),
	}, nil
}

// persistLocked saves the ledger best-effort while the lock is held, so
// serialization never interleaves with a mutation. Failures (storage
// unavailable, value locked by a concurrent reader) are logged; the
// periodic save job retries later.
func (s *service) persistLocked(ctx context.Context) {
	err := s.repo.SaveSnapshot(ctx, &ledgerRepo.SaveSnapshotInput{
		Participants: s.snapshotLocked(),
	})
	if err != nil {
		log.Printf("WARN: skipping ledger persist: %v", err)
	}
}

// snapshotLocked copies the participants in insertion order
func (s *service) snapshotLocked() []*models.Participant {
	participants := make([]*models.Participant, 0, len(s.order))
	for _, id := range s.order {
		participants = append(participants, copyParticipant(s.participants[id]))
	}
	return participants
}

func copyParticipant(p *models.Participant) *models.Participant {
	c := *p
	return &c
}
