package tournament

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rustweek/royale/internal/common/clock"
	"github.com/rustweek/royale/internal/common/scheduler"
	"github.com/rustweek/royale/internal/models"
	"github.com/rustweek/royale/internal/repositories/eventlog"
	"github.com/rustweek/royale/internal/repositories/groups"
	"github.com/rustweek/royale/internal/repositories/history"
	ledgerService "github.com/rustweek/royale/internal/services/ledger"
	"github.com/rustweek/royale/internal/services/messaging"
	"github.com/rustweek/royale/internal/services/scoring"
)

const (
	defaultDuration        = 2 * time.Hour
	defaultPersistInterval = time.Minute
)

// defaultCountdownThresholds announce at most once each before a
// pending transition
var defaultCountdownThresholds = []time.Duration{10 * time.Minute, time.Minute}

// Config holds the tournament service dependencies
type Config struct {
	Ledger    ledgerService.Service
	Scoring   scoring.Service
	Messaging messaging.Service
	Notifier  messaging.Notifier
	History   history.Repository
	EventLog  eventlog.Repository
	Groups    groups.Repository
	Scheduler scheduler.Scheduler
	Clock     clock.Clock

	// Schedule places the weekly recurring start
	Schedule ScheduleConfig

	// Duration is the tournament length; defaults to 2h
	Duration time.Duration

	// JoinCutoff bounds late enrollment after start; 0 keeps enrollment
	// open for the whole tournament
	JoinCutoff time.Duration

	// CountdownThresholds override the 10m/1m announcement marks
	CountdownThresholds []time.Duration

	// PersistInterval is the periodic ledger save cadence while running;
	// defaults to 1m
	PersistInterval time.Duration
}

// service implements the Service interface.
//
// One mutex serializes transitions, timer callbacks and setting
// changes. Timer handles are only touched with the mutex held, so a
// callback can never race its own replacement.
type service struct {
	ledger    ledgerService.Service
	scoring   scoring.Service
	messaging messaging.Service
	notifier  messaging.Notifier
	history   history.Repository
	eventLog  eventlog.Repository
	groups    groups.Repository
	scheduler scheduler.Scheduler
	clock     clock.Clock

	schedule        ScheduleConfig
	loc             *time.Location
	thresholds      []time.Duration
	persistInterval time.Duration

	mu         sync.Mutex
	phase      models.Phase
	startTime  time.Time
	endTime    time.Time
	duration   time.Duration
	joinCutoff time.Duration

	// fired tracks which countdown thresholds have announced for the
	// current target; reset on every transition
	fired map[time.Duration]bool

	startHandle   scheduler.Handle
	endHandle     scheduler.Handle
	tickHandle    scheduler.Handle
	persistHandle scheduler.Handle
}

// New creates a new tournament service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Ledger == nil {
		return nil, errors.New("ledger cannot be nil")
	}

	if cfg.Scoring == nil {
		return nil, errors.New("scoring cannot be nil")
	}

	if cfg.Messaging == nil {
		return nil, errors.New("messaging cannot be nil")
	}

	if cfg.Notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}

	if cfg.History == nil {
		return nil, errors.New("history cannot be nil")
	}

	if cfg.EventLog == nil {
		return nil, errors.New("event log cannot be nil")
	}

	if cfg.Groups == nil {
		return nil, errors.New("groups cannot be nil")
	}

	if cfg.Scheduler == nil {
		return nil, errors.New("scheduler cannot be nil")
	}

	if cfg.Clock == nil {
		cfg.Clock = &clock.DefaultClock{}
	}

	duration := cfg.Duration
	if duration <= 0 {
		duration = defaultDuration
	}

	persistInterval := cfg.PersistInterval
	if persistInterval <= 0 {
		persistInterval = defaultPersistInterval
	}

	thresholds := cfg.CountdownThresholds
	if len(thresholds) == 0 {
		thresholds = defaultCountdownThresholds
	}
	thresholds = append([]time.Duration(nil), thresholds...)
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i] > thresholds[j] })

	return &service{
		ledger:          cfg.Ledger,
		scoring:         cfg.Scoring,
		messaging:       cfg.Messaging,
		notifier:        cfg.Notifier,
		history:         cfg.History,
		eventLog:        cfg.EventLog,
		groups:          cfg.Groups,
		scheduler:       cfg.Scheduler,
		clock:           cfg.Clock,
		schedule:        cfg.Schedule,
		loc:             cfg.Schedule.location(),
		thresholds:      thresholds,
		persistInterval: persistInterval,
		phase:           models.PhaseScheduled,
		duration:        duration,
		joinCutoff:      cfg.JoinCutoff,
		fired:           make(map[time.Duration]bool),
	}, nil
}

// Resume restores the machine at process start
func (s *service) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.eventLog.Latest(ctx)
	if err != nil {
		log.Printf("WARN: failed to inspect latest event log, scheduling fresh: %v", err)
		s.rescheduleLocked(ctx)
		return nil
	}

	if !latest.Found || latest.Ended {
		s.rescheduleLocked(ctx)
		return nil
	}

	// The newest log has no ended marker: the process died mid-tournament
	startedAt := latest.StartedAt
	endsAt := startedAt.Add(s.duration)

	log.Printf("resuming tournament started %s", startedAt.Format(time.RFC3339))

	if _, err := s.ledger.RebuildActiveSet(ctx); err != nil {
		return fmt.Errorf("failed to rebuild active set: %w", err)
	}

	if err := s.scoring.BeginTournament(ctx, &scoring.BeginTournamentInput{StartedAt: startedAt}); err != nil {
		return fmt.Errorf("failed to re-arm scoring: %w", err)
	}

	s.phase = models.PhaseRunning
	s.startTime = startedAt
	s.endTime = endsAt
	s.fired = make(map[time.Duration]bool)

	if !endsAt.After(s.clock.Now()) {
		return s.endLocked(ctx, false)
	}

	s.armRunningTimersLocked(endsAt)
	return nil
}

// Start begins a tournament now
func (s *service) Start(ctx context.Context, input *StartInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	manual := input != nil && input.Manual
	return s.startLocked(ctx, manual)
}

// End finishes the running tournament
func (s *service) End(ctx context.Context, input *EndInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	manual := input != nil && input.Manual
	return s.endLocked(ctx, manual)
}

func (s *service) startLocked(ctx context.Context, manual bool) error {
	if s.phase == models.PhaseRunning {
		if manual {
			return ErrAlreadyRunning
		}
		log.Printf("skipping scheduled start: tournament already running")
		return nil
	}

	s.cancelTimersLocked()

	now := s.clock.Now()
	endsAt := now.Add(s.duration)

	rebuilt, err := s.ledger.RebuildActiveSet(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild active set: %w", err)
	}

	if err := s.ledger.ResetAllScores(ctx); err != nil {
		return fmt.Errorf("failed to reset scores: %w", err)
	}

	if err := s.eventLog.Open(ctx, &eventlog.OpenInput{StartedAt: now}); err != nil {
		log.Printf("WARN: failed to open event log: %v", err)
	}

	if err := s.scoring.BeginTournament(ctx, &scoring.BeginTournamentInput{StartedAt: now}); err != nil {
		return fmt.Errorf("failed to arm scoring: %w", err)
	}

	s.phase = models.PhaseRunning
	s.startTime = now
	s.endTime = endsAt
	s.fired = make(map[time.Duration]bool)

	s.armRunningTimersLocked(endsAt)

	message, err := s.messaging.GetStartMessage(ctx, &messaging.GetStartMessageInput{
		EndTime:      endsAt,
		Participants: rebuilt.ActiveCount,
	})
	if err == nil {
		s.announce(ctx, message.Message)
	}

	return nil
}

func (s *service) endLocked(ctx context.Context, manual bool) error {
	if s.phase != models.PhaseRunning {
		if manual {
			return ErrNotRunning
		}
		log.Printf("skipping scheduled end: no tournament running")
		return nil
	}

	s.cancelTimersLocked()

	now := s.clock.Now()
	startedAt := s.startTime

	if err := s.scoring.EndTournament(ctx); err != nil {
		log.Printf("WARN: failed to disarm scoring: %v", err)
	}

	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to snapshot ledger: %w", err)
	}

	standings := rank(snapshot.Participants)
	topGroup, topGroupScore := s.aggregateGroups(ctx, snapshot.Participants)

	if _, err := s.history.AppendEntry(ctx, &history.AppendEntryInput{
		Entry: &models.HistoryEntry{
			StartedAt:     startedAt,
			EndedAt:       now,
			Standings:     standings,
			Participants:  snapshot.Participants,
			TopGroup:      topGroup,
			TopGroupScore: topGroupScore,
		},
	}); err != nil {
		log.Printf("WARN: failed to append history entry: %v", err)
	}

	if err := s.eventLog.MarkEnded(ctx, &eventlog.MarkEndedInput{StartedAt: startedAt}); err != nil {
		log.Printf("WARN: failed to mark event log ended: %v", err)
	}

	message, err := s.messaging.GetEndMessage(ctx, &messaging.GetEndMessageInput{
		Standings:     standings,
		TopGroup:      topGroup,
		TopGroupScore: topGroupScore,
	})
	if err == nil {
		s.announce(ctx, message.Message)
	}

	if err := s.ledger.ResetAllScores(ctx); err != nil {
		log.Printf("WARN: failed to reset scores after end: %v", err)
	}

	s.phase = models.PhaseEnded
	s.endTime = time.Time{}

	s.rescheduleLocked(ctx)
	return nil
}

// rescheduleLocked arms the next weekly start and announces it
func (s *service) rescheduleLocked(ctx context.Context) {
	s.cancelTimersLocked()

	next := nextStart(s.clock.Now(), s.schedule, s.loc)

	s.phase = models.PhaseScheduled
	s.startTime = next
	s.endTime = time.Time{}
	s.fired = make(map[time.Duration]bool)

	handle, err := s.scheduler.At(next, func() {
		if err := s.Start(context.Background(), &StartInput{}); err != nil {
			log.Printf("WARN: scheduled start failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("WARN: failed to arm start timer: %v", err)
	} else {
		s.startHandle = handle
	}

	s.armTickLocked()

	message, err := s.messaging.GetScheduledMessage(ctx, &messaging.GetScheduledMessageInput{StartTime: next})
	if err == nil {
		s.announce(ctx, message.Message)
	}
}

// armRunningTimersLocked arms the end timer, the countdown tick and the
// periodic ledger persist job
func (s *service) armRunningTimersLocked(endsAt time.Time) {
	handle, err := s.scheduler.At(endsAt, func() {
		if err := s.End(context.Background(), &EndInput{}); err != nil {
			log.Printf("WARN: scheduled end failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("WARN: failed to arm end timer: %v", err)
	} else {
		s.endHandle = handle
	}

	s.armTickLocked()

	persist, err := s.scheduler.Every(s.persistInterval, func() {
		if err := s.ledger.PersistSnapshot(context.Background()); err != nil {
			log.Printf("WARN: periodic ledger persist failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("WARN: failed to arm persist job: %v", err)
	} else {
		s.persistHandle = persist
	}
}

func (s *service) armTickLocked() {
	handle, err := s.scheduler.Every(time.Second, s.tick)
	if err != nil {
		log.Printf("WARN: failed to arm countdown tick: %v", err)
		return
	}
	s.tickHandle = handle
}

func (s *service) cancelTimersLocked() {
	for _, h := range []scheduler.Handle{s.startHandle, s.endHandle, s.tickHandle, s.persistHandle} {
		if h != nil {
			h.Cancel()
		}
	}
	s.startHandle = nil
	s.endHandle = nil
	s.tickHandle = nil
	s.persistHandle = nil
}

// tick checks the remaining time against the countdown thresholds.
// Each threshold fires at most once per pending target; crossing
// several at once announces only the closest.
func (s *service) tick() {
	ctx := context.Background()

	s.mu.Lock()

	var target time.Time
	var pending models.Phase
	switch s.phase {
	case models.PhaseScheduled:
		target, pending = s.startTime, models.PhaseRunning
	case models.PhaseRunning:
		target, pending = s.endTime, models.PhaseEnded
	default:
		s.mu.Unlock()
		return
	}

	remaining := target.Sub(s.clock.Now())
	if remaining <= 0 {
		s.mu.Unlock()
		return
	}

	fire := time.Duration(-1)
	for _, threshold := range s.thresholds {
		if remaining <= threshold && !s.fired[threshold] {
			s.fired[threshold] = true
			fire = threshold
		}
	}

	s.mu.Unlock()

	if fire < 0 {
		return
	}

	message, err := s.messaging.GetCountdownMessage(ctx, &messaging.GetCountdownMessageInput{
		Phase:     pending,
		Remaining: fire,
	})
	if err != nil {
		log.Printf("failed to format countdown message: %v", err)
		return
	}

	s.announce(ctx, message.Message)
}

// Enroll adds a player, subject to the join cutoff
func (s *service) Enroll(ctx context.Context, input *EnrollInput) (*EnrollOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	s.mu.Lock()
	phase := s.phase
	startedAt := s.startTime
	cutoff := s.joinCutoff
	s.mu.Unlock()

	if phase == models.PhaseRunning && cutoff > 0 && s.clock.Now().Sub(startedAt) >= cutoff {
		if input.Explicit {
			return nil, ErrEnrollmentClosed
		}
		return &EnrollOutput{Enrolled: false}, nil
	}

	ensured, err := s.ledger.EnsureParticipant(ctx, &ledgerService.EnsureParticipantInput{
		PlayerID:   input.PlayerID,
		PlayerName: input.PlayerName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enroll participant: %w", err)
	}

	if err := s.ledger.SetActive(ctx, &ledgerService.SetActiveInput{PlayerID: input.PlayerID, Active: true}); err != nil {
		return nil, fmt.Errorf("failed to activate participant: %w", err)
	}

	return &EnrollOutput{Enrolled: true, Created: ensured.Created}, nil
}

// Withdraw removes a player from the active roster
func (s *service) Withdraw(ctx context.Context, input *WithdrawInput) error {
	if input == nil || input.PlayerID == "" {
		return errors.New("input and player ID cannot be empty")
	}

	return s.ledger.SetActive(ctx, &ledgerService.SetActiveInput{PlayerID: input.PlayerID, Active: false})
}

// SetOptOut toggles a player's scoring eligibility
func (s *service) SetOptOut(ctx context.Context, input *SetOptOutInput) error {
	if input == nil || input.PlayerID == "" {
		return errors.New("input and player ID cannot be empty")
	}

	return s.ledger.SetActive(ctx, &ledgerService.SetActiveInput{PlayerID: input.PlayerID, Active: !input.OptOut})
}

// Status reports the current phase and timing
func (s *service) Status(ctx context.Context) (*StatusOutput, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot ledger: %w", err)
	}

	active := 0
	for _, p := range snapshot.Participants {
		if s.ledger.IsActive(p.ID) {
			active++
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var remaining time.Duration
	switch s.phase {
	case models.PhaseScheduled:
		remaining = s.startTime.Sub(s.clock.Now())
	case models.PhaseRunning:
		remaining = s.endTime.Sub(s.clock.Now())
	}
	if remaining < 0 {
		remaining = 0
	}

	return &StatusOutput{
		Phase:        s.phase,
		StartTime:    s.startTime,
		EndTime:      s.endTime,
		Remaining:    remaining,
		Participants: len(snapshot.Participants),
		Active:       active,
	}, nil
}

// Leaderboard returns the live ranked standings
func (s *service) Leaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot ledger: %w", err)
	}

	standings := rank(snapshot.Participants)

	if input != nil && input.Limit > 0 && len(standings) > input.Limit {
		standings = standings[:input.Limit]
	}

	return &LeaderboardOutput{Standings: standings}, nil
}

// ApplySetting updates one whitelisted runtime setting. Unknown keys
// are rejected outright.
func (s *service) ApplySetting(ctx context.Context, input *ApplySettingInput) error {
	if input == nil || input.Key == "" {
		return errors.New("input and key cannot be empty")
	}

	switch input.Key {
	case "duration":
		d, err := time.ParseDuration(input.Value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: duration %q", ErrInvalidSettingValue, input.Value)
		}
		return s.setDuration(ctx, d)

	case "join_cutoff":
		d, err := time.ParseDuration(input.Value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: join_cutoff %q", ErrInvalidSettingValue, input.Value)
		}
		s.mu.Lock()
		s.joinCutoff = d
		s.mu.Unlock()
		return nil

	case "npc_kill_cap":
		n, err := strconv.Atoi(input.Value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: npc_kill_cap %q", ErrInvalidSettingValue, input.Value)
		}
		s.scoring.SetNPCKillCap(n)
		return nil

	case "animal_kill_cap":
		n, err := strconv.Atoi(input.Value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: animal_kill_cap %q", ErrInvalidSettingValue, input.Value)
		}
		s.scoring.SetAnimalKillCap(n)
		return nil

	case "min_long_shot_distance":
		f, err := strconv.ParseFloat(input.Value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: min_long_shot_distance %q", ErrInvalidSettingValue, input.Value)
		}
		s.scoring.SetMinLongShotDistance(f)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, input.Key)
	}
}

// setDuration changes the tournament length. A running tournament gets
// its end time recomputed from the original start; if the new end has
// already passed the tournament ends immediately.
func (s *service) setDuration(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.duration = d

	if s.phase != models.PhaseRunning {
		return nil
	}

	endsAt := s.startTime.Add(d)
	s.endTime = endsAt

	if s.endHandle != nil {
		s.endHandle.Cancel()
		s.endHandle = nil
	}

	if !endsAt.After(s.clock.Now()) {
		return s.endLocked(ctx, false)
	}

	handle, err := s.scheduler.At(endsAt, func() {
		if err := s.End(context.Background(), &EndInput{}); err != nil {
			log.Printf("WARN: scheduled end failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("WARN: failed to re-arm end timer: %v", err)
	} else {
		s.endHandle = handle
	}

	return nil
}

// Stop cancels all armed timers
func (s *service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimersLocked()
	return nil
}

// announce broadcasts best-effort; delivery failures are logged
func (s *service) announce(ctx context.Context, message string) {
	if err := s.notifier.Announce(ctx, message); err != nil {
		log.Printf("failed to announce: %v", err)
	}
}

// aggregateGroups sums scores per group key. Participants without a
// group are excluded; resolution errors exclude that participant too.
func (s *service) aggregateGroups(ctx context.Context, participants []*models.Participant) (string, int) {
	totals := make(map[string]int)
	order := make([]string, 0)

	for _, p := range participants {
		resolved, err := s.groups.ResolveGroup(ctx, &groups.ResolveGroupInput{PlayerID: p.ID})
		if err != nil {
			log.Printf("WARN: failed to resolve group for %s: %v", p.ID, err)
			continue
		}
		if !resolved.Found {
			continue
		}

		if _, seen := totals[resolved.GroupKey]; !seen {
			order = append(order, resolved.GroupKey)
		}
		totals[resolved.GroupKey] += p.Score
	}

	top := ""
	topScore := 0
	for _, key := range order {
		if top == "" || totals[key] > topScore {
			top = key
			topScore = totals[key]
		}
	}

	return top, topScore
}

// rank turns a score-ordered snapshot into standings
func rank(participants []*models.Participant) []*models.Standing {
	standings := make([]*models.Standing, 0, len(participants))
	for i, p := range participants {
		standings = append(standings, &models.Standing{
			Rank:       i + 1,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Score:      p.Score,
		})
	}
	return standings
}
