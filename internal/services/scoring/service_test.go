package scoring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rustweek/royale/internal/attribution"
	clockMocks "github.com/rustweek/royale/internal/common/clock/mocks"
	"github.com/rustweek/royale/internal/models"
	eventlogRepo "github.com/rustweek/royale/internal/repositories/eventlog"
	ledgerRepo "github.com/rustweek/royale/internal/repositories/ledger"
	"github.com/rustweek/royale/internal/rules"
	ledgerService "github.com/rustweek/royale/internal/services/ledger"
	"github.com/rustweek/royale/internal/services/messaging"
	messagingMocks "github.com/rustweek/royale/internal/services/messaging/mocks"
)

type ScoringServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockClock    *clockMocks.MockClock
	mockNotifier *messagingMocks.MockNotifier
	mr           *miniredis.Miniredis
	client       *redis.Client
	ledger       ledgerService.Service
	caps         *ledgerService.CapTracker
	engine       *attribution.Engine
	service      Service
	ctx          context.Context
	testTime     time.Time
}

func (s *ScoringServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockNotifier = messagingMocks.NewMockNotifier(s.mockCtrl)

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.testTime = time.Date(2026, 8, 7, 18, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	repo, err := ledgerRepo.NewRedis(&ledgerRepo.Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)

	ledgerSvc, err := ledgerService.New(&ledgerService.Config{
		Repo:  repo,
		Clock: s.mockClock,
	})
	s.Require().NoError(err)
	s.ledger = ledgerSvc

	s.engine, err = attribution.New(&attribution.Config{
		Roster: s.ledger,
		Clock:  s.mockClock,
	})
	s.Require().NoError(err)

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{Seed: 42})
	s.Require().NoError(err)

	logRepo, err := eventlogRepo.NewRedis(&eventlogRepo.Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)

	s.caps = ledgerService.NewCapTracker()

	svc, err := NewService(&Config{
		Ledger:      s.ledger,
		Caps:        s.caps,
		Rules:       rules.Default(),
		Attribution: s.engine,
		Messaging:   messagingSvc,
		Notifier:    s.mockNotifier,
		EventLog:    logRepo,
		NPCKillCap:  0,
	})
	s.Require().NoError(err)
	s.service = svc

	s.ctx = context.Background()
}

func (s *ScoringServiceTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
	s.mockCtrl.Finish()
}

func TestScoringServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ScoringServiceTestSuite))
}

func (s *ScoringServiceTestSuite) enroll(id, name string) {
	_, err := s.ledger.EnsureParticipant(s.ctx, &ledgerService.EnsureParticipantInput{
		PlayerID:   id,
		PlayerName: name,
	})
	s.Require().NoError(err)

	err = s.ledger.SetActive(s.ctx, &ledgerService.SetActiveInput{PlayerID: id, Active: true})
	s.Require().NoError(err)
}

func (s *ScoringServiceTestSuite) begin() {
	err := s.service.BeginTournament(s.ctx, &BeginTournamentInput{StartedAt: s.testTime})
	s.Require().NoError(err)
}

func (s *ScoringServiceTestSuite) score(id string) int {
	output, err := s.ledger.GetParticipant(s.ctx, &ledgerService.GetParticipantInput{PlayerID: id})
	s.Require().NoError(err)
	return output.Participant.Score
}

func (s *ScoringServiceTestSuite) TestPlayerKillAwardsBothSides() {
	s.enroll("steam-1", "Player One")
	s.enroll("steam-2", "Player Two")
	s.begin()

	s.mockNotifier.EXPECT().Announce(gomock.Any(), gomock.Any()).Return(nil)

	output, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "steam-2", Name: "Player Two"},
			Attacker:   &models.Actor{ID: "steam-1", Name: "Player One"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)

	s.Equal(models.CategoryPlayerKill, output.Category)
	s.Require().Len(output.Applied, 2)
	s.Equal(models.RuleCodeDead, output.Applied[0].Code)
	s.Equal(-3, output.Applied[0].Delta)
	s.Equal(models.RuleCodeKill, output.Applied[1].Code)
	s.Equal(5, output.Applied[1].Delta)

	s.Equal(5, s.score("steam-1"))
	s.Equal(-3, s.score("steam-2"))
}

func (s *ScoringServiceTestSuite) TestKillFeedLineAppendedToEventLog() {
	s.enroll("steam-1", "Player One")
	s.enroll("steam-2", "Player Two")
	s.begin()

	s.mockNotifier.EXPECT().Announce(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "steam-2", Name: "Player Two"},
			Attacker:   &models.Actor{ID: "steam-1", Name: "Player One"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)

	lines, err := s.mr.List(fmt.Sprintf("royale:log:%d", s.testTime.Unix()))
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Contains(lines[0], "Player One")
	s.Contains(lines[0], "Player Two")
}

func (s *ScoringServiceTestSuite) TestNPCKillCapDropsExcessKills() {
	s.enroll("steam-1", "Player One")
	s.begin()
	s.service.SetNPCKillCap(1)

	s.mockNotifier.EXPECT().Announce(gomock.Any(), gomock.Any()).Return(nil)

	first, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "npc-1", Name: "Scientist", NPC: true},
			Attacker:   &models.Actor{ID: "steam-1", Name: "Player One"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)
	s.Equal(models.CategoryNPCKill, first.Category)
	s.Require().Len(first.Applied, 1)
	s.Equal(1, first.Applied[0].Delta)

	second, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "npc-2", Name: "Scientist", NPC: true},
			Attacker:   &models.Actor{ID: "steam-1", Name: "Player One"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)
	s.Equal(models.CategoryNPCKill, second.Category)
	s.Empty(second.Applied)

	s.Equal(1, s.score("steam-1"))
}

func (s *ScoringServiceTestSuite) TestVehicleDestroyedAwardsEnt() {
	s.enroll("steam-1", "Player One")
	s.begin()

	s.mockNotifier.EXPECT().Announce(gomock.Any(), gomock.Any()).Return(nil)

	output, err := s.service.RecordEntityDeath(s.ctx, &RecordEntityDeathInput{
		Event: &models.EntityDeathEvent{
			Entity:     models.EntityRef{ID: "ent-77", TypeTag: "patrolhelicopter"},
			Killer:     &models.Actor{ID: "steam-1", Name: "Player One"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)

	s.Equal(models.CategoryVehicleDestroyed, output.Category)
	s.Require().Len(output.Applied, 1)
	s.Equal(10, output.Applied[0].Delta)
	s.Equal(10, s.score("steam-1"))
}

func (s *ScoringServiceTestSuite) TestTrapKillCreditsOwnerByLedgerName() {
	s.enroll("steam-1", "Player One")
	s.enroll("steam-2", "Player Two")
	s.begin()

	var announced string
	s.mockNotifier.EXPECT().Announce(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, message string) error {
			announced = message
			return nil
		})

	output, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "steam-2", Name: "Player Two"},
			Entity:     &models.EntityRef{ID: "ent-9", TypeTag: "autoturret", OwnerID: "steam-1"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)

	s.Equal(models.CategoryTrapKill, output.Category)
	s.Equal(5, s.score("steam-1"))
	s.Equal(-3, s.score("steam-2"))

	// The trap award carries only the owner's ID; the feed line must
	// still name the owner
	s.Contains(announced, "Player One")
}

func (s *ScoringServiceTestSuite) TestEventsDroppedWhileNotRunning() {
	s.enroll("steam-1", "Player One")
	s.enroll("steam-2", "Player Two")

	output, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "steam-2", Name: "Player Two"},
			Attacker:   &models.Actor{ID: "steam-1", Name: "Player One"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)

	s.Empty(output.Category)
	s.Empty(output.Applied)
	s.Equal(0, s.score("steam-1"))
	s.Equal(0, s.score("steam-2"))
}

func (s *ScoringServiceTestSuite) TestUnclassifiedDeathDiscarded() {
	s.begin()

	output, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "steam-99", Name: "Bystander"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)

	s.Equal(models.CategoryUnclassified, output.Category)
	s.Empty(output.Applied)
}

func (s *ScoringServiceTestSuite) TestRedeemKitGoesNegative() {
	s.enroll("steam-1", "Player One")
	s.begin()

	s.mockNotifier.EXPECT().Notify(gomock.Any(), "steam-1", gomock.Any()).Return(nil)

	output, err := s.service.RedeemKit(s.ctx, &RedeemKitInput{
		PlayerID: "steam-1",
		KitName:  "builder",
		Cost:     3,
	})
	s.Require().NoError(err)

	s.Equal(-3, output.NewBalance)
	s.Equal(-3, s.score("steam-1"))
}

func (s *ScoringServiceTestSuite) TestRedeemKitUnknownParticipant() {
	s.begin()

	_, err := s.service.RedeemKit(s.ctx, &RedeemKitInput{
		PlayerID: "steam-404",
		KitName:  "builder",
		Cost:     3,
	})
	s.Require().ErrorIs(err, ErrUnknownParticipant)
}

func (s *ScoringServiceTestSuite) TestRedeemKitRequiresRunningTournament() {
	s.enroll("steam-1", "Player One")

	_, err := s.service.RedeemKit(s.ctx, &RedeemKitInput{
		PlayerID: "steam-1",
		KitName:  "builder",
		Cost:     3,
	})
	s.Require().ErrorIs(err, ErrNotRunning)
}

func (s *ScoringServiceTestSuite) TestAnnounceFailureDoesNotFailScoring() {
	s.enroll("steam-1", "Player One")
	s.enroll("steam-2", "Player Two")
	s.begin()

	s.mockNotifier.EXPECT().Announce(gomock.Any(), gomock.Any()).Return(fmt.Errorf("discord down"))

	output, err := s.service.RecordDeath(s.ctx, &RecordDeathInput{
		Event: &models.DeathEvent{
			Victim:     models.Actor{ID: "steam-2", Name: "Player Two"},
			Attacker:   &models.Actor{ID: "steam-1", Name: "Player One"},
			OccurredAt: s.testTime,
		},
	})
	s.Require().NoError(err)
	s.Equal(models.CategoryPlayerKill, output.Category)
	s.Equal(5, s.score("steam-1"))
}
