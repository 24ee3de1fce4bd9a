package attribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rustweek/royale/internal/common/clock/mocks"
	"github.com/rustweek/royale/internal/models"
)

// fakeRoster is a fixed active-participant set
type fakeRoster struct {
	active map[string]bool
}

func (r *fakeRoster) IsActive(playerID string) bool {
	return r.active[playerID]
}

type AttributionEngineTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *mocks.MockClock
	roster    *fakeRoster
	engine    *Engine
	testTime  time.Time

	p1 models.Actor
	p2 models.Actor
	npc models.Actor
}

func (s *AttributionEngineTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.mockCtrl)

	s.roster = &fakeRoster{active: map[string]bool{
		"steam-1": true,
		"steam-2": true,
	}}

	s.testTime = time.Date(2026, 8, 7, 18, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	engine, err := New(&Config{
		Roster:              s.roster,
		Clock:               s.mockClock,
		MinLongShotDistance: 150,
	})
	s.Require().NoError(err)
	s.engine = engine

	s.p1 = models.Actor{ID: "steam-1", Name: "Player One"}
	s.p2 = models.Actor{ID: "steam-2", Name: "Player Two"}
	s.npc = models.Actor{ID: "npc-77", Name: "Scientist", NPC: true}
}

func (s *AttributionEngineTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAttributionEngineTestSuite(t *testing.T) {
	suite.Run(t, new(AttributionEngineTestSuite))
}

func (s *AttributionEngineTestSuite) TestPlayerKill() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p2,
		Attacker:   &s.p1,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryPlayerKill, result.Category)
	s.Require().Len(result.Awards, 2)

	// DEAD lands on the victim before KILL lands on the attacker
	s.Equal("steam-2", result.Awards[0].PlayerID)
	s.Equal(models.RuleCodeDead, result.Awards[0].Code)
	s.Equal("steam-1", result.Awards[1].PlayerID)
	s.Equal(models.RuleCodeKill, result.Awards[1].Code)
}

func (s *AttributionEngineTestSuite) TestVehicleKillBeatsPlayerKill() {
	// Even with a participant attacker attached, a bradley death is a
	// BRUH for the victim: the first matching rule wins
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p2,
		Attacker:   &s.p1,
		Entity:     &models.EntityRef{ID: "ent-9", TypeTag: "bradleyapc"},
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryVehicleDeath, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal("steam-2", result.Awards[0].PlayerID)
	s.Equal(models.RuleCodeBruh, result.Awards[0].Code)
}

func (s *AttributionEngineTestSuite) TestNPCAttackerIsBruh() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p1,
		Attacker:   &s.npc,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryNPCDeath, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal(models.RuleCodeBruh, result.Awards[0].Code)
}

func (s *AttributionEngineTestSuite) TestUnownedEntityWithNoAttackerIsBruh() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p1,
		Entity:     &models.EntityRef{ID: "ent-3", TypeTag: "barricade"},
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryNPCDeath, result.Category)
}

func (s *AttributionEngineTestSuite) TestSelfOwnedTrap() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p1,
		Entity:     &models.EntityRef{ID: "ent-4", TypeTag: "autoturret", OwnerID: "steam-1"},
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryTrapSelf, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal("steam-1", result.Awards[0].PlayerID)
	s.Equal(models.RuleCodeBruh, result.Awards[0].Code)
}

func (s *AttributionEngineTestSuite) TestParticipantOwnedTrapScoresOwner() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p1,
		Entity:     &models.EntityRef{ID: "ent-4", TypeTag: "guntrap", OwnerID: "steam-2"},
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryTrapKill, result.Category)
	s.Require().Len(result.Awards, 2)
	s.Equal(models.RuleCodeDead, result.Awards[0].Code)
	s.Equal("steam-2", result.Awards[1].PlayerID)
	s.Equal(models.RuleCodeKill, result.Awards[1].Code)
}

func (s *AttributionEngineTestSuite) TestNonParticipantTrapIsJoke() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p1,
		Attacker:   &models.Actor{ID: "steam-99", Name: "Stranger"},
		Entity:     &models.EntityRef{ID: "ent-4", TypeTag: "landmine", OwnerID: "steam-99"},
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryTrapHazard, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal(models.RuleCodeJoke, result.Awards[0].Code)
}

func (s *AttributionEngineTestSuite) TestNPCKillIsCapGated() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.npc,
		Attacker:   &s.p1,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryNPCKill, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal("steam-1", result.Awards[0].PlayerID)
	s.Equal(models.RuleCodeNPC, result.Awards[0].Code)
	s.Equal(models.KillKindNPC, result.Awards[0].CapKind)
}

func (s *AttributionEngineTestSuite) TestNPCKilledByParticipantTrap() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.npc,
		Entity:     &models.EntityRef{ID: "ent-4", TypeTag: "autoturret", OwnerID: "steam-2"},
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryTrapNPCKill, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal("steam-2", result.Awards[0].PlayerID)
	s.Equal(models.KillKindNPC, result.Awards[0].CapKind)
}

func (s *AttributionEngineTestSuite) TestSelfInflicted() {
	self := s.p1
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p1,
		Attacker:   &self,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategorySelfInflicted, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal(models.RuleCodeJoke, result.Awards[0].Code)
}

func (s *AttributionEngineTestSuite) TestInactiveVictimIsUnclassified() {
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     models.Actor{ID: "steam-99", Name: "Stranger"},
		Attacker:   &s.p1,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryUnclassified, result.Category)
	s.Empty(result.Awards)
}

func (s *AttributionEngineTestSuite) TestAttackerBackfillWithinWindow() {
	s.engine.RecordDamage(&models.DamageEvent{
		Victim:     s.p2,
		Attacker:   s.p1,
		OccurredAt: s.testTime.Add(-30 * time.Second),
	})

	// The host reports the victim as their own attacker (fall damage)
	self := s.p2
	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p2,
		Attacker:   &self,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryPlayerKill, result.Category)
	s.Equal("steam-1", result.Awards[1].PlayerID)
}

func (s *AttributionEngineTestSuite) TestAttackerBackfillExpired() {
	s.engine.RecordDamage(&models.DamageEvent{
		Victim:     s.p2,
		Attacker:   s.p1,
		OccurredAt: s.testTime.Add(-31 * time.Second),
	})

	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p2,
		OccurredAt: s.testTime,
	})

	// A 31 second old record must not be substituted
	s.Require().NotNil(result)
	s.Equal(models.CategorySelfInflicted, result.Category)
}

func (s *AttributionEngineTestSuite) TestMostRecentHitWins() {
	s.engine.RecordDamage(&models.DamageEvent{
		Victim:     s.p2,
		Attacker:   models.Actor{ID: "steam-99", Name: "Stranger"},
		OccurredAt: s.testTime.Add(-20 * time.Second),
	})
	s.engine.RecordDamage(&models.DamageEvent{
		Victim:     s.p2,
		Attacker:   s.p1,
		OccurredAt: s.testTime.Add(-5 * time.Second),
	})

	result := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim:     s.p2,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryPlayerKill, result.Category)
	s.Equal("steam-1", result.Awards[1].PlayerID)
}

func (s *AttributionEngineTestSuite) TestDuplicateDeathSuppressed() {
	event := &models.DeathEvent{
		Victim:     s.p2,
		Attacker:   &s.p1,
		OccurredAt: s.testTime,
	}

	first := s.engine.ClassifyDeath(event)
	s.Require().NotNil(first)

	// The host fires a second notification for the same kill
	second := s.engine.ClassifyDeath(event)
	s.Nil(second)
}

func (s *AttributionEngineTestSuite) TestDeathAfterSuppressionWindowClassifies() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()
	steppingClock := mocks.NewMockClock(ctrl)

	first := steppingClock.EXPECT().Now().Return(s.testTime).Times(1)
	steppingClock.EXPECT().Now().Return(s.testTime.Add(6 * time.Second)).After(first).AnyTimes()

	engine, err := New(&Config{Roster: s.roster, Clock: steppingClock})
	s.Require().NoError(err)

	event := &models.DeathEvent{Victim: s.p2, Attacker: &s.p1, OccurredAt: s.testTime}

	s.Require().NotNil(engine.ClassifyDeath(event))
	s.Require().NotNil(engine.ClassifyDeath(event))
}

func (s *AttributionEngineTestSuite) TestVehicleDestroyedByParticipant() {
	result := s.engine.ClassifyEntityDeath(&models.EntityDeathEvent{
		Entity:     models.EntityRef{ID: "ent-9", TypeTag: "patrolhelicopter"},
		Killer:     &s.p1,
		OccurredAt: s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryVehicleDestroyed, result.Category)
	s.Require().Len(result.Awards, 1)
	s.Equal("steam-1", result.Awards[0].PlayerID)
	s.Equal(models.RuleCodeEnt, result.Awards[0].Code)
}

func (s *AttributionEngineTestSuite) TestLongShotStrictlyOverThreshold() {
	event := &models.EntityDeathEvent{
		Entity:         models.EntityRef{ID: "ent-5", TypeTag: "stag"},
		Killer:         &s.p1,
		Weapon:         models.WeaponRef{Name: "bolt.rifle", Class: models.WeaponClassProjectile},
		KillerPosition: models.Position{X: 0, Y: 0, Z: 0},
		EntityPosition: models.Position{X: 150, Y: 0, Z: 0},
		OccurredAt:     s.testTime,
	}

	// Exactly at the threshold does not qualify
	result := s.engine.ClassifyEntityDeath(event)
	s.Require().NotNil(result)
	s.Equal(models.CategoryUnclassified, result.Category)

	event.EntityPosition.X = 150.5
	result = s.engine.ClassifyEntityDeath(event)
	s.Require().NotNil(result)
	s.Equal(models.CategoryLongShot, result.Category)
	s.Equal(models.RuleCodeWhy, result.Awards[0].Code)
	s.Equal(models.KillKindAnimal, result.Awards[0].CapKind)
}

func (s *AttributionEngineTestSuite) TestLongShotRequiresProjectileWeapon() {
	result := s.engine.ClassifyEntityDeath(&models.EntityDeathEvent{
		Entity:         models.EntityRef{ID: "ent-5", TypeTag: "bear"},
		Killer:         &s.p1,
		Weapon:         models.WeaponRef{Name: "machete", Class: models.WeaponClassMelee},
		EntityPosition: models.Position{X: 500},
		OccurredAt:     s.testTime,
	})

	s.Require().NotNil(result)
	s.Equal(models.CategoryUnclassified, result.Category)
}

func (s *AttributionEngineTestSuite) TestEntityDeathNotSubjectToVictimSuppression() {
	// A player death and a wildlife long shot in the same window must
	// both classify
	death := s.engine.ClassifyDeath(&models.DeathEvent{
		Victim: s.p2, Attacker: &s.p1, OccurredAt: s.testTime,
	})
	s.Require().NotNil(death)

	shot := s.engine.ClassifyEntityDeath(&models.EntityDeathEvent{
		Entity:         models.EntityRef{ID: "ent-5", TypeTag: "wolf"},
		Killer:         &s.p1,
		Weapon:         models.WeaponRef{Name: "ak", Class: models.WeaponClassProjectile},
		EntityPosition: models.Position{X: 200},
		OccurredAt:     s.testTime,
	})
	s.Require().NotNil(shot)
	s.Equal(models.CategoryLongShot, shot.Category)
}
