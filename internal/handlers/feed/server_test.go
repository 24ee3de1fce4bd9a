package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustweek/royale/internal/models"
	"github.com/rustweek/royale/internal/services/scoring"
)

// fakeScoring records dispatched events
type fakeScoring struct {
	damage      []*models.DamageEvent
	deaths      []*models.DeathEvent
	entityDeath []*models.EntityDeathEvent
	kits        []*scoring.RedeemKitInput
}

func (f *fakeScoring) BeginTournament(ctx context.Context, input *scoring.BeginTournamentInput) error {
	return nil
}

func (f *fakeScoring) EndTournament(ctx context.Context) error { return nil }

func (f *fakeScoring) RecordDamage(ctx context.Context, input *scoring.RecordDamageInput) error {
	f.damage = append(f.damage, input.Event)
	return nil
}

func (f *fakeScoring) RecordDeath(ctx context.Context, input *scoring.RecordDeathInput) (*scoring.RecordDeathOutput, error) {
	f.deaths = append(f.deaths, input.Event)
	return &scoring.RecordDeathOutput{}, nil
}

func (f *fakeScoring) RecordEntityDeath(ctx context.Context, input *scoring.RecordEntityDeathInput) (*scoring.RecordEntityDeathOutput, error) {
	f.entityDeath = append(f.entityDeath, input.Event)
	return &scoring.RecordEntityDeathOutput{}, nil
}

func (f *fakeScoring) RedeemKit(ctx context.Context, input *scoring.RedeemKitInput) (*scoring.RedeemKitOutput, error) {
	f.kits = append(f.kits, input)
	return &scoring.RedeemKitOutput{}, nil
}

func (f *fakeScoring) SetNPCKillCap(cap int) {}

func (f *fakeScoring) SetAnimalKillCap(cap int) {}

func (f *fakeScoring) SetMinLongShotDistance(distance float64) {}

func newTestServer(t *testing.T) (*Server, *fakeScoring) {
	fake := &fakeScoring{}
	server, err := NewServer(&Config{Scoring: fake, AuthToken: "secret"})
	require.NoError(t, err)
	return server, fake
}

func TestDispatchDamage(t *testing.T) {
	server, fake := newTestServer(t)

	frame := `{
		"type": "damage",
		"payload": {
			"victim": {"id": "steam-2", "name": "Player Two"},
			"attacker": {"id": "steam-1", "name": "Player One"},
			"occurred_at": "2026-08-07T18:00:00Z"
		}
	}`

	err := server.dispatch(context.Background(), []byte(frame))
	require.NoError(t, err)

	require.Len(t, fake.damage, 1)
	assert.Equal(t, "steam-2", fake.damage[0].Victim.ID)
	assert.Equal(t, "steam-1", fake.damage[0].Attacker.ID)
	assert.False(t, fake.damage[0].OccurredAt.IsZero())
}

func TestDispatchDeathWithEntity(t *testing.T) {
	server, fake := newTestServer(t)

	frame := `{
		"type": "death",
		"payload": {
			"victim": {"id": "steam-2", "name": "Player Two"},
			"entity": {"id": "ent-9", "type": "autoturret", "owner_id": "steam-1"}
		}
	}`

	err := server.dispatch(context.Background(), []byte(frame))
	require.NoError(t, err)

	require.Len(t, fake.deaths, 1)
	event := fake.deaths[0]
	assert.Equal(t, "steam-2", event.Victim.ID)
	assert.Nil(t, event.Attacker)
	require.NotNil(t, event.Entity)
	assert.Equal(t, "autoturret", event.Entity.TypeTag)
	assert.Equal(t, "steam-1", event.Entity.OwnerID)
}

func TestDispatchEntityDeath(t *testing.T) {
	server, fake := newTestServer(t)

	frame := `{
		"type": "entity_death",
		"payload": {
			"entity": {"id": "animal-3", "type": "bear"},
			"killer": {"id": "steam-1", "name": "Player One"},
			"weapon": {"name": "bolt rifle", "class": "projectile"},
			"killer_position": {"x": 0, "y": 0, "z": 0},
			"entity_position": {"x": 200, "y": 0, "z": 0}
		}
	}`

	err := server.dispatch(context.Background(), []byte(frame))
	require.NoError(t, err)

	require.Len(t, fake.entityDeath, 1)
	event := fake.entityDeath[0]
	assert.Equal(t, "bear", event.Entity.TypeTag)
	assert.Equal(t, models.WeaponClassProjectile, event.Weapon.Class)
	assert.InDelta(t, 200.0, event.KillerPosition.DistanceTo(event.EntityPosition), 0.001)
}

func TestDispatchKitRedeem(t *testing.T) {
	server, fake := newTestServer(t)

	frame := `{
		"type": "kit_redeem",
		"payload": {"player_id": "steam-1", "kit_name": "builder", "cost": 3}
	}`

	err := server.dispatch(context.Background(), []byte(frame))
	require.NoError(t, err)

	require.Len(t, fake.kits, 1)
	assert.Equal(t, "steam-1", fake.kits[0].PlayerID)
	assert.Equal(t, "builder", fake.kits[0].KitName)
	assert.Equal(t, 3, fake.kits[0].Cost)
}

func TestDispatchMalformedFrame(t *testing.T) {
	server, fake := newTestServer(t)

	assert.Error(t, server.dispatch(context.Background(), []byte(`not json`)))
	assert.Error(t, server.dispatch(context.Background(), []byte(`{"type":"teleport","payload":{}}`)))
	assert.Error(t, server.dispatch(context.Background(), []byte(`{"type":"death","payload":{"victim":{"name":"NoID"}}}`)))

	assert.Empty(t, fake.damage)
	assert.Empty(t, fake.deaths)
	assert.Empty(t, fake.entityDeath)
}
