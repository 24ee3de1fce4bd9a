package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rustweek/royale/internal/models"
)

// Event types accepted on the feed
const (
	eventTypeDamage      = "damage"
	eventTypeDeath       = "death"
	eventTypeEntityDeath = "entity_death"
	eventTypeKitRedeem   = "kit_redeem"
)

// envelope wraps every frame the game plugin sends
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type actorPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	NPC  bool   `json:"npc"`
}

type entityPayload struct {
	ID      string `json:"id"`
	TypeTag string `json:"type"`
	OwnerID string `json:"owner_id"`
}

type weaponPayload struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type positionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type damagePayload struct {
	Victim     actorPayload `json:"victim"`
	Attacker   actorPayload `json:"attacker"`
	OccurredAt time.Time    `json:"occurred_at"`
}

type deathPayload struct {
	Victim     actorPayload   `json:"victim"`
	Attacker   *actorPayload  `json:"attacker"`
	Entity     *entityPayload `json:"entity"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type kitRedeemPayload struct {
	PlayerID string `json:"player_id"`
	KitName  string `json:"kit_name"`
	Cost     int    `json:"cost"`
}

type entityDeathPayload struct {
	Entity         entityPayload   `json:"entity"`
	Killer         *actorPayload   `json:"killer"`
	Weapon         weaponPayload   `json:"weapon"`
	KillerPosition positionPayload `json:"killer_position"`
	EntityPosition positionPayload `json:"entity_position"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func (p actorPayload) toModel() models.Actor {
	return models.Actor{ID: p.ID, Name: p.Name, NPC: p.NPC}
}

func (p entityPayload) toModel() models.EntityRef {
	return models.EntityRef{ID: p.ID, TypeTag: p.TypeTag, OwnerID: p.OwnerID}
}

func (p positionPayload) toModel() models.Position {
	return models.Position{X: p.X, Y: p.Y, Z: p.Z}
}

func decodeDamage(payload json.RawMessage) (*models.DamageEvent, error) {
	var p damagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode damage payload: %w", err)
	}

	if p.Victim.ID == "" {
		return nil, fmt.Errorf("damage payload missing victim id")
	}

	return &models.DamageEvent{
		Victim:     p.Victim.toModel(),
		Attacker:   p.Attacker.toModel(),
		OccurredAt: p.OccurredAt,
	}, nil
}

func decodeDeath(payload json.RawMessage) (*models.DeathEvent, error) {
	var p deathPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode death payload: %w", err)
	}

	if p.Victim.ID == "" {
		return nil, fmt.Errorf("death payload missing victim id")
	}

	event := &models.DeathEvent{
		Victim:     p.Victim.toModel(),
		OccurredAt: p.OccurredAt,
	}

	if p.Attacker != nil {
		attacker := p.Attacker.toModel()
		event.Attacker = &attacker
	}

	if p.Entity != nil {
		entity := p.Entity.toModel()
		event.Entity = &entity
	}

	return event, nil
}

func decodeKitRedeem(payload json.RawMessage) (*kitRedeemPayload, error) {
	var p kitRedeemPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode kit redeem payload: %w", err)
	}

	if p.PlayerID == "" {
		return nil, fmt.Errorf("kit redeem payload missing player id")
	}

	return &p, nil
}

func decodeEntityDeath(payload json.RawMessage) (*models.EntityDeathEvent, error) {
	var p entityDeathPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode entity death payload: %w", err)
	}

	if p.Entity.TypeTag == "" {
		return nil, fmt.Errorf("entity death payload missing entity type")
	}

	event := &models.EntityDeathEvent{
		Entity:         p.Entity.toModel(),
		Weapon:         models.WeaponRef{Name: p.Weapon.Name, Class: models.WeaponClass(p.Weapon.Class)},
		KillerPosition: p.KillerPosition.toModel(),
		EntityPosition: p.EntityPosition.toModel(),
		OccurredAt:     p.OccurredAt,
	}

	if p.Killer != nil {
		killer := p.Killer.toModel()
		event.Killer = &killer
	}

	return event, nil
}
