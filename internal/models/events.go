package models

import (
	"math"
	"time"
)

// Actor is a combatant referenced by a game event
type Actor struct {
	// ID is the stable player identifier, or an entity id for NPCs
	ID string

	// Name is the display name reported by the game host
	Name string

	// NPC indicates a computer-controlled actor
	NPC bool
}

// EntityRef describes a damaging or dying entity (trap, turret, vehicle)
type EntityRef struct {
	// ID is the network id of the entity
	ID string

	// TypeTag is the host's short type name, e.g. "autoturret",
	// "patrolhelicopter", "bradleyapc", "bear"
	TypeTag string

	// OwnerID is the player that deployed the entity; empty when unowned
	OwnerID string
}

// WeaponClass is the broad class of a weapon reported with a kill
type WeaponClass string

const (
	WeaponClassProjectile WeaponClass = "projectile"
	WeaponClassMelee      WeaponClass = "melee"
	WeaponClassExplosive  WeaponClass = "explosive"
	WeaponClassUnknown    WeaponClass = "unknown"
)

// WeaponRef describes the weapon involved in a kill
type WeaponRef struct {
	Name  string
	Class WeaponClass
}

// Position is a world-space location
type Position struct {
	X float64
	Y float64
	Z float64
}

// DistanceTo returns the straight-line distance to another position
func (p Position) DistanceTo(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// DamageEvent is a non-terminal hit used to backfill attackers on
// indirectly attributed deaths
type DamageEvent struct {
	Victim     Actor
	Attacker   Actor
	OccurredAt time.Time
}

// DeathEvent is a terminal death notification for a player or NPC
type DeathEvent struct {
	// Victim is the actor that died
	Victim Actor

	// Attacker is the immediate attacker; nil when the host could not
	// attribute one, and sometimes the victim itself on indirect deaths
	Attacker *Actor

	// Entity is the damaging entity, when one was involved
	Entity *EntityRef

	// OccurredAt is the host's game-relative timestamp
	OccurredAt time.Time
}

// EntityDeathEvent is fired when a non-player entity is destroyed
type EntityDeathEvent struct {
	Entity EntityRef

	// Killer is the actor credited by the host, if any
	Killer *Actor

	Weapon WeaponRef

	// KillerPosition and EntityPosition locate the shot for the
	// long-distance wildlife rule
	KillerPosition Position
	EntityPosition Position

	OccurredAt time.Time
}
