package attribution

import (
	"strings"

	"github.com/rustweek/royale/internal/models"
)

// animalTags are the wildlife types eligible for the long-shot rule
var animalTags = map[string]struct{}{
	"bear":      {},
	"polarbear": {},
	"boar":      {},
	"stag":      {},
	"wolf":      {},
	"chicken":   {},
	"horse":     {},
	"shark":     {},
}

func isVehicleTag(tag string) bool {
	lower := strings.ToLower(tag)
	return strings.Contains(lower, "helicopter") || strings.Contains(lower, "bradley")
}

func isAnimalTag(tag string) bool {
	_, ok := animalTags[strings.ToLower(tag)]
	return ok
}

func (c *deathContext) victimIsActivePlayer() bool {
	return !c.event.Victim.NPC && c.roster.IsActive(c.event.Victim.ID)
}

func (c *deathContext) attackerIsActivePlayer() bool {
	return c.attacker != nil && !c.attacker.NPC && c.roster.IsActive(c.attacker.ID)
}

// vehicleDeathRule: a patrol helicopter or bradley killed a participant
func vehicleDeathRule(c *deathContext) *models.Classification {
	entity := c.event.Entity
	if entity == nil || !isVehicleTag(entity.TypeTag) {
		return nil
	}
	if !c.victimIsActivePlayer() {
		return nil
	}

	return &models.Classification{
		Category:   models.CategoryVehicleDeath,
		VictimID:   c.event.Victim.ID,
		VictimName: c.event.Victim.Name,
		Awards: []models.Award{
			{PlayerID: c.event.Victim.ID, PlayerName: c.event.Victim.Name, Code: models.RuleCodeBruh},
		},
	}
}

// npcCauseRule: an NPC actor, or an unowned entity with no human
// attacker, killed a participant
func npcCauseRule(c *deathContext) *models.Classification {
	if !c.victimIsActivePlayer() {
		return nil
	}

	npcAttacker := c.attacker != nil && c.attacker.NPC
	unownedEntity := c.event.Entity != nil && c.event.Entity.OwnerID == "" && c.attacker == nil

	if !npcAttacker && !unownedEntity {
		return nil
	}

	return &models.Classification{
		Category:   models.CategoryNPCDeath,
		VictimID:   c.event.Victim.ID,
		VictimName: c.event.Victim.Name,
		Awards: []models.Award{
			{PlayerID: c.event.Victim.ID, PlayerName: c.event.Victim.Name, Code: models.RuleCodeBruh},
		},
	}
}

// playerKillRule: both sides are active participants. DEAD lands on the
// victim before KILL lands on the attacker; neither is conditional on
// the other.
func playerKillRule(c *deathContext) *models.Classification {
	if !c.victimIsActivePlayer() || !c.attackerIsActivePlayer() {
		return nil
	}
	if c.attacker.ID == c.event.Victim.ID {
		return nil
	}

	return &models.Classification{
		Category:   models.CategoryPlayerKill,
		VictimID:   c.event.Victim.ID,
		VictimName: c.event.Victim.Name,
		Awards: []models.Award{
			{PlayerID: c.event.Victim.ID, PlayerName: c.event.Victim.Name, Code: models.RuleCodeDead},
			{PlayerID: c.attacker.ID, PlayerName: c.attacker.Name, Code: models.RuleCodeKill},
		},
	}
}

// trapRule: a deployed entity killed a participant. Attribution follows
// the owner: self-owned traps are a BRUH, another participant's trap
// scores like a kill for the owner, anything else is a JOKE hazard.
func trapRule(c *deathContext) *models.Classification {
	entity := c.event.Entity
	if entity == nil || !c.victimIsActivePlayer() {
		return nil
	}

	victim := c.event.Victim

	if entity.OwnerID == victim.ID {
		return &models.Classification{
			Category:   models.CategoryTrapSelf,
			VictimID:   victim.ID,
			VictimName: victim.Name,
			Awards: []models.Award{
				{PlayerID: victim.ID, PlayerName: victim.Name, Code: models.RuleCodeBruh},
			},
		}
	}

	if entity.OwnerID != "" && c.roster.IsActive(entity.OwnerID) {
		return &models.Classification{
			Category:   models.CategoryTrapKill,
			VictimID:   victim.ID,
			VictimName: victim.Name,
			Awards: []models.Award{
				{PlayerID: victim.ID, PlayerName: victim.Name, Code: models.RuleCodeDead},
				{PlayerID: entity.OwnerID, Code: models.RuleCodeKill},
			},
		}
	}

	return &models.Classification{
		Category:   models.CategoryTrapHazard,
		VictimID:   victim.ID,
		VictimName: victim.Name,
		Awards: []models.Award{
			{PlayerID: victim.ID, PlayerName: victim.Name, Code: models.RuleCodeJoke},
		},
	}
}

// npcKillRule: a participant killed an NPC directly; gated by the NPC
// kill cap downstream
func npcKillRule(c *deathContext) *models.Classification {
	if !c.event.Victim.NPC || !c.attackerIsActivePlayer() {
		return nil
	}

	return &models.Classification{
		Category:   models.CategoryNPCKill,
		VictimID:   c.event.Victim.ID,
		VictimName: c.event.Victim.Name,
		Awards: []models.Award{
			{PlayerID: c.attacker.ID, PlayerName: c.attacker.Name, Code: models.RuleCodeNPC, CapKind: models.KillKindNPC},
		},
	}
}

// npcTrapKillRule: a participant's trap killed an NPC
func npcTrapKillRule(c *deathContext) *models.Classification {
	entity := c.event.Entity
	if !c.event.Victim.NPC || entity == nil || entity.OwnerID == "" {
		return nil
	}
	if !c.roster.IsActive(entity.OwnerID) {
		return nil
	}

	return &models.Classification{
		Category:   models.CategoryTrapNPCKill,
		VictimID:   c.event.Victim.ID,
		VictimName: c.event.Victim.Name,
		Awards: []models.Award{
			{PlayerID: entity.OwnerID, Code: models.RuleCodeNPC, CapKind: models.KillKindNPC},
		},
	}
}

// selfInflictedRule: the resolved attacker is the victim, or nobody at
// all
func selfInflictedRule(c *deathContext) *models.Classification {
	if !c.victimIsActivePlayer() {
		return nil
	}
	if c.attacker != nil && c.attacker.ID != c.event.Victim.ID {
		return nil
	}

	return &models.Classification{
		Category:   models.CategorySelfInflicted,
		VictimID:   c.event.Victim.ID,
		VictimName: c.event.Victim.Name,
		Awards: []models.Award{
			{PlayerID: c.event.Victim.ID, PlayerName: c.event.Victim.Name, Code: models.RuleCodeJoke},
		},
	}
}
