package messaging

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rustweek/royale/internal/models"
)

// service implements the Service interface
type service struct {
	// Random number generator for selecting flavor lines
	rand *rand.Rand
}

// ServiceConfig holds configuration for the messaging service
type ServiceConfig struct {
	// Optional seed for deterministic tests
	Seed int64
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	var seed int64
	if config != nil && config.Seed != 0 {
		seed = config.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &service{
		rand: rand.New(rand.NewSource(seed)),
	}, nil
}

// killFeedTemplates maps a category to its flavor lines. Placeholders:
// %[1]s victim, %[2]s credited player, %[3]d delta, %[4]d new score.
var killFeedTemplates = map[models.Category][]string{
	models.CategoryPlayerKill: {
		"%[2]s slaughtered %[1]s (%+[3]d, now %[4]d)",
		"%[2]s sent %[1]s back to the beach (%+[3]d, now %[4]d)",
		"%[1]s got outplayed by %[2]s (%+[3]d, now %[4]d)",
	},
	models.CategoryVehicleDeath: {
		"%[1]s lost an argument with armor plating (%+[3]d, now %[4]d)",
		"%[1]s was deleted by a war machine (%+[3]d, now %[4]d)",
	},
	models.CategoryVehicleDestroyed: {
		"%[2]s brought down the big one (%+[3]d, now %[4]d)",
		"%[2]s turned a war machine into scrap (%+[3]d, now %[4]d)",
	},
	models.CategoryNPCDeath: {
		"%[1]s was schooled by the locals (%+[3]d, now %[4]d)",
		"%[1]s fell to an NPC. Bruh. (%+[3]d, now %[4]d)",
	},
	models.CategoryTrapSelf: {
		"%[1]s was killed by their own trap (%+[3]d, now %[4]d)",
		"%[1]s forgot where they put that turret (%+[3]d, now %[4]d)",
	},
	models.CategoryTrapKill: {
		"%[2]s's trap claimed %[1]s (%+[3]d, now %[4]d)",
		"%[1]s walked right into %[2]s's handiwork (%+[3]d, now %[4]d)",
	},
	models.CategoryTrapHazard: {
		"%[1]s died to a stray hazard (%+[3]d, now %[4]d)",
	},
	models.CategoryNPCKill: {
		"%[2]s bagged an NPC (%+[3]d, now %[4]d)",
	},
	models.CategoryTrapNPCKill: {
		"%[2]s's trap bagged an NPC (%+[3]d, now %[4]d)",
	},
	models.CategorySelfInflicted: {
		"%[1]s died of natural selection (%+[3]d, now %[4]d)",
		"%[1]s needed no enemies (%+[3]d, now %[4]d)",
	},
	models.CategoryLongShot: {
		"%[2]s hit wildlife from another postcode (%+[3]d, now %[4]d)",
	},
}

// GetKillFeedMessage returns a broadcast line for a scored event
func (s *service) GetKillFeedMessage(ctx context.Context, input *GetKillFeedMessageInput) (*GetKillFeedMessageOutput, error) {
	templates, ok := killFeedTemplates[input.Category]
	if !ok || len(templates) == 0 {
		return &GetKillFeedMessageOutput{
			Message: fmt.Sprintf("%s: %s (%+d, now %d)", input.Category, input.VictimName, input.Delta, input.NewScore),
		}, nil
	}

	template := templates[s.rand.Intn(len(templates))]

	return &GetKillFeedMessageOutput{
		Message: fmt.Sprintf(template, input.VictimName, input.CreditedName, input.Delta, input.NewScore),
	}, nil
}

// GetStartMessage returns the tournament-start announcement
func (s *service) GetStartMessage(ctx context.Context, input *GetStartMessageInput) (*GetStartMessageOutput, error) {
	return &GetStartMessageOutput{
		Message: fmt.Sprintf(
			"The tournament is LIVE with %d participants! Scores are reset. Fighting ends %s.",
			input.Participants,
			input.EndTime.UTC().Format("Mon Jan 2 15:04 MST"),
		),
	}, nil
}

// GetEndMessage returns the leaderboard and top-group summary
func (s *service) GetEndMessage(ctx context.Context, input *GetEndMessageInput) (*GetEndMessageOutput, error) {
	var b strings.Builder

	b.WriteString("The tournament is over! Final standings:\n")

	for _, standing := range input.Standings {
		fmt.Fprintf(&b, "%d. %s — %d points\n", standing.Rank, standing.PlayerName, standing.Score)
	}

	if len(input.Standings) == 0 {
		b.WriteString("(nobody scored)\n")
	}

	if input.TopGroup != "" {
		fmt.Fprintf(&b, "Top clan: %s with %d combined points", input.TopGroup, input.TopGroupScore)
	}

	return &GetEndMessageOutput{
		Message: strings.TrimRight(b.String(), "\n"),
	}, nil
}

// GetScheduledMessage returns the next-start announcement
func (s *service) GetScheduledMessage(ctx context.Context, input *GetScheduledMessageInput) (*GetScheduledMessageOutput, error) {
	return &GetScheduledMessageOutput{
		Message: fmt.Sprintf(
			"Next tournament starts %s. Enroll now!",
			input.StartTime.UTC().Format("Mon Jan 2 15:04 MST"),
		),
	}, nil
}

// GetCountdownMessage returns a threshold countdown announcement
func (s *service) GetCountdownMessage(ctx context.Context, input *GetCountdownMessageInput) (*GetCountdownMessageOutput, error) {
	action := "starts"
	if input.Phase == models.PhaseEnded {
		action = "ends"
	}

	return &GetCountdownMessageOutput{
		Message: fmt.Sprintf("Tournament %s in %s!", action, formatDuration(input.Remaining)),
	}, nil
}

// formatDuration renders 600s as "10m" and 45s as "45s"
func formatDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", d/time.Hour)
	}
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
