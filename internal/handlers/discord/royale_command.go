package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rustweek/royale/internal/models"
	"github.com/rustweek/royale/internal/rules"
	"github.com/rustweek/royale/internal/services/tournament"
)

// RoyaleCommand handles the /royale command
type RoyaleCommand struct {
	BaseCommand
	tournament tournament.Service
	rules      *rules.Table
}

// NewRoyaleCommand creates a new royale command handler
func NewRoyaleCommand(tournamentService tournament.Service, ruleTable *rules.Table) *RoyaleCommand {
	return &RoyaleCommand{
		BaseCommand: BaseCommand{
			Name:        "royale",
			Description: "Weekly PvP tournament commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "enroll",
					Description: "Join the tournament",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "withdraw",
					Description: "Leave the tournament",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "optin",
					Description: "Opt back in to scoring",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "optout",
					Description: "Opt out of scoring without leaving",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show the tournament phase and timing",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show the current standings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "rules",
					Description: "Show the score rule table",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start the tournament now (admin)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "End the running tournament (admin)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Change a runtime setting (admin)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "duration, join_cutoff, npc_kill_cap, animal_kill_cap, min_long_shot_distance",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "The new value",
							Required:    true,
						},
					},
				},
			},
		},
		tournament: tournamentService,
		rules:      ruleTable,
	}
}

// Handle processes a Discord interaction for the royale command
func (c *RoyaleCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	userID := i.Member.User.ID
	username := i.Member.User.Username
	if i.Member.Nick != "" {
		username = i.Member.Nick
	}

	var err error
	switch data.Options[0].Name {
	case "enroll":
		err = c.handleEnroll(s, i, userID, username)
	case "withdraw":
		err = c.handleWithdraw(s, i, userID)
	case "optin":
		err = c.handleOptOut(s, i, userID, false)
	case "optout":
		err = c.handleOptOut(s, i, userID, true)
	case "status":
		err = c.handleStatus(s, i)
	case "leaderboard":
		err = c.handleLeaderboard(s, i)
	case "rules":
		err = c.handleRules(s, i)
	case "start":
		err = c.handleStart(s, i)
	case "end":
		err = c.handleEnd(s, i)
	case "set":
		err = c.handleSet(s, i, data.Options[0].Options)
	default:
		err = errors.New("unknown subcommand")
	}

	return err
}

// handleEnroll handles the enroll subcommand
func (c *RoyaleCommand) handleEnroll(s *discordgo.Session, i *discordgo.InteractionCreate, userID, username string) error {
	ctx := context.Background()

	output, err := c.tournament.Enroll(ctx, &tournament.EnrollInput{
		PlayerID:   userID,
		PlayerName: username,
		Explicit:   true,
	})
	if err != nil {
		if errors.Is(err, tournament.ErrEnrollmentClosed) {
			return RespondWithError(s, i, "Too late to join this tournament. Catch the next one!")
		}
		log.Printf("Error enrolling %s: %v", userID, err)
		return RespondWithError(s, i, "Failed to enroll.")
	}

	if output.Created {
		return RespondWithMessage(s, i, fmt.Sprintf("%s joined the tournament!", username))
	}
	return RespondWithEphemeralMessage(s, i, "You're already enrolled.")
}

// handleWithdraw handles the withdraw subcommand
func (c *RoyaleCommand) handleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	ctx := context.Background()

	if err := c.tournament.Withdraw(ctx, &tournament.WithdrawInput{PlayerID: userID}); err != nil {
		log.Printf("Error withdrawing %s: %v", userID, err)
		return RespondWithError(s, i, "Failed to withdraw.")
	}

	return RespondWithEphemeralMessage(s, i, "You've withdrawn from the tournament.")
}

// handleOptOut toggles scoring eligibility
func (c *RoyaleCommand) handleOptOut(s *discordgo.Session, i *discordgo.InteractionCreate, userID string, optOut bool) error {
	ctx := context.Background()

	if err := c.tournament.SetOptOut(ctx, &tournament.SetOptOutInput{PlayerID: userID, OptOut: optOut}); err != nil {
		log.Printf("Error setting opt-out for %s: %v", userID, err)
		return RespondWithError(s, i, "Failed to update your scoring status.")
	}

	if optOut {
		return RespondWithEphemeralMessage(s, i, "You're opted out of scoring.")
	}
	return RespondWithEphemeralMessage(s, i, "You're back in. Good luck!")
}

// handleStatus handles the status subcommand
func (c *RoyaleCommand) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	status, err := c.tournament.Status(ctx)
	if err != nil {
		log.Printf("Error getting status: %v", err)
		return RespondWithError(s, i, "Failed to get tournament status.")
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Phase", Value: string(status.Phase), Inline: true},
		{Name: "Participants", Value: fmt.Sprintf("%d (%d active)", status.Participants, status.Active), Inline: true},
	}

	switch status.Phase {
	case models.PhaseRunning:
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Ends",
			Value:  fmt.Sprintf("%s (%s left)", status.EndTime.UTC().Format(time.RFC822), status.Remaining.Round(time.Second)),
			Inline: false,
		})
	case models.PhaseScheduled:
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Next start",
			Value:  fmt.Sprintf("%s (in %s)", status.StartTime.UTC().Format(time.RFC822), status.Remaining.Round(time.Second)),
			Inline: false,
		})
	}

	return RespondWithEmbed(s, i, "Tournament Status", "", fields)
}

// handleLeaderboard handles the leaderboard subcommand
func (c *RoyaleCommand) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()

	output, err := c.tournament.Leaderboard(ctx, &tournament.LeaderboardInput{Limit: 10})
	if err != nil {
		log.Printf("Error getting leaderboard: %v", err)
		return RespondWithError(s, i, "Failed to get the leaderboard.")
	}

	if len(output.Standings) == 0 {
		return RespondWithMessage(s, i, "Nobody is on the board yet.")
	}

	var b strings.Builder
	for _, standing := range output.Standings {
		fmt.Fprintf(&b, "%d. **%s** — %d points\n", standing.Rank, standing.PlayerName, standing.Score)
	}

	return RespondWithEmbed(s, i, "Leaderboard", b.String(), nil)
}

// handleRules handles the rules subcommand
func (c *RoyaleCommand) handleRules(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	all := c.rules.All()

	codes := make([]string, 0, len(all))
	for code := range all {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	var b strings.Builder
	for _, code := range codes {
		fmt.Fprintf(&b, "**%s**: %+d\n", code, all[models.RuleCode(code)])
	}

	return RespondWithEmbed(s, i, "Score Rules", b.String(), nil)
}

// handleStart handles the start subcommand
func (c *RoyaleCommand) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !isAdmin(i) {
		return RespondWithError(s, i, "Only admins can start the tournament.")
	}

	ctx := context.Background()

	if err := c.tournament.Start(ctx, &tournament.StartInput{Manual: true}); err != nil {
		if errors.Is(err, tournament.ErrAlreadyRunning) {
			return RespondWithError(s, i, "A tournament is already running.")
		}
		log.Printf("Error starting tournament: %v", err)
		return RespondWithError(s, i, "Failed to start the tournament.")
	}

	return RespondWithMessage(s, i, "Tournament started!")
}

// handleEnd handles the end subcommand
func (c *RoyaleCommand) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !isAdmin(i) {
		return RespondWithError(s, i, "Only admins can end the tournament.")
	}

	ctx := context.Background()

	if err := c.tournament.End(ctx, &tournament.EndInput{Manual: true}); err != nil {
		if errors.Is(err, tournament.ErrNotRunning) {
			return RespondWithError(s, i, "No tournament is running.")
		}
		log.Printf("Error ending tournament: %v", err)
		return RespondWithError(s, i, "Failed to end the tournament.")
	}

	return RespondWithMessage(s, i, "Tournament ended.")
}

// handleSet handles the set subcommand
func (c *RoyaleCommand) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if !isAdmin(i) {
		return RespondWithError(s, i, "Only admins can change settings.")
	}

	var key, value string
	for _, opt := range options {
		switch opt.Name {
		case "key":
			key = opt.StringValue()
		case "value":
			value = opt.StringValue()
		}
	}

	ctx := context.Background()

	if err := c.tournament.ApplySetting(ctx, &tournament.ApplySettingInput{Key: key, Value: value}); err != nil {
		if errors.Is(err, tournament.ErrUnknownSetting) {
			return RespondWithError(s, i, fmt.Sprintf("Unknown setting %q.", key))
		}
		if errors.Is(err, tournament.ErrInvalidSettingValue) {
			return RespondWithError(s, i, fmt.Sprintf("Invalid value %q for %s.", value, key))
		}
		log.Printf("Error applying setting %s=%s: %v", key, value, err)
		return RespondWithError(s, i, "Failed to apply the setting.")
	}

	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Set %s to %s.", key, value))
}

// isAdmin reports whether the caller has administrator permission in
// the guild
func isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}
