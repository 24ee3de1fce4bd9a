package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Notifier delivers tournament messages over Discord: broadcasts to the
// announce channel, directed messages as DMs. Implements
// messaging.Notifier.
type Notifier struct {
	session   *discordgo.Session
	channelID string
}

// NotifierConfig holds the notifier dependencies
type NotifierConfig struct {
	// Session is an open Discord connection
	Session *discordgo.Session

	// AnnounceChannelID is where broadcasts land
	AnnounceChannelID string
}

// NewNotifier creates a new Discord notifier
func NewNotifier(cfg *NotifierConfig) (*Notifier, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Session == nil {
		return nil, errors.New("session cannot be nil")
	}

	if cfg.AnnounceChannelID == "" {
		return nil, errors.New("announce channel ID cannot be empty")
	}

	return &Notifier{
		session:   cfg.Session,
		channelID: cfg.AnnounceChannelID,
	}, nil
}

// Announce broadcasts a message to the announce channel
func (n *Notifier) Announce(ctx context.Context, message string) error {
	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		return fmt.Errorf("failed to send announcement: %w", err)
	}
	return nil
}

// Notify sends a directed message to one player as a DM
func (n *Notifier) Notify(ctx context.Context, playerID string, message string) error {
	channel, err := n.session.UserChannelCreate(playerID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel for %s: %w", playerID, err)
	}

	if _, err := n.session.ChannelMessageSend(channel.ID, message); err != nil {
		return fmt.Errorf("failed to send DM to %s: %w", playerID, err)
	}

	return nil
}
