package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rustweek/royale/internal/models"
)

const (
	// ledgerKey holds the whole participant list as one JSON value
	ledgerKey = "royale:ledger"
)

// ErrSnapshotNotFound is returned when no snapshot has been persisted yet
var ErrSnapshotNotFound = errors.New("ledger snapshot not found")

// Config holds configuration for the Redis ledger repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed ledger repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveSnapshot writes the full participant list as one value so that a
// reader never observes a half-written ledger
func (r *redisRepository) SaveSnapshot(ctx context.Context, input *SaveSnapshotInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	participants := input.Participants
	if participants == nil {
		participants = []*models.Participant{}
	}

	snapshotJSON, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger snapshot: %w", err)
	}

	if err := r.client.Set(ctx, ledgerKey, snapshotJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads the last persisted participant list
func (r *redisRepository) LoadSnapshot(ctx context.Context) (*LoadSnapshotOutput, error) {
	snapshotJSON, err := r.client.Get(ctx, ledgerKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get ledger snapshot: %w", err)
	}

	var participants []*models.Participant
	if err := json.Unmarshal([]byte(snapshotJSON), &participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger snapshot: %w", err)
	}

	return &LoadSnapshotOutput{
		Participants: participants,
	}, nil
}
