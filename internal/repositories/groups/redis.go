package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// clansKey is a hash of player id to group key
	clansKey = "royale:clans"
)

// Config holds configuration for the Redis groups repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed groups repository
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

// ResolveGroup looks up a player's group key
func (r *redisRepository) ResolveGroup(ctx context.Context, input *ResolveGroupInput) (*ResolveGroupOutput, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	groupKey, err := r.client.HGet(ctx, clansKey, input.PlayerID).Result()
	if err != nil {
		if err == redis.Nil {
			return &ResolveGroupOutput{Found: false}, nil
		}
		return nil, fmt.Errorf("failed to resolve group for %s: %w", input.PlayerID, err)
	}

	return &ResolveGroupOutput{
		Found:    true,
		GroupKey: groupKey,
	}, nil
}

// SetGroup assigns a player to a group
func (r *redisRepository) SetGroup(ctx context.Context, input *SetGroupInput) error {
	if input == nil || input.PlayerID == "" || input.GroupKey == "" {
		return errors.New("input, player ID and group key cannot be empty")
	}

	if err := r.client.HSet(ctx, clansKey, input.PlayerID, input.GroupKey).Err(); err != nil {
		return fmt.Errorf("failed to set group for %s: %w", input.PlayerID, err)
	}

	return nil
}
