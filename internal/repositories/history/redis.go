package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rustweek/royale/internal/common/uuid"
	"github.com/rustweek/royale/internal/models"
)

const (
	// Key prefixes for Redis
	entryKeyPrefix  = "royale:history:"
	historyIndexKey = "royale:history"
)

// Config holds configuration for the Redis history repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// UUIDGenerator mints entry IDs; defaults to random UUIDs
	UUIDGenerator uuid.UUID
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client        *redis.Client
	uuidGenerator uuid.UUID
}

// NewRedis creates a new Redis-backed history repository
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

	if cfg.UUIDGenerator == nil {
		cfg.UUIDGenerator = &uuid.DefaultUUID{}
	}

	return &redisRepository{
		client:        cfg.RedisClient,
		uuidGenerator: cfg.UUIDGenerator,
	}, nil
}

// AppendEntry records one finished tournament
func (r *redisRepository) AppendEntry(ctx context.Context, input *AppendEntryInput) (*AppendEntryOutput, error) {
	if input == nil || input.Entry == nil {
		return nil, errors.New("input and entry cannot be nil")
	}

	entry := input.Entry

	if entry.ID == "" {
		entry.ID = r.uuidGenerator.NewUUID()
	}

	if entry.EndedAt.IsZero() {
		return nil, errors.New("entry end time cannot be zero")
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history entry: %w", err)
	}

	// Store the entry and index it by end time in one transaction
	pipe := r.client.Pipeline()

	entryKey := fmt.Sprintf("%s%s", entryKeyPrefix, entry.ID)
	pipe.Set(ctx, entryKey, entryJSON, 0)

	pipe.ZAdd(ctx, historyIndexKey, redis.Z{
		Score:  float64(entry.EndedAt.Unix()),
		Member: entry.ID,
	})

	_, err = pipe.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to append history entry: %w", err)
	}

	return &AppendEntryOutput{
		EntryID: entry.ID,
	}, nil
}

// ListEntries returns the most recent entries, newest first
func (r *redisRepository) ListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit) - 1
	}

	entryIDs, err := r.client.ZRevRange(ctx, historyIndexKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry IDs: %w", err)
	}

	if len(entryIDs) == 0 {
		return &ListEntriesOutput{
			Entries: []*models.HistoryEntry{},
		}, nil
	}

	// Fetch all entries in one pipeline, preserving index order
	pipe := r.client.Pipeline()
	entryCommands := make([]*redis.StringCmd, len(entryIDs))

	for i, entryID := range entryIDs {
		entryKey := fmt.Sprintf("%s%s", entryKeyPrefix, entryID)
		entryCommands[i] = pipe.Get(ctx, entryKey)
	}

	_, err = pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get history entries: %w", err)
	}

	entries := make([]*models.HistoryEntry, 0, len(entryIDs))
	for i, cmd := range entryCommands {
		entryJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Entry was removed between reading the index and fetching it
				continue
			}
			return nil, fmt.Errorf("failed to get history entry %s: %w", entryIDs[i], err)
		}

		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry %s: %w", entryIDs[i], err)
		}

		entries = append(entries, &entry)
	}

	return &ListEntriesOutput{
		Entries: entries,
	}, nil
}
