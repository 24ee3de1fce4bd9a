package eventlog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	logKeyPrefix = "royale:log:"
	logIndexKey  = "royale:logs"

	// endedMarker is the terminal line of a cleanly ended tournament
	endedMarker = "-- tournament ended --"
)

// Config holds configuration for the Redis event log repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed event log repository
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

func logKey(startedAt time.Time) string {
	return fmt.Sprintf("%s%d", logKeyPrefix, startedAt.Unix())
}

// Open starts a new log and indexes it by start time
func (r *redisRepository) Open(ctx context.Context, input *OpenInput) error {
	if input == nil || input.StartedAt.IsZero() {
		return errors.New("input and start time cannot be empty")
	}

	pipe := r.client.Pipeline()

	pipe.RPush(ctx, logKey(input.StartedAt), fmt.Sprintf("-- tournament started %s --", input.StartedAt.UTC().Format(time.RFC3339)))

	pipe.ZAdd(ctx, logIndexKey, redis.Z{
		Score:  float64(input.StartedAt.Unix()),
		Member: strconv.FormatInt(input.StartedAt.Unix(), 10),
	})

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}

	return nil
}

// Append adds one line to a tournament's log
func (r *redisRepository) Append(ctx context.Context, input *AppendInput) error {
	if input == nil || input.StartedAt.IsZero() {
		return errors.New("input and start time cannot be empty")
	}

	if err := r.client.RPush(ctx, logKey(input.StartedAt), input.Line).Err(); err != nil {
		return fmt.Errorf("failed to append to event log: %w", err)
	}

	return nil
}

// MarkEnded writes the clean-end marker
func (r *redisRepository) MarkEnded(ctx context.Context, input *MarkEndedInput) error {
	if input == nil || input.StartedAt.IsZero() {
		return errors.New("input and start time cannot be empty")
	}

	if err := r.client.RPush(ctx, logKey(input.StartedAt), endedMarker).Err(); err != nil {
		return fmt.Errorf("failed to mark event log ended: %w", err)
	}

	return nil
}

// Latest returns the newest log, if any
func (r *redisRepository) Latest(ctx context.Context) (*LatestOutput, error) {
	members, err := r.client.ZRevRange(ctx, logIndexKey, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get event log index: %w", err)
	}

	if len(members) == 0 {
		return &LatestOutput{Found: false}, nil
	}

	unix, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event log timestamp %q: %w", members[0], err)
	}

	startedAt := time.Unix(unix, 0).UTC()

	// The ended marker is always the final line of a closed log
	lastLines, err := r.client.LRange(ctx, logKey(startedAt), -1, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event log tail: %w", err)
	}

	ended := len(lastLines) == 1 && lastLines[0] == endedMarker

	return &LatestOutput{
		Found:     true,
		StartedAt: startedAt,
		Ended:     ended,
	}, nil
}
