package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// runKeyTimeFormat orders run-record keys chronologically when sorted
// lexicographically
const runKeyTimeFormat = "20060102_150405"

// RedisStore mirrors the optimizer state into Redis and keeps an audit
// trail of run records. It backs the remote side of the layered store.
type RedisStore struct {
	client *redis.Client
	prefix string
	runTTL time.Duration
	logger zerolog.Logger
}

// RedisStoreConfig holds Redis store configuration
type RedisStoreConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	Prefix   string        // key namespace, e.g., "margin_optimizer"
	RunTTL   time.Duration // retention for run records; 0 keeps them forever
}

// NewRedisStore creates a new Redis-backed state store
func NewRedisStore(config RedisStoreConfig, logger zerolog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "margin_optimizer"
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
		runTTL: config.RunTTL,
		logger: logger.With().Str("component", "redis_store").Logger(),
	}
}

// Load retrieves the mirrored state blob, returning nil when none exists
func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.stateKey()).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}
	return data, nil
}

// Save mirrors the state blob. The state key never expires; the local
// file remains the authoritative copy.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.stateKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set state in Redis: %w", err)
	}

	s.logger.Debug().
		Str("key", s.stateKey()).
		Int("bytes", len(data)).
		Msg("state mirrored to Redis")

	return nil
}

// SaveRunRecord appends one invocation record to the audit trail
func (s *RedisStore) SaveRunRecord(ctx context.Context, record *models.RunRecord) error {
	key := s.runKey(record)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.runTTL).Err(); err != nil {
		return fmt.Errorf("failed to set run record in Redis: %w", err)
	}

	s.logger.Debug().
		Str("key", key).
		Str("outcome", record.Outcome).
		Msg("run record saved")

	return nil
}

// ListRunRecords retrieves up to limit most recent run records, newest
// first. A non-positive limit returns everything retained.
func (s *RedisStore) ListRunRecords(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	pattern := s.prefix + ":runs:*"

	// Scan for keys matching pattern
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan run keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	// Keys embed the run timestamp, so a reverse sort is newest first
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}

	records := make([]*models.RunRecord, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to get run record")
			continue
		}

		var record models.RunRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to unmarshal run record")
			continue
		}

		records = append(records, &record)
	}

	return records, nil
}

// PublishAnalysis stores the latest batch analysis report and
// recommendations CSV under fixed keys, overwriting the previous run
func (s *RedisStore) PublishAnalysis(ctx context.Context, reportJSON, recommendationsCSV []byte) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.prefix+":analysis:report", reportJSON, 0)
	pipe.Set(ctx, s.prefix+":analysis:recommendations", recommendationsCSV, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish analysis to Redis: %w", err)
	}

	s.logger.Info().
		Int("report_bytes", len(reportJSON)).
		Int("csv_bytes", len(recommendationsCSV)).
		Msg("analysis published")

	return nil
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) stateKey() string {
	return s.prefix + ":state"
}

func (s *RedisStore) runKey(record *models.RunRecord) string {
	return fmt.Sprintf("%s:runs:%s:%s", s.prefix, record.Timestamp.UTC().Format(runKeyTimeFormat), record.ID)
}
