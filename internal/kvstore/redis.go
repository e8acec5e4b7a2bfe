// Package kvstore provides the TTL'd key-value cache backing live stream state.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/metrics"
)

// Store is the key-value interface the stream manager and edge analyzer use.
// Every Set carries an explicit TTL sized to data volatility; a Get that fails
// for any reason is reported as a miss, never an error.
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store on go-redis.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg *config.RedisConfig, logger *logrus.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// GetJSON loads and unmarshals the value at key. Missing keys, transport
// failures and decode failures all degrade to a miss.
func (s *RedisStore) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.CacheReadFailuresTotal.Inc()
			s.logger.WithError(err).WithField("key", key).Debug("Cache read failed, treating as miss")
		}
		metrics.CacheMissesTotal.Inc()
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		metrics.CacheMissesTotal.Inc()
		s.logger.WithError(err).WithField("key", key).Warn("Cache entry undecodable, treating as miss")
		return false
	}
	metrics.CacheHitsTotal.Inc()
	return true
}

// SetJSON marshals value and writes it with the given TTL.
func (s *RedisStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache write %s: %w", key, err)
	}
	return nil
}

// Expire resets the TTL on an existing key.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Key namespaces. One game's stream state spans four entries plus the
// market-lines entry populated by the ingestion path.
func StreamKey(gameID string) string {
	return "stream:" + gameID
}

func HistoryKey(gameID string) string {
	return "predictions:history:" + gameID
}

func CurrentKey(gameID string) string {
	return "predictions:current:" + gameID
}

func BroadcastKey(gameID string) string {
	return "broadcast:" + gameID
}

func LinesKey(gameID string) string {
	return "lines:" + gameID
}

// ActiveStreamsKey holds the set of game ids with active streams, so the
// scheduled update cycle can enumerate them without scanning the keyspace.
func ActiveStreamsKey() string {
	return "streams:active"
}
