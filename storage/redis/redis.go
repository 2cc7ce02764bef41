// Package redis provides a Redis implementation of the subsync.UserStore
// interface. Records are stored as JSON blobs, one key per user; SET and DEL
// on a single key give the atomic replace semantics the pipeline needs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mihaimyh/subsync/pkg/subsync"
)

// Store implements subsync.UserStore using Redis.
type Store struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis store configuration.
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "subsync:")
	KeyPrefix string

	// RecordTTL is the TTL for subscription record keys (0 = no expiration).
	RecordTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "subsync:",
		RecordTTL: 0,
	}
}

// New creates a new Redis store adapter.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring.
func New(client redis.UniversalClient, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "subsync:"
	}

	return &Store{client: client, config: config}, nil
}

// GetSubscription implements subsync.UserStore.
func (s *Store) GetSubscription(ctx context.Context, userID string) (*subsync.SubscriptionRecord, error) {
	raw, err := s.client.Get(ctx, s.recordKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, subsync.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription record: %w", err)
	}

	var rec subsync.SubscriptionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode subscription record: %w", err)
	}
	return &rec, nil
}

// SetSubscription implements subsync.UserStore.
func (s *Store) SetSubscription(ctx context.Context, userID string, rec *subsync.SubscriptionRecord) error {
	if userID == "" || rec == nil {
		return fmt.Errorf("invalid subscription record")
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode subscription record: %w", err)
	}

	if err := s.client.Set(ctx, s.recordKey(userID), raw, s.config.RecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to set subscription record: %w", err)
	}
	return nil
}

// DeleteSubscription implements subsync.UserStore.
func (s *Store) DeleteSubscription(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.recordKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete subscription record: %w", err)
	}
	return nil
}

func (s *Store) recordKey(userID string) string {
	return s.config.KeyPrefix + "subscription:" + userID
}
