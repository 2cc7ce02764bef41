// Package postgres provides a PostgreSQL implementation of the
// subsync.UserStore interface. The subscription record is stored as a JSONB
// document keyed by user id, so a write is a single-row upsert with the same
// last-write-wins semantics the pipeline relies on.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mihaimyh/subsync/pkg/subsync"
)

// Store implements subsync.UserStore using PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Config holds PostgreSQL store configuration.
type Config struct {
	// ConnectionString is the PostgreSQL connection string.
	ConnectionString string

	// Table is the table holding subscription records.
	// Default: "user_subscriptions"
	Table string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Table:           "user_subscriptions",
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New creates a new PostgreSQL store adapter.
func New(ctx context.Context, config Config) (*Store, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}
	if config.Table == "" {
		config.Table = "user_subscriptions"
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool, table: config.Table}, nil
}

// CreateSchema creates the subscription table if it does not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			user_id    TEXT PRIMARY KEY,
			record     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetSubscription implements subsync.UserStore.
func (s *Store) GetSubscription(ctx context.Context, userID string) (*subsync.SubscriptionRecord, error) {
	query := fmt.Sprintf(`SELECT record FROM %s WHERE user_id = $1`, s.table)

	var raw []byte
	err := s.pool.QueryRow(ctx, query, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET record = EXCLUDED.record, updated_at = now()`, s.table)

	if _, err := s.pool.Exec(ctx, query, userID, raw); err != nil {
		return fmt.Errorf("failed to set subscription record: %w", err)
	}
	return nil
}

// DeleteSubscription implements subsync.UserStore.
func (s *Store) DeleteSubscription(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, s.table)

	if _, err := s.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete subscription record: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
