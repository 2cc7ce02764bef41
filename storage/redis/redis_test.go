package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mihaimyh/subsync/pkg/subsync"
)

// setupTestRedis creates a Redis client for testing.
// Requires Redis running on localhost:6379.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use DB 15 for testing
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}

	return client
}

func testRecord() *subsync.SubscriptionRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &subsync.SubscriptionRecord{
		SubscriptionID:     "sub_1",
		CustomerID:         "cus_1",
		Status:             "active",
		PlanName:           "Pro Plan",
		Amount:             9.99,
		Currency:           "usd",
		Interval:           "month",
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(30 * 24 * time.Hour),
		UpdatedAt:          now,
	}
}

func TestNew(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Error("Expected error for nil client")
	}

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	store, err := New(client, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := store.recordKey("user1"); got != "subsync:subscription:user1" {
		t.Errorf("Empty prefix should default, got key %q", got)
	}
}

func TestStore_GetSetSubscription(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store, err := New(client, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	_, err = store.GetSubscription(ctx, "user1")
	if !errors.Is(err, subsync.ErrSubscriptionNotFound) {
		t.Errorf("Expected ErrSubscriptionNotFound, got %v", err)
	}

	rec := testRecord()
	if err := store.SetSubscription(ctx, "user1", rec); err != nil {
		t.Fatalf("SetSubscription failed: %v", err)
	}

	retrieved, err := store.GetSubscription(ctx, "user1")
	if err != nil {
		t.Fatalf("GetSubscription failed: %v", err)
	}
	if retrieved.SubscriptionID != rec.SubscriptionID {
		t.Errorf("SubscriptionID mismatch: got %s, want %s", retrieved.SubscriptionID, rec.SubscriptionID)
	}
	if !retrieved.CurrentPeriodEnd.Equal(rec.CurrentPeriodEnd) {
		t.Errorf("CurrentPeriodEnd mismatch: got %v, want %v", retrieved.CurrentPeriodEnd, rec.CurrentPeriodEnd)
	}
}

func TestStore_DeleteSubscription(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store, err := New(client, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if err := store.SetSubscription(ctx, "user1", testRecord()); err != nil {
		t.Fatalf("SetSubscription failed: %v", err)
	}
	if err := store.DeleteSubscription(ctx, "user1"); err != nil {
		t.Fatalf("DeleteSubscription failed: %v", err)
	}
	if _, err := store.GetSubscription(ctx, "user1"); !errors.Is(err, subsync.ErrSubscriptionNotFound) {
		t.Errorf("Expected ErrSubscriptionNotFound after delete, got %v", err)
	}

	// Deleting again is not an error
	if err := store.DeleteSubscription(ctx, "user1"); err != nil {
		t.Errorf("Delete of missing record should succeed, got %v", err)
	}
}

func TestStore_RecordTTL(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	config := DefaultConfig()
	config.RecordTTL = time.Hour
	store, err := New(client, config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if err := store.SetSubscription(ctx, "user1", testRecord()); err != nil {
		t.Fatalf("SetSubscription failed: %v", err)
	}

	ttl, err := client.TTL(ctx, store.recordKey("user1")).Result()
	if err != nil {
		t.Fatalf("TTL lookup failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("Expected TTL in (0, 1h], got %v", ttl)
	}
}

func TestStore_KeyPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store, err := New(client, Config{KeyPrefix: "myapp:"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if err := store.SetSubscription(ctx, "user1", testRecord()); err != nil {
		t.Fatalf("SetSubscription failed: %v", err)
	}

	exists, err := client.Exists(ctx, "myapp:subscription:user1").Result()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists != 1 {
		t.Error("Expected record under configured key prefix")
	}
}
