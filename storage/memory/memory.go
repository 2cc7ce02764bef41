// Package memory provides an in-memory implementation of the
// subsync.UserStore interface. This implementation is primarily intended for
// testing and development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mihaimyh/subsync/pkg/subsync"
)

// Store implements subsync.UserStore using an in-memory map.
type Store struct {
	mu      sync.RWMutex
	records map[string]*subsync.SubscriptionRecord
}

// New creates a new in-memory store adapter.
func New() *Store {
	return &Store{
		records: make(map[string]*subsync.SubscriptionRecord),
	}
}

// GetSubscription implements subsync.UserStore.
func (s *Store) GetSubscription(_ context.Context, userID string) (*subsync.SubscriptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, subsync.ErrSubscriptionNotFound
	}

	// Return a copy to prevent external mutations
	recCopy := *rec
	return &recCopy, nil
}

// SetSubscription implements subsync.UserStore.
func (s *Store) SetSubscription(_ context.Context, userID string, rec *subsync.SubscriptionRecord) error {
	if userID == "" || rec == nil {
		return fmt.Errorf("invalid subscription record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *rec
	s.records[userID] = &recCopy
	return nil
}

// DeleteSubscription implements subsync.UserStore.
func (s *Store) DeleteSubscription(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}
