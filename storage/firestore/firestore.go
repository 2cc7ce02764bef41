// Package firestore provides a Firestore implementation of the
// subsync.UserStore interface. The subscription record is embedded as a
// single map field on the user's document, so every write is a field-level
// replace and the rest of the document is left untouched.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mihaimyh/subsync/pkg/subsync"
)

// Store implements subsync.UserStore using Google Cloud Firestore.
type Store struct {
	client            *firestore.Client
	usersCollection   string
	subscriptionField string
}

// Config holds Firestore store configuration.
type Config struct {
	// UsersCollection is the Firestore collection holding user documents.
	// Default: "users"
	UsersCollection string

	// SubscriptionField is the document field the subscription record is
	// embedded under. Default: "subscription"
	SubscriptionField string
}

// New creates a new Firestore store adapter.
func New(client *firestore.Client, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}

	if config.UsersCollection == "" {
		config.UsersCollection = "users"
	}
	if config.SubscriptionField == "" {
		config.SubscriptionField = "subscription"
	}

	return &Store{
		client:            client,
		usersCollection:   config.UsersCollection,
		subscriptionField: config.SubscriptionField,
	}, nil
}

// GetSubscription implements subsync.UserStore.
func (s *Store) GetSubscription(ctx context.Context, userID string) (*subsync.SubscriptionRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	doc := s.client.Collection(s.usersCollection).Doc(userID)
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, subsync.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get user document: %w", err)
	}

	if !snap.Exists() {
		return nil, subsync.ErrSubscriptionNotFound
	}

	data, ok := snap.Data()[s.subscriptionField].(map[string]interface{})
	if !ok {
		return nil, subsync.ErrSubscriptionNotFound
	}

	rec := &subsync.SubscriptionRecord{
		SubscriptionID:     getString(data, "subscriptionId"),
		CustomerID:         getString(data, "customerId"),
		Status:             getString(data, "status"),
		PlanName:           getString(data, "planName"),
		Amount:             getFloat(data, "amount"),
		Currency:           getString(data, "currency"),
		Interval:           getString(data, "interval"),
		CurrentPeriodStart: getTime(data, "currentPeriodStart"),
		CurrentPeriodEnd:   getTime(data, "currentPeriodEnd"),
		CancelAtPeriodEnd:  getBool(data, "cancelAtPeriodEnd"),
		UpdatedAt:          getTime(data, "updatedAt"),
	}

	return rec, nil
}

// SetSubscription implements subsync.UserStore. The embedded record is
// replaced as a single unit; other fields on the user document are preserved.
func (s *Store) SetSubscription(ctx context.Context, userID string, rec *subsync.SubscriptionRecord) error {
	if userID == "" || rec == nil {
		return fmt.Errorf("invalid subscription record")
	}

	doc := s.client.Collection(s.usersCollection).Doc(userID)

	data := map[string]interface{}{
		s.subscriptionField: map[string]interface{}{
			"subscriptionId":     rec.SubscriptionID,
			"customerId":         rec.CustomerID,
			"status":             rec.Status,
			"planName":           rec.PlanName,
			"amount":             rec.Amount,
			"currency":           rec.Currency,
			"interval":           rec.Interval,
			"currentPeriodStart": rec.CurrentPeriodStart,
			"currentPeriodEnd":   rec.CurrentPeriodEnd,
			"cancelAtPeriodEnd":  rec.CancelAtPeriodEnd,
			"updatedAt":          rec.UpdatedAt,
		},
	}

	if _, err := doc.Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to set subscription record: %w", err)
	}

	return nil
}

// DeleteSubscription implements subsync.UserStore. Deleting the field on an
// absent document is treated as success: the record is absent either way.
func (s *Store) DeleteSubscription(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	doc := s.client.Collection(s.usersCollection).Doc(userID)
	_, err := doc.Update(ctx, []firestore.Update{
		{Path: s.subscriptionField, Value: firestore.Delete},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("failed to delete subscription record: %w", err)
	}

	return nil
}

// Helper functions for type conversion from Firestore data

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func getBool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func getTime(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}
