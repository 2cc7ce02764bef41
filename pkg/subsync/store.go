package subsync

import "context"

// UserStore persists the per-user subscription record. The record is embedded
// in the user's document; implementations must replace it as a single unit and
// leave the rest of the document untouched.
//
// Correctness under concurrent delivery relies on SetSubscription being a
// full replace keyed by user id: duplicate or racing deliveries for the same
// user converge last-write-wins at the store's write granularity, with no
// locking in the pipeline itself.
type UserStore interface {
	// GetSubscription returns the user's current subscription record, or
	// ErrSubscriptionNotFound if the user has none.
	GetSubscription(ctx context.Context, userID string) (*SubscriptionRecord, error)

	// SetSubscription replaces the user's subscription record wholesale.
	// It creates the user document if it does not exist.
	SetSubscription(ctx context.Context, userID string, rec *SubscriptionRecord) error

	// DeleteSubscription removes the user's subscription record entirely.
	// Deleting an absent record is not an error.
	DeleteSubscription(ctx context.Context, userID string) error
}
