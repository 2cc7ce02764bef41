package subsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
)

const subscriptionStatusActive = "active"

// SyncUser reconciles a user's subscription record against Stripe on demand,
// outside the webhook flow. It is used for "restore purchases" style recovery
// and nightly reconciliation: the record is rebuilt from the live subscription
// list, or removed when no active subscription exists.
func (p *Processor) SyncUser(ctx context.Context, userID string) error {
	startTime := time.Now()

	if p.stripeClient == nil {
		return fmt.Errorf("stripe API key not configured")
	}

	customerID, err := p.lookupCustomerID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// No Stripe customer means no subscription to keep.
			err = p.store.DeleteSubscription(ctx, userID)
			p.recordSync(startTime, err)
			return err
		}
		p.recordSync(startTime, err)
		return err
	}

	sub, err := p.latestActiveSubscription(ctx, customerID)
	if err != nil {
		p.recordSync(startTime, err)
		return err
	}

	if sub == nil {
		err = p.store.DeleteSubscription(ctx, userID)
		p.recordSync(startTime, err)
		return err
	}

	err = p.applyUpsert(ctx, userID, sub)
	p.recordSync(startTime, err)
	return err
}

// lookupCustomerID finds the Stripe customer for a user. The configured
// resolver is the fast path; the Stripe Search API is the slow, eventually
// consistent fallback.
func (p *Processor) lookupCustomerID(ctx context.Context, userID string) (string, error) {
	if p.customerIDResolver != nil {
		customerID, err := p.customerIDResolver(ctx, userID)
		if err == nil && customerID != "" {
			return customerID, nil
		}
	}

	return p.searchCustomerByMetadata(ctx, userID)
}

// searchCustomerByMetadata searches for a customer by metadata using the
// Stripe Search API.
func (p *Processor) searchCustomerByMetadata(ctx context.Context, userID string) (string, error) {
	params := &stripe.CustomerSearchParams{}
	params.Query = fmt.Sprintf("metadata['%s']:'%s'", metadataUserIDKey, userID)

	for cust, err := range p.stripeClient.V1Customers.Search(ctx, params) {
		if err != nil {
			return "", transient(fmt.Errorf("stripe search error: %w", err))
		}
		// Search can return partial matches; verify exactly.
		if cust.Metadata != nil && cust.Metadata[metadataUserIDKey] == userID {
			return cust.ID, nil
		}
	}

	return "", ErrUserNotFound
}

// latestActiveSubscription returns the most recently created active
// subscription for the customer, or nil when there is none.
func (p *Processor) latestActiveSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{}
	params.Customer = stripe.String(customerID)
	params.Status = stripe.String(subscriptionStatusActive)

	var latest *stripe.Subscription
	for sub, err := range p.stripeClient.V1Subscriptions.List(ctx, params) {
		if err != nil {
			return nil, transient(fmt.Errorf("failed to list subscriptions: %w", err))
		}
		if sub.Status != subscriptionStatusActive {
			continue
		}
		if latest == nil || sub.Created > latest.Created {
			latest = sub
		}
	}

	return latest, nil
}

func (p *Processor) recordSync(startTime time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordUserSync(status)
	p.metrics.RecordUserSyncDuration(time.Since(startTime))
}
