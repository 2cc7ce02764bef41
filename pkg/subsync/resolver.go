package subsync

import (
	"context"
	"fmt"
)

// resolveUser maps a Stripe customer id to the internal user id stored in the
// customer's metadata. A customer that was never tagged is a terminal failure
// for the event: the mapping cannot be recovered by retrying.
func (p *Processor) resolveUser(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", fmt.Errorf("%w: event carries no customer id", ErrUnresolvedUser)
	}

	cust, err := p.directory.Customer(ctx, customerID)
	if err != nil {
		return "", transient(fmt.Errorf("failed to fetch customer %s: %w", customerID, err))
	}

	if cust.Metadata != nil {
		if userID := cust.Metadata[metadataUserIDKey]; userID != "" {
			return userID, nil
		}
	}

	return "", fmt.Errorf("%w: customer %s", ErrUnresolvedUser, customerID)
}
