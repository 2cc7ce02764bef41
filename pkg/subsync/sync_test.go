package subsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Processors built with an injected Directory have no Stripe client; the
// API-backed operations must refuse cleanly instead of panicking.
func TestStripeClientRequired(t *testing.T) {
	p := newTestProcessor(t, newFakeStore(), newFakeDirectory())
	ctx := context.Background()

	err := p.SyncUser(ctx, testUserID)
	assert.Error(t, err)

	_, err = p.CheckoutURL(ctx, testUserID, "ada@example.com", testPriceID, "https://example.com/ok", "https://example.com/cancel")
	assert.Error(t, err)

	_, err = p.PortalURL(ctx, testUserID, "https://example.com/account")
	assert.Error(t, err)

	_, err = p.ListInvoices(ctx, testUserID, 10)
	assert.Error(t, err)
}

func TestLookupCustomerID_ResolverFastPath(t *testing.T) {
	store := newFakeStore()
	p, err := NewProcessor(Config{
		Store:               store,
		StripeWebhookSecret: testWebhookSecret,
		Directory:           newFakeDirectory(),
		CustomerIDResolver: func(_ context.Context, userID string) (string, error) {
			if userID == testUserID {
				return testCustomerID, nil
			}
			return "", ErrUserNotFound
		},
	})
	require.NoError(t, err)

	// The resolver answers without touching the Stripe Search API, so this
	// works even with no API client configured.
	customerID, err := p.lookupCustomerID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, testCustomerID, customerID)
}
