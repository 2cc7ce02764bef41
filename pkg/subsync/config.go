package subsync

import "context"

// Config defines the processor configuration. Store and StripeWebhookSecret
// are required; either StripeAPIKey or Directory must be set. All values are
// process-wide: load them once at startup and treat absence as fatal there,
// not per request.
type Config struct {
	// Store persists per-user subscription records.
	Store UserStore

	// StripeAPIKey is used for outbound API calls to Stripe (customer, price
	// and product lookups, checkout sessions, reconciliation).
	StripeAPIKey string

	// StripeWebhookSecret is the shared signing secret used to verify
	// incoming webhook requests. It is never logged.
	StripeWebhookSecret string

	// Directory overrides the Stripe-backed lookups. If nil, a client built
	// from StripeAPIKey is used.
	Directory Directory

	// CustomerIDResolver is an optional fast path mapping an internal user id
	// to a Stripe customer id. If nil, SyncUser falls back to the slower
	// Stripe Search API.
	CustomerIDResolver func(context.Context, string) (string, error)

	// Logger is an optional structured logger. If nil, logging is a no-op.
	Logger Logger

	// Metrics is an optional metrics collector. If nil, metrics are silently
	// ignored.
	Metrics Metrics
}
