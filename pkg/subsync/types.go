// Package subsync keeps per-user subscription records in sync with Stripe.
//
// Stripe emits asynchronous webhook events describing subscription lifecycle
// changes. The Processor authenticates each event, classifies it into a domain
// operation, resolves the Stripe customer to an internal user, and applies an
// idempotent full-replace update to that user's subscription record in a
// pluggable document store.
package subsync

import (
	"time"

	"github.com/stripe/stripe-go/v83"
)

// SubscriptionRecord is the internal projection of a user's current
// subscription state. It is overwritten wholesale on every upsert and removed
// entirely when the subscription is deleted; there is no history.
type SubscriptionRecord struct {
	SubscriptionID     string    `json:"subscriptionId"`
	CustomerID         string    `json:"customerId"`
	Status             string    `json:"status"`
	PlanName           string    `json:"planName"`
	Amount             float64   `json:"amount"` // decimal currency units, not minor units
	Currency           string    `json:"currency"`
	Interval           string    `json:"interval"`
	CurrentPeriodStart time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool      `json:"cancelAtPeriodEnd"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// OpKind identifies the domain operation a webhook event maps to.
type OpKind int

const (
	// OpIgnored is the no-op kind for event types the pipeline does not
	// recognize. New Stripe event types default here.
	OpIgnored OpKind = iota

	// OpSubscriptionUpserted replaces the user's subscription record.
	OpSubscriptionUpserted

	// OpSubscriptionRemoved deletes the user's subscription record.
	OpSubscriptionRemoved

	// OpPaymentSucceeded acknowledges a successful invoice payment.
	OpPaymentSucceeded

	// OpPaymentFailed acknowledges a failed invoice payment.
	OpPaymentFailed
)

func (k OpKind) String() string {
	switch k {
	case OpSubscriptionUpserted:
		return "subscription_upserted"
	case OpSubscriptionRemoved:
		return "subscription_removed"
	case OpPaymentSucceeded:
		return "payment_succeeded"
	case OpPaymentFailed:
		return "payment_failed"
	default:
		return "ignored"
	}
}

// Operation is the classified form of a verified webhook event. Exactly one of
// Subscription and Invoice is set, depending on Kind.
type Operation struct {
	Kind         OpKind
	EventType    string
	Subscription *stripe.Subscription
	Invoice      *stripe.Invoice
}

// Outcome describes how the pipeline disposed of an event. It drives the
// transport response: anything terminal is acknowledged so Stripe stops
// redelivering, while transient failures surface as a server error so Stripe's
// built-in retry can recover them.
type Outcome int

const (
	// OutcomeApplied means the event was applied to the store.
	OutcomeApplied Outcome = iota

	// OutcomeIgnored means the event type is not handled.
	OutcomeIgnored

	// OutcomeSkipped means the event can never be applied (for example the
	// customer record was never tagged with an internal user id) and retrying
	// cannot fix it.
	OutcomeSkipped

	// OutcomeRetry means a dependency call failed transiently and the event
	// should be redelivered.
	OutcomeRetry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "retry"
	}
}
