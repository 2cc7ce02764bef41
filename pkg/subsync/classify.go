package subsync

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

// Classify maps a verified event into a domain operation. It is a pure
// mapping with no I/O. Unrecognized event types map to OpIgnored rather than
// erroring, so new Stripe event types are forward compatible.
func Classify(event *stripe.Event) (Operation, error) {
	eventType := string(event.Type)

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		sub, err := unmarshalSubscription(event)
		if err != nil {
			return Operation{}, err
		}
		return Operation{Kind: OpSubscriptionUpserted, EventType: eventType, Subscription: sub}, nil

	case "customer.subscription.deleted":
		sub, err := unmarshalSubscription(event)
		if err != nil {
			return Operation{}, err
		}
		return Operation{Kind: OpSubscriptionRemoved, EventType: eventType, Subscription: sub}, nil

	case "invoice.payment_succeeded":
		inv, err := unmarshalInvoice(event)
		if err != nil {
			return Operation{}, err
		}
		return Operation{Kind: OpPaymentSucceeded, EventType: eventType, Invoice: inv}, nil

	case "invoice.payment_failed":
		inv, err := unmarshalInvoice(event)
		if err != nil {
			return Operation{}, err
		}
		return Operation{Kind: OpPaymentFailed, EventType: eventType, Invoice: inv}, nil

	default:
		return Operation{Kind: OpIgnored, EventType: eventType}, nil
	}
}

func unmarshalSubscription(event *stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	return &sub, nil
}

func unmarshalInvoice(event *stripe.Event) (*stripe.Invoice, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoice: %w", err)
	}
	return &inv, nil
}
