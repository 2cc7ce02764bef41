package subsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
)

// CheckoutURL creates a Stripe Checkout Session for a subscription price and
// returns its URL. The Stripe customer is created on first checkout with the
// internal user id in its metadata; that link is what the webhook pipeline
// later resolves, so it must exist before any subscription event can arrive.
func (p *Processor) CheckoutURL(ctx context.Context, userID, email, priceID, successURL, cancelURL string) (string, error) {
	startTime := time.Now()

	if p.stripeClient == nil {
		return "", fmt.Errorf("stripe API key not configured")
	}

	customerID, err := p.ensureCustomer(ctx, userID, email)
	if err != nil {
		p.metrics.RecordAPICall("/checkout/sessions", "customer_resolution_failed")
		return "", fmt.Errorf("failed to resolve customer: %w", err)
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}

	session, err := p.stripeClient.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		p.metrics.RecordAPICall("/checkout/sessions", "error")
		p.metrics.RecordAPICallDuration("/checkout/sessions", time.Since(startTime))
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	p.metrics.RecordAPICall("/checkout/sessions", "success")
	p.metrics.RecordAPICallDuration("/checkout/sessions", time.Since(startTime))

	return session.URL, nil
}

// PortalURL creates a Stripe Customer Portal session so the user can manage
// their subscription, update payment methods, or cancel.
func (p *Processor) PortalURL(ctx context.Context, userID, returnURL string) (string, error) {
	startTime := time.Now()

	if p.stripeClient == nil {
		return "", fmt.Errorf("stripe API key not configured")
	}

	customerID, err := p.lookupCustomerID(ctx, userID)
	if err != nil {
		p.metrics.RecordAPICall("/billing_portal/sessions", "customer_not_found")
		return "", err
	}

	params := &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}

	session, err := p.stripeClient.V1BillingPortalSessions.Create(ctx, params)
	if err != nil {
		p.metrics.RecordAPICall("/billing_portal/sessions", "error")
		p.metrics.RecordAPICallDuration("/billing_portal/sessions", time.Since(startTime))
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	p.metrics.RecordAPICall("/billing_portal/sessions", "success")
	p.metrics.RecordAPICallDuration("/billing_portal/sessions", time.Since(startTime))

	return session.URL, nil
}

// ensureCustomer returns the Stripe customer id for a user, creating the
// customer with the internal user id metadata when none exists.
func (p *Processor) ensureCustomer(ctx context.Context, userID, email string) (string, error) {
	customerID, err := p.lookupCustomerID(ctx, userID)
	if err == nil {
		return customerID, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		// Real failure (network, API error). Fail rather than risk creating
		// a duplicate customer.
		return "", err
	}

	params := &stripe.CustomerCreateParams{
		Metadata: map[string]string{metadataUserIDKey: userID},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}

	cust, err := p.stripeClient.V1Customers.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return cust.ID, nil
}
