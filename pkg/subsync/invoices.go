package subsync

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
)

// Invoice is a read-only projection of a Stripe invoice with amounts in
// decimal currency units.
type Invoice struct {
	ID               string    `json:"id"`
	Number           string    `json:"number"`
	Status           string    `json:"status"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Created          time.Time `json:"created"`
	HostedInvoiceURL string    `json:"hostedInvoiceUrl"`
}

// ListInvoices returns up to limit recent invoices for the user's customer,
// newest first. A user with no Stripe customer has no invoices.
func (p *Processor) ListInvoices(ctx context.Context, userID string, limit int) ([]Invoice, error) {
	startTime := time.Now()

	if p.stripeClient == nil {
		return nil, fmt.Errorf("stripe API key not configured")
	}
	if limit <= 0 {
		limit = 10
	}

	customerID, err := p.lookupCustomerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := &stripe.InvoiceListParams{}
	params.Customer = stripe.String(customerID)
	params.Limit = stripe.Int64(int64(limit))

	invoices := make([]Invoice, 0, limit)
	for inv, err := range p.stripeClient.V1Invoices.List(ctx, params) {
		if err != nil {
			p.metrics.RecordAPICall("/invoices", "error")
			return nil, transient(fmt.Errorf("failed to list invoices: %w", err))
		}
		invoices = append(invoices, Invoice{
			ID:               inv.ID,
			Number:           inv.Number,
			Status:           string(inv.Status),
			Amount:           float64(inv.Total) / minorUnitsPerUnit,
			Currency:         string(inv.Currency),
			Created:          unixTime(inv.Created),
			HostedInvoiceURL: inv.HostedInvoiceURL,
		})
		if len(invoices) >= limit {
			break
		}
	}

	p.metrics.RecordAPICall("/invoices", "success")
	p.metrics.RecordAPICallDuration("/invoices", time.Since(startTime))

	return invoices, nil
}
