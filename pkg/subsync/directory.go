package subsync

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v83"
)

// Directory provides read access to the Stripe records the pipeline needs:
// the customer carrying the internal user id, and the price and product
// backing a subscription's line item. It exists so tests and alternative
// transports can substitute lookups without a live Stripe client.
type Directory interface {
	Customer(ctx context.Context, id string) (*stripe.Customer, error)
	Price(ctx context.Context, id string) (*stripe.Price, error)
	Product(ctx context.Context, id string) (*stripe.Product, error)
}

// stripeDirectory implements Directory against the Stripe API client.
type stripeDirectory struct {
	client  *stripe.Client
	metrics Metrics
}

func (d *stripeDirectory) Customer(ctx context.Context, id string) (*stripe.Customer, error) {
	startTime := time.Now()
	cust, err := d.client.V1Customers.Retrieve(ctx, id, nil)
	d.record("/customers/{id}", startTime, err)
	return cust, err
}

func (d *stripeDirectory) Price(ctx context.Context, id string) (*stripe.Price, error) {
	startTime := time.Now()
	price, err := d.client.V1Prices.Retrieve(ctx, id, nil)
	d.record("/prices/{id}", startTime, err)
	return price, err
}

func (d *stripeDirectory) Product(ctx context.Context, id string) (*stripe.Product, error) {
	startTime := time.Now()
	product, err := d.client.V1Products.Retrieve(ctx, id, nil)
	d.record("/products/{id}", startTime, err)
	return product, err
}

func (d *stripeDirectory) record(endpoint string, startTime time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	d.metrics.RecordAPICall(endpoint, status)
	d.metrics.RecordAPICallDuration(endpoint, time.Since(startTime))
}
