package subsync

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"
)

const (
	// fallbackPlanName is used when neither the product name nor the price
	// nickname is available.
	fallbackPlanName = "Unknown Plan"

	// minorUnitsPerUnit converts Stripe's minor-unit amounts (cents) to
	// decimal currency units.
	minorUnitsPerUnit = 100
)

// applyUpsert builds the full subscription record for a user and overwrites
// it wholesale. Replaying the same event converges to the same record aside
// from UpdatedAt, which reflects the most recent apply.
//
// Only the first line item is considered; multi-price subscriptions silently
// use one price's data.
func (p *Processor) applyUpsert(ctx context.Context, userID string, sub *stripe.Subscription) error {
	item := firstItem(sub)
	if item == nil || item.Price == nil || item.Price.ID == "" {
		return fmt.Errorf("subscription %s has no priced line item", sub.ID)
	}

	price, err := p.directory.Price(ctx, item.Price.ID)
	if err != nil {
		return transient(fmt.Errorf("failed to fetch price %s: %w", item.Price.ID, err))
	}

	var product *stripe.Product
	if price.Product != nil && price.Product.ID != "" {
		product, err = p.directory.Product(ctx, price.Product.ID)
		if err != nil {
			return transient(fmt.Errorf("failed to fetch product %s: %w", price.Product.ID, err))
		}
	}

	rec := &SubscriptionRecord{
		SubscriptionID:     sub.ID,
		CustomerID:         customerIDOf(sub),
		Status:             string(sub.Status),
		PlanName:           planName(product, price),
		Amount:             float64(price.UnitAmount) / minorUnitsPerUnit,
		Currency:           string(price.Currency),
		Interval:           priceInterval(price),
		CurrentPeriodStart: unixTime(item.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(item.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		UpdatedAt:          time.Now().UTC(),
	}

	if err := p.store.SetSubscription(ctx, userID, rec); err != nil {
		return transient(fmt.Errorf("failed to write subscription record: %w", err))
	}
	return nil
}

// planName derives the display name for the record. The precedence is an
// explicit ordered chain: product display name, then price nickname, then a
// literal default.
func planName(product *stripe.Product, price *stripe.Price) string {
	if product != nil && product.Name != "" {
		return product.Name
	}
	if price != nil && price.Nickname != "" {
		return price.Nickname
	}
	return fallbackPlanName
}

func priceInterval(price *stripe.Price) string {
	if price.Recurring == nil {
		return ""
	}
	return string(price.Recurring.Interval)
}

func firstItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
