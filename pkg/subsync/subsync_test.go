package subsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stripe/stripe-go/v83"
)

const (
	testUserID        = "user_42"
	testCustomerID    = "cus_1"
	testSubID         = "sub_1"
	testPriceID       = "price_1"
	testProductID     = "prod_1"
	testWebhookSecret = "whsec_test_secret"
	testPeriodStart   = int64(1700000000)
	testPeriodEnd     = int64(1702592000)
)

// fakeStore is an in-package UserStore that tracks writes and can be made to
// fail, for exercising the pipeline's error dispositions.
type fakeStore struct {
	mu          sync.Mutex
	records     map[string]*SubscriptionRecord
	setCalls    int
	deleteCalls int
	failWrites  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*SubscriptionRecord)}
}

func (s *fakeStore) GetSubscription(_ context.Context, userID string) (*SubscriptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	recCopy := *rec
	return &recCopy, nil
}

func (s *fakeStore) SetSubscription(_ context.Context, userID string, rec *SubscriptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.failWrites != nil {
		return s.failWrites
	}
	recCopy := *rec
	s.records[userID] = &recCopy
	return nil
}

func (s *fakeStore) DeleteSubscription(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.failWrites != nil {
		return s.failWrites
	}
	delete(s.records, userID)
	return nil
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls + s.deleteCalls
}

// fakeDirectory serves customer, price and product lookups from maps.
type fakeDirectory struct {
	customers map[string]*stripe.Customer
	prices    map[string]*stripe.Price
	products  map[string]*stripe.Product
	failWith  error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		customers: map[string]*stripe.Customer{
			testCustomerID: {
				ID:       testCustomerID,
				Metadata: map[string]string{metadataUserIDKey: testUserID},
			},
		},
		prices: map[string]*stripe.Price{
			testPriceID: {
				ID:         testPriceID,
				UnitAmount: 999,
				Currency:   "usd",
				Recurring:  &stripe.PriceRecurring{Interval: "month"},
				Product:    &stripe.Product{ID: testProductID},
			},
		},
		products: map[string]*stripe.Product{
			testProductID: {ID: testProductID, Name: "Pro Plan"},
		},
	}
}

func (d *fakeDirectory) Customer(_ context.Context, id string) (*stripe.Customer, error) {
	if d.failWith != nil {
		return nil, d.failWith
	}
	cust, ok := d.customers[id]
	if !ok {
		return nil, fmt.Errorf("no such customer: %s", id)
	}
	return cust, nil
}

func (d *fakeDirectory) Price(_ context.Context, id string) (*stripe.Price, error) {
	if d.failWith != nil {
		return nil, d.failWith
	}
	price, ok := d.prices[id]
	if !ok {
		return nil, fmt.Errorf("no such price: %s", id)
	}
	return price, nil
}

func (d *fakeDirectory) Product(_ context.Context, id string) (*stripe.Product, error) {
	if d.failWith != nil {
		return nil, d.failWith
	}
	product, ok := d.products[id]
	if !ok {
		return nil, fmt.Errorf("no such product: %s", id)
	}
	return product, nil
}

func newTestProcessor(t *testing.T, store UserStore, directory Directory) *Processor {
	t.Helper()
	p, err := NewProcessor(Config{
		Store:               store,
		StripeWebhookSecret: testWebhookSecret,
		Directory:           directory,
	})
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}
	return p
}

func testSubscription() *stripe.Subscription {
	return &stripe.Subscription{
		ID:                testSubID,
		Status:            "active",
		Customer:          &stripe.Customer{ID: testCustomerID},
		CancelAtPeriodEnd: false,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					Price:              &stripe.Price{ID: testPriceID},
					CurrentPeriodStart: testPeriodStart,
					CurrentPeriodEnd:   testPeriodEnd,
				},
			},
		},
	}
}

func subscriptionEvent(t *testing.T, eventType string, sub *stripe.Subscription) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("Failed to marshal subscription: %v", err)
	}
	return &stripe.Event{
		ID:      "evt_test",
		Type:    stripe.EventType(eventType),
		Created: testPeriodStart,
		Data:    &stripe.EventData{Raw: raw},
	}
}
