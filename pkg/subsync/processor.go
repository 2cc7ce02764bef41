package subsync

import (
	"context"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/mihaimyh/subsync/pkg/subsync/internal"
)

const (
	// metadataUserIDKey is the fixed metadata key on the Stripe customer
	// record that carries the internal user id. It is written once when the
	// customer is created and read-only afterwards.
	metadataUserIDKey = "internalUserId"

	defaultRateLimitWindow   = time.Minute
	defaultRateLimitRequests = 100
)

// Processor is the webhook synchronization pipeline. Each event is handled by
// an independent, stateless invocation; the only state between invocations is
// the persisted subscription record.
type Processor struct {
	store              UserStore
	directory          Directory
	stripeClient       *stripe.Client
	webhookSecret      []byte
	customerIDResolver func(context.Context, string) (string, error)
	rateLimiter        *internal.RateLimiter
	logger             Logger
	metrics            Metrics
}

// NewProcessor creates a processor from config. Missing required configuration
// is an error here, not at request time.
func NewProcessor(config Config) (*Processor, error) {
	if config.Store == nil {
		return nil, ErrNotConfigured
	}

	apiKey := strings.TrimSpace(config.StripeAPIKey)
	if apiKey == "" && config.Directory == nil {
		return nil, ErrNotConfigured
	}

	webhookSecret := strings.TrimSpace(config.StripeWebhookSecret)
	if webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	logger := config.Logger
	if logger == nil {
		logger = &NoopLogger{}
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = &NoopMetrics{}
	}

	var stripeClient *stripe.Client
	if apiKey != "" {
		stripeClient = stripe.NewClient(apiKey)
	}

	directory := config.Directory
	if directory == nil {
		directory = &stripeDirectory{client: stripeClient, metrics: metrics}
	}

	return &Processor{
		store:              config.Store,
		directory:          directory,
		stripeClient:       stripeClient,
		webhookSecret:      []byte(webhookSecret),
		customerIDResolver: config.CustomerIDResolver,
		rateLimiter:        internal.NewRateLimiter(defaultRateLimitRequests, defaultRateLimitWindow),
		logger:             logger,
		metrics:            metrics,
	}, nil
}

// Process runs a verified event through the pipeline: classify, resolve the
// subscriber, apply the state change. The returned outcome determines the
// transport response; the error, when non-nil, explains a skipped or
// retryable disposition and is already safe to log.
func (p *Processor) Process(ctx context.Context, event *stripe.Event) (Outcome, error) {
	op, err := Classify(event)
	if err != nil {
		// The payload passed signature verification, so a malformed nested
		// object will stay malformed on every redelivery.
		return OutcomeSkipped, err
	}

	switch op.Kind {
	case OpSubscriptionUpserted:
		return p.processSubscriptionUpserted(ctx, op)
	case OpSubscriptionRemoved:
		return p.processSubscriptionRemoved(ctx, op)
	case OpPaymentSucceeded, OpPaymentFailed:
		// Extension points for notification/history features. No state
		// mutation; report success so the event is acknowledged.
		p.logger.Info("invoice payment event acknowledged",
			Field{Key: "event_type", Value: op.EventType},
			Field{Key: "invoice_id", Value: invoiceID(op.Invoice)},
		)
		return OutcomeApplied, nil
	default:
		p.logger.Debug("event type not handled",
			Field{Key: "event_type", Value: op.EventType},
		)
		return OutcomeIgnored, nil
	}
}

func (p *Processor) processSubscriptionUpserted(ctx context.Context, op Operation) (Outcome, error) {
	sub := op.Subscription

	userID, err := p.resolveUser(ctx, customerIDOf(sub))
	if err != nil {
		return p.disposition(op, sub, userID, err)
	}

	if err := p.applyUpsert(ctx, userID, sub); err != nil {
		return p.disposition(op, sub, userID, err)
	}

	p.logger.Info("subscription record applied",
		Field{Key: "event_type", Value: op.EventType},
		Field{Key: "subscription_id", Value: sub.ID},
		Field{Key: "user_id", Value: userID},
	)
	return OutcomeApplied, nil
}

func (p *Processor) processSubscriptionRemoved(ctx context.Context, op Operation) (Outcome, error) {
	sub := op.Subscription

	userID, err := p.resolveUser(ctx, customerIDOf(sub))
	if err != nil {
		return p.disposition(op, sub, userID, err)
	}

	if err := p.store.DeleteSubscription(ctx, userID); err != nil {
		return p.disposition(op, sub, userID, transient(err))
	}

	p.logger.Info("subscription record removed",
		Field{Key: "event_type", Value: op.EventType},
		Field{Key: "subscription_id", Value: sub.ID},
		Field{Key: "user_id", Value: userID},
	)
	return OutcomeApplied, nil
}

// disposition classifies a pipeline failure into skip-and-acknowledge or
// retry. Only transient dependency failures are worth redelivering.
func (p *Processor) disposition(op Operation, sub *stripe.Subscription, userID string, err error) (Outcome, error) {
	fields := []Field{
		{Key: "event_type", Value: op.EventType},
		{Key: "subscription_id", Value: sub.ID},
		{Key: "customer_id", Value: customerIDOf(sub)},
	}
	if userID != "" {
		fields = append(fields, Field{Key: "user_id", Value: userID})
	}
	fields = append(fields, Field{Key: "error", Value: err.Error()})

	if IsTransient(err) {
		p.logger.Error("event processing failed, will be redelivered", fields...)
		return OutcomeRetry, err
	}

	p.logger.Warn("event acknowledged without apply", fields...)
	return OutcomeSkipped, err
}

func customerIDOf(sub *stripe.Subscription) string {
	if sub == nil || sub.Customer == nil {
		return ""
	}
	return sub.Customer.ID
}

func invoiceID(inv *stripe.Invoice) string {
	if inv == nil {
		return ""
	}
	return inv.ID
}
