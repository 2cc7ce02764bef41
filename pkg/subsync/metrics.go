package subsync

import "time"

// Metrics defines the interface for tracking webhook pipeline operations.
// All methods are optional - the processor gracefully handles nil metrics.
type Metrics interface {
	// RecordWebhookEvent records a webhook event and its outcome.
	// eventType: the Stripe event type (e.g., "customer.subscription.updated")
	// outcome: "applied", "ignored", "skipped", "retry" or "error"
	RecordWebhookEvent(eventType, outcome string)

	// RecordWebhookProcessingDuration records how long it took to process a webhook.
	RecordWebhookProcessingDuration(eventType string, duration time.Duration)

	// RecordWebhookError records a webhook processing error.
	// errorType: e.g. "auth_failed", "invalid_payload", "processing_error"
	RecordWebhookError(errorType string)

	// RecordAPICall records an outbound API call to Stripe.
	// endpoint: the API endpoint called (e.g., "/customers/{id}")
	// status: "success" or "error"
	RecordAPICall(endpoint, status string)

	// RecordAPICallDuration records how long an outbound API call took.
	RecordAPICallDuration(endpoint string, duration time.Duration)

	// RecordUserSync records an on-demand reconciliation run.
	// status: "success" or "error"
	RecordUserSync(status string)

	// RecordUserSyncDuration records how long a reconciliation run took.
	RecordUserSyncDuration(duration time.Duration)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordWebhookEvent(_, _ string)                            {}
func (n *NoopMetrics) RecordWebhookProcessingDuration(_ string, _ time.Duration) {}
func (n *NoopMetrics) RecordWebhookError(_ string)                               {}
func (n *NoopMetrics) RecordAPICall(_, _ string)                                 {}
func (n *NoopMetrics) RecordAPICallDuration(_ string, _ time.Duration)           {}
func (n *NoopMetrics) RecordUserSync(_ string)                                   {}
func (n *NoopMetrics) RecordUserSyncDuration(_ time.Duration)                    {}
