package subsync

import (
	"errors"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/mihaimyh/subsync/pkg/subsync/internal"
)

// maxWebhookBodySize bounds the webhook payload to protect against memory
// exhaustion. Stripe payloads are small.
const maxWebhookBodySize = 256 * 1024

// ackResponse is the body Stripe receives for any outcome that should not be
// redelivered.
type ackResponse struct {
	Received bool `json:"received"`
}

// responseStatus is the explicit outcome-to-status policy. Terminal outcomes
// are acknowledged so Stripe stops retrying; only transient failures surface
// as a server error so Stripe's delivery retry can recover them. New event
// types classify as ignored and therefore default to acknowledged.
var responseStatus = map[Outcome]int{
	OutcomeApplied: http.StatusOK,
	OutcomeIgnored: http.StatusOK,
	OutcomeSkipped: http.StatusOK,
	OutcomeRetry:   http.StatusInternalServerError,
}

// WebhookHandler returns the HTTP handler for Stripe webhook events,
// wrapped with per-IP rate limiting.
func (p *Processor) WebhookHandler() http.Handler {
	return p.rateLimiter.Middleware(http.HandlerFunc(p.handleWebhook))
}

func (p *Processor) handleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	setSecurityHeaders(w)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(p.webhookSecret) == 0 {
		http.Error(w, "webhook not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := internal.ReadBodyStrict(w, r, maxWebhookBodySize)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			p.metrics.RecordWebhookError("payload_too_large")
		} else {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			p.metrics.RecordWebhookError("invalid_payload")
		}
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		sig = r.Header.Get("stripe-signature")
	}

	// Verification runs over the exact raw bytes, before the body is parsed
	// as trusted data. This is the sole trust boundary: nothing past this
	// point runs for an unauthenticated payload.
	event, err := stripe.ConstructEvent(body, sig, string(p.webhookSecret))
	if err != nil {
		p.logger.Warn("webhook signature verification failed",
			Field{Key: "error", Value: ErrInvalidSignature.Error()},
		)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		p.metrics.RecordWebhookError("auth_failed")
		return
	}

	eventType := string(event.Type)
	if eventType == "" {
		eventType = "UNKNOWN"
	}

	outcome, _ := p.Process(r.Context(), &event)

	status := responseStatus[outcome]
	if status == http.StatusOK {
		if err := internal.WriteJSON(w, http.StatusOK, ackResponse{Received: true}); err != nil {
			return
		}
	} else {
		http.Error(w, "failed to process webhook", status)
		p.metrics.RecordWebhookError("processing_error")
	}

	p.metrics.RecordWebhookEvent(eventType, outcome.String())
	p.metrics.RecordWebhookProcessingDuration(eventType, time.Since(startTime))
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
