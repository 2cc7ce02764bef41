// Package prommetrics provides a Prometheus implementation of the
// subsync.Metrics interface.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mihaimyh/subsync/pkg/subsync"
)

// Metrics implements subsync.Metrics using Prometheus.
type Metrics struct {
	webhookEventsTotal        *prometheus.CounterVec
	webhookProcessingDuration *prometheus.HistogramVec
	webhookErrorsTotal        *prometheus.CounterVec
	apiCallsTotal             *prometheus.CounterVec
	apiCallDuration           *prometheus.HistogramVec
	userSyncTotal             *prometheus.CounterVec
	userSyncDuration          prometheus.Histogram
}

// NewMetrics creates a new Prometheus metrics implementation for the webhook
// pipeline.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		webhookEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subsync",
			Name:      "webhook_events_total",
			Help:      "Total number of webhook events received, by type and outcome.",
		}, []string{"event_type", "outcome"}),

		webhookProcessingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "subsync",
			Name:      "webhook_processing_duration_seconds",
			Help:      "Duration of webhook processing in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),

		webhookErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subsync",
			Name:      "webhook_errors_total",
			Help:      "Total number of webhook processing errors.",
		}, []string{"error_type"}),

		apiCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subsync",
			Name:      "api_calls_total",
			Help:      "Total number of outbound Stripe API calls.",
		}, []string{"endpoint", "status"}),

		apiCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "subsync",
			Name:      "api_call_duration_seconds",
			Help:      "Duration of outbound Stripe API calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		userSyncTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subsync",
			Name:      "user_sync_total",
			Help:      "Total number of on-demand reconciliation runs.",
		}, []string{"status"}),

		userSyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "subsync",
			Name:      "user_sync_duration_seconds",
			Help:      "Duration of on-demand reconciliation runs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// DefaultMetrics creates a metrics implementation registered on the global
// Prometheus registry.
func DefaultMetrics(namespace string) *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace)
}

func (m *Metrics) RecordWebhookEvent(eventType, outcome string) {
	m.webhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RecordWebhookProcessingDuration(eventType string, duration time.Duration) {
	m.webhookProcessingDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *Metrics) RecordWebhookError(errorType string) {
	m.webhookErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) RecordAPICall(endpoint, status string) {
	m.apiCallsTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) RecordAPICallDuration(endpoint string, duration time.Duration) {
	m.apiCallDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) RecordUserSync(status string) {
	m.userSyncTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordUserSyncDuration(duration time.Duration) {
	m.userSyncDuration.Observe(duration.Seconds())
}

// Interface compliance check.
var _ subsync.Metrics = (*Metrics)(nil)
