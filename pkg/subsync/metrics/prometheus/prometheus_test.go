package prommetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusMetrics_NewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	if metrics == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestPrometheusMetrics_RecordWebhookEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookEvent("customer.subscription.updated", "applied")
	metrics.RecordWebhookEvent("customer.subscription.deleted", "applied")
	metrics.RecordWebhookEvent("charge.refunded", "ignored")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	var eventsMetric *dto.MetricFamily
	for _, m := range families {
		if m.GetName() == "test_subsync_webhook_events_total" {
			eventsMetric = m
			break
		}
	}
	if eventsMetric == nil {
		t.Fatal("Expected to find webhook events metric")
	}
	if len(eventsMetric.Metric) != 3 {
		t.Errorf("Expected 3 time series, got %d", len(eventsMetric.Metric))
	}
}

func TestPrometheusMetrics_RecordWebhookProcessingDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookProcessingDuration("customer.subscription.updated", 50*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("Expected duration metrics to be recorded")
	}
}

func TestPrometheusMetrics_RecordWebhookError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookError("auth_failed")
	metrics.RecordWebhookError("payload_too_large")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("Expected error metrics to be recorded")
	}
}

func TestPrometheusMetrics_RecordAPICall(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordAPICall("customers.retrieve", "success")
	metrics.RecordAPICall("prices.retrieve", "error")
	metrics.RecordAPICallDuration("customers.retrieve", 20*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) < 2 {
		t.Errorf("Expected API call counter and histogram, got %d families", len(families))
	}
}

func TestPrometheusMetrics_RecordUserSync(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordUserSync("success")
	metrics.RecordUserSync("not_found")
	metrics.RecordUserSyncDuration(120 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) < 2 {
		t.Errorf("Expected sync counter and histogram, got %d families", len(families))
	}
}

func TestPrometheusMetrics_MultipleOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookEvent("customer.subscription.created", "applied")
	metrics.RecordWebhookProcessingDuration("customer.subscription.created", 5*time.Millisecond)
	metrics.RecordWebhookError("invalid_payload")
	metrics.RecordAPICall("products.retrieve", "success")
	metrics.RecordAPICallDuration("products.retrieve", 10*time.Millisecond)
	metrics.RecordUserSync("success")
	metrics.RecordUserSyncDuration(30 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) < 5 {
		t.Errorf("Expected at least 5 metric families, got %d", len(families))
	}
}
