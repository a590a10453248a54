package normalize

import (
	"encoding/json"
	"testing"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

func decodePayload(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	return payload
}

func TestPrometheusAdapter_Normalize(t *testing.T) {
	adapter := NewPrometheusAdapter()

	payload := decodePayload(t, `{
		"version": "4",
		"status": "firing",
		"alerts": [
			{
				"status": "firing",
				"labels": {
					"alertname": "HighErrorRate",
					"service": "checkout",
					"env": "prod",
					"severity": "critical",
					"instance": "checkout-7d9f"
				},
				"annotations": {
					"summary": "Error rate is 7.2%, above the 1% threshold",
					"observed": "7.2",
					"threshold": "1.0",
					"unit": "%"
				},
				"startsAt": "2024-01-15T10:30:00Z",
				"generatorURL": "http://prometheus/graph?g0.expr=..."
			},
			{
				"status": "firing",
				"labels": {
					"alertname": "CheckoutLatencyP99",
					"service": "checkout",
					"env": "prod",
					"severity": "warning"
				},
				"annotations": {}
			}
		]
	}`)

	events := adapter.Normalize(payload)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	ev := events[0]
	if ev.Provider != triage.ProviderPrometheus {
		t.Errorf("Provider = %s, want prometheus", ev.Provider)
	}
	if ev.Service != "checkout" || ev.Env != "prod" {
		t.Errorf("Scoped to %s/%s, want checkout/prod", ev.Service, ev.Env)
	}
	if ev.SignalType != triage.SignalErrors {
		t.Errorf("SignalType = %s, want errors", ev.SignalType)
	}
	if ev.Severity != triage.SeverityCritical {
		t.Errorf("Severity = %s, want critical", ev.Severity)
	}
	if ev.Observed == nil || *ev.Observed != 7.2 {
		t.Errorf("Observed = %v, want 7.2", ev.Observed)
	}
	if ev.Threshold == nil || *ev.Threshold != 1.0 {
		t.Errorf("Threshold = %v, want 1.0", ev.Threshold)
	}
	if ev.Unit != "%" {
		t.Errorf("Unit = %q, want %%", ev.Unit)
	}
	if ev.StartsAt == nil {
		t.Error("Expected startsAt to be parsed")
	}
	if ev.Fingerprint == "" || ev.ID == "" {
		t.Error("Expected fingerprint and id to be set")
	}
	if ev.Message != "Error rate is 7.2%, above the 1% threshold" {
		t.Errorf("Message = %q", ev.Message)
	}

	if events[1].SignalType != triage.SignalLatency {
		t.Errorf("Second event SignalType = %s, want latency", events[1].SignalType)
	}
	if events[1].Observed != nil {
		t.Error("Expected nil observed when annotations carry no value")
	}
	if events[0].Fingerprint == events[1].Fingerprint {
		t.Error("Different alerts must not share a fingerprint")
	}
}

func TestPrometheusAdapter_StableFingerprintAcrossCalls(t *testing.T) {
	adapter := NewPrometheusAdapter()
	payload := decodePayload(t, `{
		"alerts": [
			{
				"labels": {"alertname": "HighErrorRate", "service": "checkout", "env": "prod", "instance": "i-1"},
				"annotations": {}
			}
		]
	}`)

	a := adapter.Normalize(payload)
	b := adapter.Normalize(payload)
	if a[0].Fingerprint != b[0].Fingerprint {
		t.Error("Same alert must produce the same fingerprint on every delivery")
	}
	if a[0].ID == b[0].ID {
		t.Error("Event IDs must be unique per delivery")
	}
}

func TestPrometheusAdapter_EmptyAlerts(t *testing.T) {
	adapter := NewPrometheusAdapter()
	if events := adapter.Normalize(map[string]interface{}{"alerts": []interface{}{}}); len(events) != 0 {
		t.Errorf("Expected no events, got %d", len(events))
	}
	if events := adapter.Normalize(map[string]interface{}{}); len(events) != 0 {
		t.Errorf("Expected no events without alerts array, got %d", len(events))
	}
}
