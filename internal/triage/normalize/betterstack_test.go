package normalize

import (
	"testing"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

func TestBetterStackAdapter_WrappedIncident(t *testing.T) {
	adapter := NewBetterStackAdapter()

	payload := decodePayload(t, `{
		"source": "betterstack",
		"incident": {
			"id": "bs-999",
			"name": "Error rate above threshold",
			"service": "checkout",
			"env": "prod",
			"severity": "critical",
			"observed": 7.2,
			"threshold": 1.0,
			"unit": "%",
			"started_at": "2024-01-15T10:30:00Z",
			"url": "https://betterstack.example/incidents/bs-999"
		}
	}`)

	events := adapter.Normalize(payload)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Provider != triage.ProviderBetterStack {
		t.Errorf("Provider = %s, want betterstack", ev.Provider)
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
	if ev.StartsAt == nil {
		t.Error("Expected started_at to be parsed")
	}
}

func TestBetterStackAdapter_TopLevelIncident(t *testing.T) {
	adapter := NewBetterStackAdapter()

	payload := decodePayload(t, `{
		"id": "bs-7",
		"title": "DB pool exhaustion",
		"service": "checkout",
		"status": "critical",
		"labels": {"signal_type": "saturation"}
	}`)

	events := adapter.Normalize(payload)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.SignalType != triage.SignalSaturation {
		t.Errorf("SignalType = %s, want saturation from explicit label", ev.SignalType)
	}
	if ev.Severity != triage.SeverityCritical {
		t.Errorf("Severity = %s, want critical from status", ev.Severity)
	}
	if ev.Env != "prod" {
		t.Errorf("Env = %s, want prod default", ev.Env)
	}
}

func TestGenericAdapter_Normalize(t *testing.T) {
	adapter := NewGenericAdapter()

	payload := decodePayload(t, `{
		"service": "search",
		"env": "staging",
		"name": "High p99 latency",
		"severity": "warning",
		"observed": 950,
		"threshold": 800,
		"unit": "ms"
	}`)

	events := adapter.Normalize(payload)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Provider != triage.ProviderGeneric {
		t.Errorf("Provider = %s, want generic", ev.Provider)
	}
	if ev.Service != "search" || ev.Env != "staging" {
		t.Errorf("Scoped to %s/%s, want search/staging", ev.Service, ev.Env)
	}
	if ev.SignalType != triage.SignalLatency {
		t.Errorf("SignalType = %s, want latency", ev.SignalType)
	}
	if ev.Fingerprint == "" {
		t.Error("Expected a fingerprint")
	}
}

func TestNormalizer_RoutesAndFallsBack(t *testing.T) {
	n := NewNormalizer()

	// Hint wins over shape.
	events := n.Normalize(triage.ProviderGeneric, map[string]interface{}{
		"alerts":  []interface{}{},
		"service": "checkout",
		"name":    "weird shape",
	})
	if len(events) != 1 || events[0].Provider != triage.ProviderGeneric {
		t.Errorf("Expected hint to pick the generic adapter, got %v", events)
	}

	// No hint: detection picks prometheus from the alerts array.
	events = n.Normalize("", decodePayload(t, `{
		"alerts": [{"labels": {"alertname": "HighErrorRate", "service": "checkout"}}]
	}`))
	if len(events) != 1 || events[0].Provider != triage.ProviderPrometheus {
		t.Errorf("Expected detection to pick prometheus, got %v", events)
	}

	// Non-object payloads normalize to nothing.
	if events := n.Normalize("", "just a string"); events != nil {
		t.Errorf("Expected nil for non-object payload, got %v", events)
	}
}
