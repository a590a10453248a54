package scenarios_test

import (
	"testing"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/normalize"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/scenarios"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/store"
)

// replay pushes every scenario step through the normalize-and-correlate
// pipeline and returns the incidents touched.
func replay(t *testing.T, steps []scenarios.Step) []*triage.Incident {
	t.Helper()

	engine := triage.NewEngine(store.NewMemoryStore(), nil, triage.DefaultConfig())
	normalizer := normalize.NewNormalizer()

	seen := make(map[string]bool)
	var incidents []*triage.Incident
	for _, step := range steps {
		events := normalizer.Normalize(step.Provider, step.Payload)
		if len(events) == 0 {
			t.Fatalf("Step for %s produced no events", step.Provider)
		}
		for _, inc := range engine.IngestBatch(events) {
			if !seen[inc.ID] {
				seen[inc.ID] = true
				incidents = append(incidents, inc)
			}
		}
	}
	return incidents
}

func TestGet(t *testing.T) {
	for _, name := range []string{"saturation_only", "saturation-only", "full_outage", "outage", "FULL_OUTAGE"} {
		if _, err := scenarios.Get(name); err != nil {
			t.Errorf("Get(%q) returned error: %v", name, err)
		}
	}
	if _, err := scenarios.Get("nope"); err == nil {
		t.Error("Expected error for unknown scenario")
	}
}

// The saturation-only scenario must end as a capacity warning with no
// user-facing impact, even though saturation is past its threshold.
func TestSaturationOnlyScenario(t *testing.T) {
	steps := scenarios.SaturationOnly("checkout", "prod")
	incidents := replay(t, steps)

	if len(incidents) != 1 {
		t.Fatalf("Expected all steps to correlate into 1 incident, got %d", len(incidents))
	}

	inc := incidents[0]
	if inc.Impact.Impact != triage.ImpactNone {
		t.Errorf("Impact = %s, want none", inc.Impact.Impact)
	}
	if inc.Impact.Classification != "capacity_warning" {
		t.Errorf("Classification = %s, want capacity_warning", inc.Impact.Classification)
	}
	if inc.Status != triage.StatusWatch {
		t.Errorf("Status = %s, want watch", inc.Status)
	}

	sat := inc.Signals[triage.SignalSaturation]
	if sat == nil || sat.State != triage.StateCritical {
		t.Errorf("Expected critical saturation signal, got %+v", sat)
	}
	if lat := inc.Signals[triage.SignalLatency]; lat == nil || lat.State != triage.StateOK {
		t.Errorf("Expected ok latency signal, got %+v", lat)
	}
	if errs := inc.Signals[triage.SignalErrors]; errs == nil || errs.State != triage.StateOK {
		t.Errorf("Expected ok errors signal, got %+v", errs)
	}
}

// The full-outage scenario must classify as a major user-facing outage.
func TestFullOutageScenario(t *testing.T) {
	steps := scenarios.FullOutage("checkout", "prod")
	incidents := replay(t, steps)

	if len(incidents) != 1 {
		t.Fatalf("Expected all steps to correlate into 1 incident, got %d", len(incidents))
	}

	inc := incidents[0]
	if inc.Impact.Impact != triage.ImpactMajor {
		t.Errorf("Impact = %s, want major", inc.Impact.Impact)
	}
	if inc.Impact.Classification != "outage" {
		t.Errorf("Classification = %s, want outage", inc.Impact.Classification)
	}
	if inc.Impact.Confidence != 0.9 {
		t.Errorf("Confidence = %g, want 0.9", inc.Impact.Confidence)
	}
	if inc.Status != triage.StatusInvestigating {
		t.Errorf("Status = %s, want investigating", inc.Status)
	}
	if len(inc.Alerts) != 3 {
		t.Errorf("Expected 3 alerts, got %d", len(inc.Alerts))
	}
}

// Replaying a scenario twice within the dedupe window must not double the
// incident's alert list.
func TestScenarioReplayIsIdempotent(t *testing.T) {
	engine := triage.NewEngine(store.NewMemoryStore(), nil, triage.DefaultConfig())
	normalizer := normalize.NewNormalizer()

	steps := scenarios.FullOutage("checkout", "prod")
	var last *triage.Incident
	for round := 0; round < 2; round++ {
		for _, step := range steps {
			for _, inc := range engine.IngestBatch(normalizer.Normalize(step.Provider, step.Payload)) {
				last = inc
			}
		}
	}

	if last == nil {
		t.Fatal("Expected an incident")
	}
	if len(last.Alerts) != 3 {
		t.Errorf("Expected 3 alerts after replaying twice, got %d", len(last.Alerts))
	}
}
