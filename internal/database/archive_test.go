package database

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&IncidentRecord{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return NewArchive(db)
}

func fp(v float64) *float64 {
	return &v
}

func archivedIncident(id string, status triage.IncidentStatus, updatedAt time.Time) *triage.Incident {
	inc := triage.NewIncident(id, "checkout", "prod")
	inc.Status = status
	inc.UpdatedAt = updatedAt
	inc.Impact = triage.ImpactAssessment{
		Impact:         triage.ImpactMajor,
		Confidence:     0.8,
		Classification: "error_spike",
		Summary:        "Likely user-facing issue: error rate is critical.",
	}
	inc.Signals[triage.SignalErrors] = &triage.SignalSnapshot{
		SignalType: triage.SignalErrors,
		State:      triage.StateCritical,
		Trend:      triage.TrendUp,
		Observed:   fp(7.2),
		Threshold:  fp(1.0),
		Unit:       "%",
		History:    []float64{2.1, 4.4, 7.2},
	}
	inc.Alerts = []triage.AlertEvent{{
		ID:          "ev-1",
		Provider:    triage.ProviderPrometheus,
		Service:     "checkout",
		Env:         "prod",
		Severity:    triage.SeverityCritical,
		SignalType:  triage.SignalErrors,
		Fingerprint: "fp-1",
	}}
	return inc
}

func TestSaveAndGetIncident(t *testing.T) {
	a := newTestArchive(t)

	inc := archivedIncident("inc-arch", triage.StatusInvestigating, time.Now().UTC())
	if err := a.SaveIncident(inc); err != nil {
		t.Fatalf("SaveIncident returned error: %v", err)
	}

	got, err := a.GetIncident("inc-arch")
	if err != nil {
		t.Fatalf("GetIncident returned error: %v", err)
	}
	if got == nil {
		t.Fatal("Expected incident, got nil")
	}
	if got.Service != "checkout" || got.Env != "prod" {
		t.Errorf("Scoped to %s/%s, want checkout/prod", got.Service, got.Env)
	}
	if got.Impact.Classification != "error_spike" {
		t.Errorf("Classification = %s, want error_spike", got.Impact.Classification)
	}

	errs := got.Signals[triage.SignalErrors]
	if errs == nil {
		t.Fatal("Expected errors signal to round-trip")
	}
	if errs.State != triage.StateCritical || errs.Trend != triage.TrendUp {
		t.Errorf("Signal state/trend = %s/%s", errs.State, errs.Trend)
	}
	if len(errs.History) != 3 || errs.History[2] != 7.2 {
		t.Errorf("History = %v", errs.History)
	}
	if len(got.Alerts) != 1 || got.Alerts[0].Fingerprint != "fp-1" {
		t.Errorf("Alerts = %+v", got.Alerts)
	}
}

func TestGetIncident_Missing(t *testing.T) {
	a := newTestArchive(t)

	got, err := a.GetIncident("missing")
	if err != nil {
		t.Fatalf("Expected no error for missing incident, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestSaveIncident_UpdatesInPlace(t *testing.T) {
	a := newTestArchive(t)

	inc := archivedIncident("inc-upd", triage.StatusWatch, time.Now().UTC())
	if err := a.SaveIncident(inc); err != nil {
		t.Fatalf("SaveIncident returned error: %v", err)
	}

	inc.Status = triage.StatusResolved
	inc.ResolutionStatus = triage.ResolutionResolved
	if err := a.SaveIncident(inc); err != nil {
		t.Fatalf("Second SaveIncident returned error: %v", err)
	}

	var count int64
	a.db.Model(&IncidentRecord{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 record after update, got %d", count)
	}

	got, err := a.GetIncident("inc-upd")
	if err != nil {
		t.Fatalf("GetIncident returned error: %v", err)
	}
	if got.Status != triage.StatusResolved {
		t.Errorf("Status = %s, want resolved", got.Status)
	}
	if got.ResolutionStatus != triage.ResolutionResolved {
		t.Errorf("ResolutionStatus = %s, want resolved", got.ResolutionStatus)
	}
}

func TestListRecentAndLoadOpen(t *testing.T) {
	a := newTestArchive(t)
	now := time.Now().UTC()

	open := archivedIncident("inc-open", triage.StatusInvestigating, now)
	older := archivedIncident("inc-older", triage.StatusWatch, now.Add(-time.Hour))
	closed := archivedIncident("inc-closed", triage.StatusResolved, now.Add(-30*time.Minute))

	for _, inc := range []*triage.Incident{older, closed, open} {
		if err := a.SaveIncident(inc); err != nil {
			t.Fatalf("SaveIncident returned error: %v", err)
		}
	}

	recent, err := a.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 incidents, got %d", len(recent))
	}
	if recent[0].ID != "inc-open" {
		t.Errorf("Expected newest first, got %s", recent[0].ID)
	}

	limited, err := a.ListRecent(1)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected limit respected, got %d", len(limited))
	}

	openIncs, err := a.LoadOpen()
	if err != nil {
		t.Fatalf("LoadOpen returned error: %v", err)
	}
	if len(openIncs) != 2 {
		t.Fatalf("Expected 2 open incidents, got %d", len(openIncs))
	}
	for _, inc := range openIncs {
		if inc.Status == triage.StatusResolved {
			t.Errorf("LoadOpen returned resolved incident %s", inc.ID)
		}
	}
}

func TestJSONB_ScanValue(t *testing.T) {
	var j JSONB
	if err := j.Scan([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("Scan bytes returned error: %v", err)
	}
	if err := j.Scan(`{"b":2}`); err != nil {
		t.Fatalf("Scan string returned error: %v", err)
	}

	v, err := j.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if v == nil {
		t.Error("Expected non-nil driver value")
	}
}
