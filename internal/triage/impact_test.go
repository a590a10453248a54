package triage

import (
	"testing"
)

// snap is a test helper for building signal snapshots.
func snap(st SignalType, state SignalState, trend Trend) *SignalSnapshot {
	return &SignalSnapshot{SignalType: st, State: state, Trend: trend}
}

func incidentWith(signals ...*SignalSnapshot) *Incident {
	inc := NewIncident("test-incident", "checkout", "prod")
	for _, s := range signals {
		inc.Signals[s.SignalType] = s
	}
	inc.Alerts = append(inc.Alerts, AlertEvent{Fingerprint: "x"})
	return inc
}

func TestAssessIncident_Classifications(t *testing.T) {
	tests := []struct {
		name           string
		signals        []*SignalSnapshot
		wantImpact     ImpactLevel
		wantConfidence float64
		wantClass      string
	}{
		{
			name: "errors and latency critical is an outage",
			signals: []*SignalSnapshot{
				snap(SignalErrors, StateCritical, TrendUp),
				snap(SignalLatency, StateCritical, TrendUp),
				snap(SignalSaturation, StateCritical, TrendUp),
			},
			wantImpact: ImpactMajor, wantConfidence: 0.9, wantClass: "outage",
		},
		{
			name:       "errors critical alone",
			signals:    []*SignalSnapshot{snap(SignalErrors, StateCritical, TrendFlat)},
			wantImpact: ImpactMajor, wantConfidence: 0.8, wantClass: "error_spike",
		},
		{
			name:       "latency critical alone",
			signals:    []*SignalSnapshot{snap(SignalLatency, StateCritical, TrendFlat)},
			wantImpact: ImpactMajor, wantConfidence: 0.8, wantClass: "latency_degradation",
		},
		{
			name: "saturation critical with latency trending up",
			signals: []*SignalSnapshot{
				snap(SignalSaturation, StateCritical, TrendUp),
				snap(SignalLatency, StateOK, TrendUp),
			},
			wantImpact: ImpactMinor, wantConfidence: 0.7, wantClass: "degradation_possible",
		},
		{
			name: "saturation critical with warning errors",
			signals: []*SignalSnapshot{
				snap(SignalSaturation, StateCritical, TrendFlat),
				snap(SignalErrors, StateWarning, TrendFlat),
			},
			wantImpact: ImpactMinor, wantConfidence: 0.7, wantClass: "degradation_possible",
		},
		{
			name:       "saturation critical alone stays capacity warning",
			signals:    []*SignalSnapshot{snap(SignalSaturation, StateCritical, TrendUp)},
			wantImpact: ImpactNone, wantConfidence: 0.65, wantClass: "capacity_warning",
		},
		{
			name:       "warning latency is investigate",
			signals:    []*SignalSnapshot{snap(SignalLatency, StateWarning, TrendFlat)},
			wantImpact: ImpactMinor, wantConfidence: 0.6, wantClass: "investigate",
		},
		{
			name:       "all quiet is healthy",
			signals:    []*SignalSnapshot{snap(SignalErrors, StateOK, TrendFlat)},
			wantImpact: ImpactNone, wantConfidence: 0.55, wantClass: "healthy",
		},
		{
			name:       "no signals at all is healthy",
			signals:    nil,
			wantImpact: ImpactNone, wantConfidence: 0.55, wantClass: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessIncident(incidentWith(tt.signals...))
			if got.Impact != tt.wantImpact {
				t.Errorf("Impact = %s, want %s", got.Impact, tt.wantImpact)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %g, want %g", got.Confidence, tt.wantConfidence)
			}
			if got.Classification != tt.wantClass {
				t.Errorf("Classification = %s, want %s", got.Classification, tt.wantClass)
			}
			if got.Summary == "" {
				t.Error("Expected non-empty summary")
			}
		})
	}
}

// Saturation on its own must never escalate the user-facing impact, however
// extreme the value, as long as latency and errors stay normal.
func TestAssessIncident_SaturationAloneNeverUserImpact(t *testing.T) {
	inc := incidentWith(
		snap(SignalSaturation, StateCritical, TrendUp),
		snap(SignalErrors, StateOK, TrendFlat),
		snap(SignalLatency, StateOK, TrendDown),
	)

	got := AssessIncident(inc)
	if got.Impact != ImpactNone {
		t.Errorf("Impact = %s, want %s", got.Impact, ImpactNone)
	}
	if got.Classification != "capacity_warning" {
		t.Errorf("Classification = %s, want capacity_warning", got.Classification)
	}
}

// Outage must win over every other rule when its conditions hold.
func TestAssessIncident_OutagePrecedence(t *testing.T) {
	inc := incidentWith(
		snap(SignalErrors, StateCritical, TrendUp),
		snap(SignalLatency, StateCritical, TrendUp),
		snap(SignalSaturation, StateCritical, TrendUp),
		snap(SignalOther, StateWarning, TrendFlat),
	)

	got := AssessIncident(inc)
	if got.Classification != "outage" {
		t.Errorf("Classification = %s, want outage", got.Classification)
	}
}

func TestDeriveStatus(t *testing.T) {
	withAlerts := incidentWith()

	empty := NewIncident("empty", "checkout", "prod")

	tests := []struct {
		name     string
		impact   ImpactAssessment
		incident *Incident
		previous ImpactLevel
		want     IncidentStatus
	}{
		{
			name:     "major impact investigates",
			impact:   ImpactAssessment{Impact: ImpactMajor, Classification: "outage"},
			incident: withAlerts, previous: ImpactNone,
			want: StatusInvestigating,
		},
		{
			name:     "minor impact investigates",
			impact:   ImpactAssessment{Impact: ImpactMinor, Classification: "investigate"},
			incident: withAlerts, previous: ImpactNone,
			want: StatusInvestigating,
		},
		{
			name:     "capacity warning watches",
			impact:   ImpactAssessment{Impact: ImpactNone, Classification: "capacity_warning"},
			incident: withAlerts, previous: ImpactNone,
			want: StatusWatch,
		},
		{
			name:     "recovery from major resolves",
			impact:   ImpactAssessment{Impact: ImpactNone, Classification: "healthy"},
			incident: withAlerts, previous: ImpactMajor,
			want: StatusResolved,
		},
		{
			name:     "recovery from minor resolves",
			impact:   ImpactAssessment{Impact: ImpactNone, Classification: "healthy"},
			incident: withAlerts, previous: ImpactMinor,
			want: StatusResolved,
		},
		{
			name:     "healthy without prior impact keeps watching",
			impact:   ImpactAssessment{Impact: ImpactNone, Classification: "healthy"},
			incident: withAlerts, previous: ImpactNone,
			want: StatusWatch,
		},
		{
			name:     "healthy with no alerts resolves",
			impact:   ImpactAssessment{Impact: ImpactNone, Classification: "healthy"},
			incident: empty, previous: ImpactNone,
			want: StatusResolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.impact, tt.incident, tt.previous); got != tt.want {
				t.Errorf("DeriveStatus = %s, want %s", got, tt.want)
			}
		})
	}
}
