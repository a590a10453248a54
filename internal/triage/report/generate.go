// Package report renders deterministic situation reports for incidents:
// a structured report object, per-classification runbook suggestions, and
// text/markdown/json renderers.
package report

import (
	"time"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// Format selects the report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat maps a string to a known Format.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatText, FormatMarkdown, FormatJSON:
		return Format(s), true
	}
	return "", false
}

// SignalLine is one signal row in a report.
type SignalLine struct {
	SignalType triage.SignalType  `json:"signalType"`
	State      triage.SignalState `json:"state"`
	Trend      triage.Trend       `json:"trend"`
	Observed   *float64           `json:"observed,omitempty"`
	Threshold  *float64           `json:"threshold,omitempty"`
	Unit       string             `json:"unit,omitempty"`
}

// TimelineEntry is one recent alert in a report. The report windows the
// incident's alert list; the incident itself is never truncated.
type TimelineEntry struct {
	ReceivedAt time.Time         `json:"receivedAt"`
	Provider   triage.Provider   `json:"provider"`
	Severity   triage.Severity   `json:"severity"`
	SignalType triage.SignalType `json:"signalType"`
	Message    string            `json:"message,omitempty"`
	Observed   *float64          `json:"observed,omitempty"`
	Threshold  *float64          `json:"threshold,omitempty"`
	Unit       string            `json:"unit,omitempty"`
}

// Report is the deterministic situation report for one incident.
type Report struct {
	IncidentID   string                  `json:"incidentId"`
	Service      string                  `json:"service"`
	Env          string                  `json:"env"`
	Status       triage.IncidentStatus   `json:"status"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	Impact       triage.ImpactAssessment `json:"impact"`
	Summary      string                  `json:"summary"`
	Signals      []SignalLine            `json:"signals"`
	RecentAlerts []TimelineEntry         `json:"recentAlerts"`
	Runbook      []RunbookStep           `json:"runbook"`
}

// timelineWindow bounds how many recent alerts a report includes.
const timelineWindow = 10

// signalOrder fixes the rendering order of signal rows.
var signalOrder = []triage.SignalType{
	triage.SignalErrors,
	triage.SignalLatency,
	triage.SignalSaturation,
	triage.SignalOther,
}

// Generate builds the report object for an incident.
func Generate(incident *triage.Incident) *Report {
	var signals []SignalLine
	for _, st := range signalOrder {
		snap := incident.Signals[st]
		if snap == nil {
			continue
		}
		signals = append(signals, SignalLine{
			SignalType: snap.SignalType,
			State:      snap.State,
			Trend:      snap.Trend,
			Observed:   snap.Observed,
			Threshold:  snap.Threshold,
			Unit:       snap.Unit,
		})
	}

	alerts := incident.Alerts
	if len(alerts) > timelineWindow {
		alerts = alerts[len(alerts)-timelineWindow:]
	}
	recent := make([]TimelineEntry, 0, len(alerts))
	for _, a := range alerts {
		recent = append(recent, TimelineEntry{
			ReceivedAt: a.ReceivedAt,
			Provider:   a.Provider,
			Severity:   a.Severity,
			SignalType: a.SignalType,
			Message:    a.Message,
			Observed:   a.Observed,
			Threshold:  a.Threshold,
			Unit:       a.Unit,
		})
	}

	return &Report{
		IncidentID:   incident.ID,
		Service:      incident.Service,
		Env:          incident.Env,
		Status:       incident.Status,
		GeneratedAt:  time.Now().UTC(),
		Impact:       incident.Impact,
		Summary:      incident.Impact.Summary,
		Signals:      signals,
		RecentAlerts: recent,
		Runbook:      SuggestRunbookSteps(incident.Impact.Classification),
	}
}
