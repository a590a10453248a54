// Package triage implements the alert correlation and impact classification
// pipeline: normalized alert events are correlated into time-windowed
// incidents per (service, env), each incident tracks a rolling health
// snapshot per signal type, and a deterministic rule set classifies the
// aggregate business impact.
package triage

import "time"

// Provider identifies the monitoring system an alert came from.
type Provider string

const (
	ProviderPrometheus  Provider = "prometheus"
	ProviderDatadog     Provider = "datadog"
	ProviderBetterStack Provider = "betterstack"
	ProviderGeneric     Provider = "generic"
)

// ParseProvider maps a provider name to a known Provider. Returns the zero
// value and false for unknown or empty names.
func ParseProvider(name string) (Provider, bool) {
	switch Provider(name) {
	case ProviderPrometheus, ProviderDatadog, ProviderBetterStack, ProviderGeneric:
		return Provider(name), true
	}
	return "", false
}

// SignalType categorizes what kind of health metric an alert describes.
type SignalType string

const (
	SignalSaturation SignalType = "saturation"
	SignalLatency    SignalType = "latency"
	SignalErrors     SignalType = "errors"
	SignalOther      SignalType = "other"
)

// Severity is the provider-reported severity of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SignalState is the computed health state of one signal type.
type SignalState string

const (
	StateOK       SignalState = "ok"
	StateWarning  SignalState = "warning"
	StateCritical SignalState = "critical"
)

// Trend describes the short-term direction of a signal's observed values.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = "unknown"
)

// IncidentStatus is the lifecycle status of an incident.
type IncidentStatus string

const (
	StatusWatch         IncidentStatus = "watch"
	StatusInvestigating IncidentStatus = "investigating"
	StatusMitigating    IncidentStatus = "mitigating"
	StatusResolved      IncidentStatus = "resolved"
)

// ImpactLevel is the classifier's estimate of user-facing severity.
type ImpactLevel string

const (
	ImpactNone  ImpactLevel = "none"
	ImpactMinor ImpactLevel = "minor"
	ImpactMajor ImpactLevel = "major"
)

// ResolutionStatus records how an incident was closed by an operator.
type ResolutionStatus string

const (
	ResolutionNone       ResolutionStatus = "none"
	ResolutionResolved   ResolutionStatus = "resolved"
	ResolutionAutoClosed ResolutionStatus = "auto_closed"
	ResolutionFalseAlert ResolutionStatus = "false_alert"
	ResolutionAccepted   ResolutionStatus = "accepted" // accepted / won't fix
)

// ParseResolutionStatus maps a string to a known ResolutionStatus.
func ParseResolutionStatus(s string) (ResolutionStatus, bool) {
	switch ResolutionStatus(s) {
	case ResolutionNone, ResolutionResolved, ResolutionAutoClosed, ResolutionFalseAlert, ResolutionAccepted:
		return ResolutionStatus(s), true
	}
	return "", false
}

// AlertEvent is one normalized observation from a monitoring provider.
// Events are immutable once constructed; the engine never mutates them.
type AlertEvent struct {
	ID         string    `json:"id"`
	Provider   Provider  `json:"provider"`
	ReceivedAt time.Time `json:"receivedAt"`

	// Provider-reported lifecycle, when the payload carries one.
	StartsAt *time.Time `json:"startsAt,omitempty"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`

	Service string `json:"service"`
	Env     string `json:"env"`

	Severity   Severity   `json:"severity"`
	SignalType SignalType `json:"signalType"`

	Metric    string   `json:"metric,omitempty"`
	Observed  *float64 `json:"observed,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Unit      string   `json:"unit,omitempty"`

	Message string `json:"message,omitempty"`

	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`

	// Fingerprint is the sole dedupe key: a stable hash over
	// (provider, service, env, signal type, provider disambiguator).
	Fingerprint string `json:"fingerprint"`

	SourceURL string `json:"sourceUrl,omitempty"`

	// Raw echoes the provider payload for diagnostics.
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// SignalSnapshot is the rolling per-incident state of one signal type.
type SignalSnapshot struct {
	SignalType SignalType  `json:"signalType"`
	State      SignalState `json:"state"`
	Trend      Trend       `json:"trend"`

	Observed  *float64 `json:"observed,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Unit      string   `json:"unit,omitempty"`

	LastUpdatedAt time.Time `json:"lastUpdatedAt"`

	// History holds the most recent observed values, oldest first,
	// bounded by Config.MaxSignalHistory.
	History []float64 `json:"history"`
}

// ImpactAssessment is the classifier's output. It is replaced wholesale on
// every re-classification, never mutated in place.
type ImpactAssessment struct {
	Impact         ImpactLevel `json:"impact"`
	Confidence     float64     `json:"confidence"`
	Classification string      `json:"classification"`
	Summary        string      `json:"summary"`
	Reasons        []string    `json:"reasons"`
}

// Incident is the correlated aggregate of alert events for one
// (service, env) pair over a bounded time window.
type Incident struct {
	ID      string `json:"id"`
	Service string `json:"service"`
	Env     string `json:"env"`

	Status    IncidentStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	Impact  ImpactAssessment               `json:"impact"`
	Signals map[SignalType]*SignalSnapshot `json:"signals"`
	Alerts  []AlertEvent                   `json:"alerts"`

	ResolutionStatus ResolutionStatus `json:"resolutionStatus"`
	ResolutionNote   string           `json:"resolutionNote,omitempty"`
}

// NewIncident creates a fresh incident for a (service, env) pair.
func NewIncident(id, service, env string) *Incident {
	now := time.Now().UTC()
	return &Incident{
		ID:        id,
		Service:   service,
		Env:       env,
		Status:    StatusWatch,
		CreatedAt: now,
		UpdatedAt: now,
		Impact: ImpactAssessment{
			Impact:         ImpactNone,
			Confidence:     0.5,
			Classification: "unknown",
		},
		Signals:          make(map[SignalType]*SignalSnapshot),
		ResolutionStatus: ResolutionNone,
	}
}

// Clone returns a deep copy of the incident. The store hands out clones so
// readers can marshal an incident while the engine mutates its own working
// copy. Alert events are immutable, so their label maps are shared.
func (i *Incident) Clone() *Incident {
	out := *i
	out.Signals = make(map[SignalType]*SignalSnapshot, len(i.Signals))
	for st, snap := range i.Signals {
		c := *snap
		c.History = append([]float64(nil), snap.History...)
		out.Signals[st] = &c
	}
	out.Alerts = append([]AlertEvent(nil), i.Alerts...)
	out.Impact.Reasons = append([]string(nil), i.Impact.Reasons...)
	return &out
}

// IncidentSummary is the list-view projection of an incident. The alert
// timeline is intentionally omitted; only the report layer windows it.
type IncidentSummary struct {
	ID               string                         `json:"id"`
	Service          string                         `json:"service"`
	Env              string                         `json:"env"`
	Status           IncidentStatus                 `json:"status"`
	UpdatedAt        time.Time                      `json:"updatedAt"`
	Impact           ImpactAssessment               `json:"impact"`
	Signals          map[SignalType]*SignalSnapshot `json:"signals"`
	ResolutionStatus ResolutionStatus               `json:"resolutionStatus"`
}

// Summarize builds the list-view projection of an incident.
func (i *Incident) Summarize() IncidentSummary {
	return IncidentSummary{
		ID:               i.ID,
		Service:          i.Service,
		Env:              i.Env,
		Status:           i.Status,
		UpdatedAt:        i.UpdatedAt,
		Impact:           i.Impact,
		Signals:          i.Signals,
		ResolutionStatus: i.ResolutionStatus,
	}
}
