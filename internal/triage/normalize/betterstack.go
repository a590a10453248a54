package normalize

import (
	"time"

	"github.com/google/uuid"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// BetterStackAdapter handles BetterStack-style payloads: a single incident
// object, either wrapped in an "incident" field or at the top level.
type BetterStackAdapter struct{}

// NewBetterStackAdapter creates a new BetterStack adapter.
func NewBetterStackAdapter() *BetterStackAdapter {
	return &BetterStackAdapter{}
}

// Provider returns the source tag for this adapter.
func (a *BetterStackAdapter) Provider() triage.Provider {
	return triage.ProviderBetterStack
}

// Normalize builds exactly one event from the incident object.
func (a *BetterStackAdapter) Normalize(payload map[string]interface{}) []triage.AlertEvent {
	incident, ok := objectField(payload, "incident")
	if !ok {
		incident = payload
	}

	labels := toStringMap(incident["labels"])
	annotations := toStringMap(incident["annotations"])

	service := firstNonEmpty(asString(incident["service"]), labels["service"], "unknown")
	env := firstNonEmpty(asString(incident["env"]), labels["env"], "prod")
	title := firstNonEmpty(asString(incident["name"]), asString(incident["title"]), "betterstack_incident")

	signalType := inferSignalType(title, labels, annotations)

	observed := parseFloat(incident["observed"])
	if observed == nil {
		observed = parseFloat(firstNonEmptyValue(annotations["observed"]))
	}
	threshold := parseFloat(incident["threshold"])
	if threshold == nil {
		threshold = parseFloat(firstNonEmptyValue(annotations["threshold"]))
	}
	unit := firstNonEmpty(asString(incident["unit"]), annotations["unit"])

	severity := parseSeverity(firstNonEmptyValue(asString(incident["severity"]), asString(incident["status"])))

	fingerprint := StableFingerprint(
		string(triage.ProviderBetterStack),
		service,
		env,
		string(signalType),
		asString(incident["id"]),
		title,
	)

	startsAt := parseTime(incident["started_at"])
	if startsAt == nil {
		startsAt = parseTime(incident["startedAt"])
	}
	endsAt := parseTime(incident["ended_at"])
	if endsAt == nil {
		endsAt = parseTime(incident["endedAt"])
	}

	return []triage.AlertEvent{{
		ID:          uuid.NewString(),
		Provider:    triage.ProviderBetterStack,
		ReceivedAt:  time.Now().UTC(),
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Service:     service,
		Env:         env,
		Severity:    severity,
		SignalType:  signalType,
		Metric:      asString(incident["metric"]),
		Observed:    observed,
		Threshold:   threshold,
		Unit:        unit,
		Message:     title,
		Labels:      labels,
		Annotations: annotations,
		Fingerprint: fingerprint,
		SourceURL:   asString(incident["url"]),
		Raw:         payload,
	}}
}
