package normalize

import (
	"time"

	"github.com/google/uuid"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// GenericAdapter is the fallback for unrecognized payload shapes. It builds
// one best-effort event from top-level service/env/name fields.
type GenericAdapter struct{}

// NewGenericAdapter creates a new generic adapter.
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Provider returns the source tag for this adapter.
func (a *GenericAdapter) Provider() triage.Provider {
	return triage.ProviderGeneric
}

// Normalize treats the payload as a single event if it looks close enough.
func (a *GenericAdapter) Normalize(payload map[string]interface{}) []triage.AlertEvent {
	service := firstNonEmpty(asString(payload["service"]), "unknown")
	env := firstNonEmpty(asString(payload["env"]), "prod")
	name := firstNonEmpty(asString(payload["name"]), asString(payload["title"]), "generic_alert")

	var labels, annotations map[string]string
	if obj, ok := objectField(payload, "labels"); ok {
		labels = toStringMap(obj)
	} else {
		labels = map[string]string{}
	}
	if obj, ok := objectField(payload, "annotations"); ok {
		annotations = toStringMap(obj)
	} else {
		annotations = map[string]string{}
	}

	signalType := inferSignalType(name, labels, annotations)
	severity := parseSeverity(payload["severity"])

	fingerprint := StableFingerprint(string(triage.ProviderGeneric), service, env, string(signalType), name)

	startsAt := parseTime(payload["starts_at"])
	if startsAt == nil {
		startsAt = parseTime(payload["startsAt"])
	}
	endsAt := parseTime(payload["ends_at"])
	if endsAt == nil {
		endsAt = parseTime(payload["endsAt"])
	}

	return []triage.AlertEvent{{
		ID:          uuid.NewString(),
		Provider:    triage.ProviderGeneric,
		ReceivedAt:  time.Now().UTC(),
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Service:     service,
		Env:         env,
		Severity:    severity,
		SignalType:  signalType,
		Metric:      asString(payload["metric"]),
		Observed:    parseFloat(payload["observed"]),
		Threshold:   parseFloat(payload["threshold"]),
		Unit:        asString(payload["unit"]),
		Message:     name,
		Labels:      labels,
		Annotations: annotations,
		Fingerprint: fingerprint,
		Raw:         payload,
	}}
}
