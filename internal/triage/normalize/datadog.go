package normalize

import (
	"time"

	"github.com/google/uuid"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// DatadogAdapter handles Datadog monitor webhooks: a single alert with a
// "key:value" tag list instead of label maps.
type DatadogAdapter struct{}

// NewDatadogAdapter creates a new Datadog adapter.
func NewDatadogAdapter() *DatadogAdapter {
	return &DatadogAdapter{}
}

// Provider returns the source tag for this adapter.
func (a *DatadogAdapter) Provider() triage.Provider {
	return triage.ProviderDatadog
}

// Normalize builds exactly one event from the monitor webhook.
func (a *DatadogAdapter) Normalize(payload map[string]interface{}) []triage.AlertEvent {
	var tags []string
	if rawTags, ok := payload["tags"].([]interface{}); ok {
		for _, t := range rawTags {
			tags = append(tags, asString(t))
		}
	}

	title := firstNonEmpty(asString(payload["title"]), asString(payload["event_title"]), "datadog_alert")
	text := firstNonEmpty(asString(payload["text"]), asString(payload["message"]))

	labels := map[string]string{"title": title}
	annotations := map[string]string{"text": text}

	service, env := extractServiceEnv(nil, tags)
	signalType := inferSignalType(title, labels, annotations)

	severity := parseSeverity(firstNonEmptyValue(asString(payload["alert_type"]), asString(payload["severity"])))

	fingerprint := StableFingerprint(
		string(triage.ProviderDatadog),
		service,
		env,
		string(signalType),
		asString(payload["id"]),
		title,
	)

	startsAt := parseTime(payload["date"])
	if startsAt == nil {
		startsAt = parseTime(payload["triggered_at"])
	}

	return []triage.AlertEvent{{
		ID:          uuid.NewString(),
		Provider:    triage.ProviderDatadog,
		ReceivedAt:  time.Now().UTC(),
		StartsAt:    startsAt,
		Service:     service,
		Env:         env,
		Severity:    severity,
		SignalType:  signalType,
		Metric:      asString(payload["metric"]),
		Observed:    parseFloat(payload["observed"]),
		Threshold:   parseFloat(payload["threshold"]),
		Unit:        asString(payload["unit"]),
		Message:     title,
		Labels:      labels,
		Annotations: annotations,
		Fingerprint: fingerprint,
		SourceURL:   asString(payload["url"]),
		Raw:         payload,
	}}
}
