package normalize

import (
	"time"

	"github.com/google/uuid"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// PrometheusAdapter handles Alertmanager-style webhooks: one payload fans out
// into a batch of alerts.
type PrometheusAdapter struct{}

// NewPrometheusAdapter creates a new Prometheus adapter.
func NewPrometheusAdapter() *PrometheusAdapter {
	return &PrometheusAdapter{}
}

// Provider returns the source tag for this adapter.
func (a *PrometheusAdapter) Provider() triage.Provider {
	return triage.ProviderPrometheus
}

// Normalize maps each entry of the "alerts" array into an event.
func (a *PrometheusAdapter) Normalize(payload map[string]interface{}) []triage.AlertEvent {
	rawAlerts, _ := payload["alerts"].([]interface{})

	var out []triage.AlertEvent
	for _, raw := range rawAlerts {
		alert, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		labels := toStringMap(alert["labels"])
		annotations := toStringMap(alert["annotations"])

		service, env := extractServiceEnv(labels, nil)
		name := firstNonEmpty(labels["alertname"], annotations["title"], "prometheus_alert")
		signalType := inferSignalType(name, labels, annotations)

		observed := parseFloat(firstNonEmptyValue(annotations["observed"], labels["observed"]))
		threshold := parseFloat(firstNonEmptyValue(annotations["threshold"], labels["threshold"]))
		unit := firstNonEmpty(annotations["unit"], labels["unit"])

		severity := parseSeverity(firstNonEmpty(labels["severity"], annotations["severity"]))

		fingerprint := StableFingerprint(
			string(triage.ProviderPrometheus),
			service,
			env,
			string(signalType),
			labels["alertname"],
			labels["instance"],
		)

		out = append(out, triage.AlertEvent{
			ID:          uuid.NewString(),
			Provider:    triage.ProviderPrometheus,
			ReceivedAt:  time.Now().UTC(),
			StartsAt:    parseTime(alert["startsAt"]),
			EndsAt:      parseTime(alert["endsAt"]),
			Service:     service,
			Env:         env,
			Severity:    severity,
			SignalType:  signalType,
			Metric:      firstNonEmpty(labels["metric"], annotations["metric"]),
			Observed:    observed,
			Threshold:   threshold,
			Unit:        unit,
			Message:     firstNonEmpty(annotations["summary"], annotations["description"], name),
			Labels:      labels,
			Annotations: annotations,
			Fingerprint: fingerprint,
			SourceURL:   asString(alert["generatorURL"]),
			Raw:         alert,
		})
	}
	return out
}

// firstNonEmptyValue is firstNonEmpty for interface{} consumers: it returns
// the first non-empty string so parseFloat sees one candidate.
func firstNonEmptyValue(values ...string) interface{} {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return nil
}
