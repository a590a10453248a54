// Package scenarios provides built-in demo payload sequences that exercise
// the correlation pipeline end to end.
package scenarios

import (
	"fmt"
	"strings"
	"time"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// Step is one provider payload in a scenario, replayed in order.
type Step struct {
	Provider triage.Provider        `json:"provider"`
	Payload  map[string]interface{} `json:"payload"`
}

// SaturationOnly builds the capacity-warning scenario: saturation at 100%,
// latency and errors normal. Expected outcome: impact=none, status=watch.
func SaturationOnly(service, env string) []Step {
	t := time.Now().UTC()

	return []Step{
		{
			Provider: triage.ProviderPrometheus,
			Payload: map[string]interface{}{
				"receiver": "aitriage",
				"status":   "firing",
				"alerts": []interface{}{
					map[string]interface{}{
						"status": "firing",
						"labels": map[string]interface{}{
							"alertname": "ServiceSaturationHigh",
							"service":   service,
							"env":       env,
							"severity":  "critical",
							"metric":    "cpu_utilization",
						},
						"annotations": map[string]interface{}{
							"summary":     "CPU saturation is extremely high.",
							"observed":    "100",
							"threshold":   "95",
							"unit":        "%",
							"signal_type": "saturation",
						},
						"startsAt":     t.Add(-3 * time.Minute).Format(time.RFC3339),
						"endsAt":       t.Add(30 * time.Minute).Format(time.RFC3339),
						"generatorURL": "https://prometheus.example/graph",
					},
				},
			},
		},
		{
			Provider: triage.ProviderDatadog,
			Payload: map[string]interface{}{
				"event_type": "monitor_alert",
				"alert_type": "info",
				"title":      fmt.Sprintf("%s: p99 latency within SLO", service),
				"text":       "Latency is stable and within SLO.",
				"tags":       []interface{}{"service:" + service, "env:" + env},
				"metric":     "http_request_duration_p99",
				"observed":   180.0,
				"threshold":  400.0,
				"unit":       "ms",
				"url":        "https://app.datadoghq.com/monitors/123",
			},
		},
		{
			Provider: triage.ProviderBetterStack,
			Payload: map[string]interface{}{
				"incident": map[string]interface{}{
					"id":         "bs-001",
					"name":       fmt.Sprintf("%s: error rate normal", service),
					"service":    service,
					"env":        env,
					"severity":   "info",
					"metric":     "http_5xx_rate",
					"observed":   0.2,
					"threshold":  1.0,
					"unit":       "%",
					"started_at": t.Add(-2 * time.Minute).Format(time.RFC3339),
					"url":        "https://betterstack.example/incidents/bs-001",
					"labels":     map[string]interface{}{"signal_type": "errors"},
				},
			},
		},
	}
}

// FullOutage builds the outage scenario: errors, latency and saturation all
// critical. Expected outcome: impact=major, status=investigating.
func FullOutage(service, env string) []Step {
	t := time.Now().UTC()

	return []Step{
		{
			Provider: triage.ProviderPrometheus,
			Payload: map[string]interface{}{
				"receiver": "aitriage",
				"status":   "firing",
				"alerts": []interface{}{
					map[string]interface{}{
						"status": "firing",
						"labels": map[string]interface{}{
							"alertname": "ServiceErrorRateHigh",
							"service":   service,
							"env":       env,
							"severity":  "critical",
							"metric":    "http_5xx_rate",
						},
						"annotations": map[string]interface{}{
							"summary":     "5xx error rate is above SLO.",
							"observed":    "7.2",
							"threshold":   "1.0",
							"unit":        "%",
							"signal_type": "errors",
						},
						"startsAt":     t.Add(-2 * time.Minute).Format(time.RFC3339),
						"endsAt":       t.Add(30 * time.Minute).Format(time.RFC3339),
						"generatorURL": "https://prometheus.example/graph",
					},
				},
			},
		},
		{
			Provider: triage.ProviderDatadog,
			Payload: map[string]interface{}{
				"event_type": "monitor_alert",
				"alert_type": "critical",
				"title":      fmt.Sprintf("%s: p99 latency high", service),
				"text":       "Latency is above SLO.",
				"tags":       []interface{}{"service:" + service, "env:" + env},
				"metric":     "http_request_duration_p99",
				"observed":   1800.0,
				"threshold":  400.0,
				"unit":       "ms",
				"url":        "https://app.datadoghq.com/monitors/999",
			},
		},
		{
			Provider: triage.ProviderBetterStack,
			Payload: map[string]interface{}{
				"incident": map[string]interface{}{
					"id":         "bs-999",
					"name":       fmt.Sprintf("%s: saturation critical", service),
					"service":    service,
					"env":        env,
					"severity":   "critical",
					"metric":     "cpu_utilization",
					"observed":   99.8,
					"threshold":  95.0,
					"unit":       "%",
					"started_at": t.Add(-4 * time.Minute).Format(time.RFC3339),
					"url":        "https://betterstack.example/incidents/bs-999",
					"labels":     map[string]interface{}{"signal_type": "saturation"},
				},
			},
		},
	}
}

// Get returns the named built-in scenario for the default checkout/prod pair.
func Get(name string) ([]Step, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "saturation_only", "saturation-only", "capacity_warning":
		return SaturationOnly("checkout", "prod"), nil
	case "full_outage", "full-outage", "outage":
		return FullOutage("checkout", "prod"), nil
	}
	return nil, fmt.Errorf("unknown scenario: %s", name)
}
