package normalize

import (
	"strings"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// detectionRule pairs a payload-shape predicate with the provider it
// indicates. Rules are evaluated strictly in order; the first match wins,
// which keeps the precedence auditable.
type detectionRule struct {
	matches  func(payload map[string]interface{}) bool
	provider triage.Provider
}

var detectionRules = []detectionRule{
	// Alertmanager webhooks carry an "alerts" array.
	{
		matches: func(p map[string]interface{}) bool {
			_, ok := p["alerts"].([]interface{})
			return ok
		},
		provider: triage.ProviderPrometheus,
	},
	// Datadog monitor webhooks carry both event_type and alert_type.
	{
		matches: func(p map[string]interface{}) bool {
			_, hasEvent := p["event_type"]
			_, hasAlert := p["alert_type"]
			return hasEvent && hasAlert
		},
		provider: triage.ProviderDatadog,
	},
	// BetterStack-ish payloads wrap an "incident" object or name themselves
	// in a "source" field.
	{
		matches: func(p map[string]interface{}) bool {
			if _, ok := p["incident"]; ok {
				return true
			}
			return strings.Contains(strings.ToLower(asString(p["source"])), "betterstack")
		},
		provider: triage.ProviderBetterStack,
	},
}

// DetectProvider inspects a payload's shape and returns the provider it most
// likely came from. Non-object payloads and unrecognized shapes are generic.
func DetectProvider(payload interface{}) triage.Provider {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return triage.ProviderGeneric
	}
	for _, rule := range detectionRules {
		if rule.matches(obj) {
			return rule.provider
		}
	}
	return triage.ProviderGeneric
}
