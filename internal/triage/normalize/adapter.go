// Package normalize maps arbitrary provider payloads into canonical alert
// events. Each provider has its own adapter; a shape-based detector picks one
// when no provider hint is supplied. Normalization never fails: unrecognized
// shapes degrade to a best-effort generic event or to no events at all.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// ProviderAdapter parses one provider's payload shape into normalized events.
type ProviderAdapter interface {
	// Provider returns the source tag this adapter produces events for.
	Provider() triage.Provider

	// Normalize maps a structured payload into zero or more events.
	Normalize(payload map[string]interface{}) []triage.AlertEvent
}

// StableFingerprint hashes the given parts into the dedupe key. The hash is
// order-sensitive and stable: identical inputs always yield identical
// fingerprints.
func StableFingerprint(parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	sum := sha1.Sum([]byte(strings.Join(trimmed, "|")))
	return hex.EncodeToString(sum[:])
}

// parseSeverity maps provider severity keywords onto the canonical levels.
// An absent value defaults to warning; unrecognized keywords read as info.
func parseSeverity(value interface{}) triage.Severity {
	s := strings.ToLower(strings.TrimSpace(asString(value)))
	if s == "" {
		return triage.SeverityWarning
	}
	switch s {
	case "critical", "crit", "page", "p1", "high":
		return triage.SeverityCritical
	case "warning", "warn", "p2", "medium":
		return triage.SeverityWarning
	}
	return triage.SeverityInfo
}

// signalTypeRule is one entry in the ordered signal inference chain.
type signalTypeRule struct {
	tokens []string
	result triage.SignalType
}

// hintRules classify an explicit signal/signal_type label or annotation.
var hintRules = []signalTypeRule{
	{[]string{"satur", "cpu", "pool", "capacity"}, triage.SignalSaturation},
	{[]string{"lat", "p99", "p95", "slo"}, triage.SignalLatency},
	{[]string{"err", "5xx"}, triage.SignalErrors},
}

// nameRules classify the alert name/title when no explicit hint is present.
var nameRules = []signalTypeRule{
	{[]string{"satur", "cpu", "pool", "capacity", "utilization", "exhaust"}, triage.SignalSaturation},
	{[]string{"latency", "p99", "p95", "duration", "slow"}, triage.SignalLatency},
	{[]string{"error", "errors", "5xx", "exception", "fault"}, triage.SignalErrors},
}

func matchSignalRules(blob string, rules []signalTypeRule) (triage.SignalType, bool) {
	for _, rule := range rules {
		for _, tok := range rule.tokens {
			if strings.Contains(blob, tok) {
				return rule.result, true
			}
		}
	}
	return triage.SignalOther, false
}

// inferSignalType decides the signal category for an alert. An explicit
// signal/signal_type label or annotation wins; otherwise the alert name is
// matched against the same substring chain.
func inferSignalType(name string, labels, annotations map[string]string) triage.SignalType {
	explicit := labels["signal"]
	if explicit == "" {
		explicit = labels["signal_type"]
	}
	if explicit == "" {
		explicit = annotations["signal"]
	}
	if explicit == "" {
		explicit = annotations["signal_type"]
	}
	if explicit != "" {
		if st, ok := matchSignalRules(strings.ToLower(strings.TrimSpace(explicit)), hintRules); ok {
			return st
		}
	}

	if st, ok := matchSignalRules(strings.ToLower(name), nameRules); ok {
		return st
	}
	return triage.SignalOther
}

// extractServiceEnv pulls service and env out of labels (first non-empty of
// service/app/job/component, env/environment) and, for tag-list providers,
// out of "key:value" tags. Tags only fill the service when no label did, but
// always win for env.
func extractServiceEnv(labels map[string]string, tags []string) (string, string) {
	service := firstNonEmpty(labels["service"], labels["app"], labels["job"], labels["component"], "unknown")
	env := firstNonEmpty(labels["env"], labels["environment"], "prod")

	for _, t := range tags {
		k, v, ok := strings.Cut(t, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "service" && service == "unknown" {
			service = v
		}
		if k == "env" || k == "environment" {
			env = v
		}
	}
	return service, env
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseFloat best-effort converts a JSON value to a float, nil on failure.
func parseFloat(value interface{}) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}

// parseTime best-effort parses provider timestamps: RFC3339 strings (with or
// without a trailing Z) or epoch seconds/millis. Values above 10^12 are read
// as milliseconds.
func parseTime(value interface{}) *time.Time {
	switch v := value.(type) {
	case float64:
		seconds := v
		if v > 1_000_000_000_000 {
			seconds = v / 1000.0
		}
		t := time.Unix(int64(seconds), 0).UTC()
		return &t
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t = t.UTC()
			return &t
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// asString renders a JSON value as a string; nil becomes "".
func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// toStringMap converts a JSON object into a string→string map, stringifying
// non-string values. Non-object inputs yield an empty map.
func toStringMap(value interface{}) map[string]string {
	out := make(map[string]string)
	obj, ok := value.(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range obj {
		out[k] = asString(v)
	}
	return out
}

func objectField(payload map[string]interface{}, key string) (map[string]interface{}, bool) {
	obj, ok := payload[key].(map[string]interface{})
	return obj, ok
}
