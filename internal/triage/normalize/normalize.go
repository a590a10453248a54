package normalize

import (
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// Normalizer routes payloads to the right provider adapter.
type Normalizer struct {
	adapters map[triage.Provider]ProviderAdapter
	fallback ProviderAdapter
}

// NewNormalizer creates a normalizer with all built-in provider adapters
// registered.
func NewNormalizer() *Normalizer {
	n := &Normalizer{
		adapters: make(map[triage.Provider]ProviderAdapter),
		fallback: NewGenericAdapter(),
	}
	n.Register(NewPrometheusAdapter())
	n.Register(NewDatadogAdapter())
	n.Register(NewBetterStackAdapter())
	n.Register(n.fallback.(*GenericAdapter))
	return n
}

// Register adds or replaces the adapter for its provider.
func (n *Normalizer) Register(adapter ProviderAdapter) {
	n.adapters[adapter.Provider()] = adapter
}

// Normalize maps a payload into zero or more events. When hint is empty the
// provider is detected from the payload shape. Non-object payloads produce no
// events; unknown providers fall back to the generic adapter.
func (n *Normalizer) Normalize(hint triage.Provider, payload interface{}) []triage.AlertEvent {
	provider := hint
	if provider == "" {
		provider = DetectProvider(payload)
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil
	}

	adapter, ok := n.adapters[provider]
	if !ok {
		adapter = n.fallback
	}
	return adapter.Normalize(obj)
}
