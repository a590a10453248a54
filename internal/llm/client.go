// Package llm provides the generative report writers. Deterministic reports
// never require one; when a provider is configured the report endpoint can
// rewrite the deterministic report into prose.
package llm

import (
	"fmt"
	"strings"
)

// Mode selects which provider (if any) writes reports.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeOff       Mode = "off"
	ModeOpenAI    Mode = "openai"
	ModeAnthropic Mode = "anthropic"
)

// ParseMode maps a string to a known Mode; empty means auto.
func ParseMode(s string) (Mode, bool) {
	if s == "" {
		return ModeAuto, true
	}
	switch Mode(s) {
	case ModeAuto, ModeOff, ModeOpenAI, ModeAnthropic:
		return Mode(s), true
	}
	return "", false
}

// Config holds provider credentials and model choices.
type Config struct {
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// Writer turns a deterministic report into generated prose.
type Writer interface {
	// Model returns the model identifier, used in cache keys.
	Model() string

	// WriteReport rewrites the deterministic report (given as JSON) into the
	// requested format ("text" or "markdown").
	WriteReport(reportJSON, format string) (string, error)
}

// ForMode resolves a writer for the requested mode. Returns nil (and no
// error) when generation is off or no provider is configured in auto mode.
func ForMode(mode Mode, cfg Config) (Writer, error) {
	switch mode {
	case ModeOff:
		return nil, nil
	case ModeOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai requested but OPENAI_API_KEY is not set")
		}
		return NewOpenAIWriter(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case ModeAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic requested but ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropicWriter(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case ModeAuto:
		if cfg.AnthropicAPIKey != "" {
			return NewAnthropicWriter(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
		}
		if cfg.OpenAIAPIKey != "" {
			return NewOpenAIWriter(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unknown llm mode: %s", mode)
}

const reportSystemPrompt = `You are an SRE writing a situation report for an ongoing incident.

IMPORTANT RULES:
- ONLY use information present in the report data - do NOT invent or assume details
- Lead with the user-facing impact and the classification
- Keep it under 300 words
- Preserve the suggested runbook steps`

func reportUserPrompt(reportJSON, format string) string {
	var sb strings.Builder
	sb.WriteString("Write the situation report in ")
	sb.WriteString(format)
	sb.WriteString(" format from this data:\n\n")
	sb.WriteString(reportJSON)
	return sb.String()
}
