package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Render renders the report in the requested format.
func Render(r *Report, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(r)
	case FormatMarkdown:
		return RenderMarkdown(r), nil
	case FormatText:
		return RenderText(r), nil
	}
	return "", fmt.Errorf("unknown report format: %s", format)
}

// RenderJSON renders the report as indented JSON.
func RenderJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render report JSON: %w", err)
	}
	return string(data), nil
}

func valueWithUnit(v *float64, unit string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%g%s", *v, unit)
}

// RenderText renders the report as plain text.
func RenderText(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "aiTriage Situation Report - %s (%s)\n\n", r.Service, r.Env)
	fmt.Fprintf(&sb, "Incident: %s\n", r.IncidentID)
	fmt.Fprintf(&sb, "Status:   %s\n", r.Status)
	fmt.Fprintf(&sb, "Impact:   %s (confidence %g)\n\n", r.Impact.Impact, r.Impact.Confidence)

	sb.WriteString("Summary\n------\n")
	sb.WriteString(strings.TrimSpace(r.Summary))
	sb.WriteString("\n\n")

	sb.WriteString("Signals\n-------\n")
	for _, sig := range r.Signals {
		fmt.Fprintf(&sb, "- %s: %s (trend %s) [%s / %s]\n",
			sig.SignalType, sig.State, sig.Trend,
			valueWithUnit(sig.Observed, sig.Unit), valueWithUnit(sig.Threshold, sig.Unit))
	}

	sb.WriteString("\nSuggested runbook steps\n-----------------------\n")
	for idx, step := range r.Runbook {
		fmt.Fprintf(&sb, "%d. %s\n", idx+1, step.Title)
		writeTextItems(&sb, "verify", step.Verify)
		writeTextItems(&sb, "mitigate", step.Mitigate)
		writeTextItems(&sb, "confirm", step.Confirm)
		writeTextItems(&sb, "exampleCommands", step.ExampleCommands)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeTextItems(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "   - %s:\n", label)
	for _, it := range items {
		fmt.Fprintf(sb, "     - %s\n", it)
	}
}

// RenderMarkdown renders the report as markdown.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## aiTriage Situation Report - `%s` (`%s`)\n\n", r.Service, r.Env)
	fmt.Fprintf(&sb, "- **Incident**: `%s`\n", r.IncidentID)
	fmt.Fprintf(&sb, "- **Status**: `%s`\n", r.Status)
	fmt.Fprintf(&sb, "- **Impact**: **%s** (confidence %g)\n", r.Impact.Impact, r.Impact.Confidence)
	fmt.Fprintf(&sb, "- **Classification**: `%s`\n\n", r.Impact.Classification)

	sb.WriteString("### Summary\n\n")
	summary := strings.TrimSpace(r.Summary)
	if summary == "" {
		summary = "_No summary_"
	}
	sb.WriteString(summary)
	sb.WriteString("\n\n")

	sb.WriteString("### Signals\n\n")
	for _, sig := range r.Signals {
		fmt.Fprintf(&sb, "- **%s**: `%s` (trend `%s`) - `%s` / `%s`\n",
			sig.SignalType, sig.State, sig.Trend,
			valueWithUnit(sig.Observed, sig.Unit), valueWithUnit(sig.Threshold, sig.Unit))
	}
	sb.WriteString("\n")

	sb.WriteString("### Recent alerts\n\n")
	for _, a := range r.RecentAlerts {
		fmt.Fprintf(&sb, "- `%s` %s/%s (%s): %s\n",
			a.ReceivedAt.Format("15:04:05"), a.Provider, a.Severity, a.SignalType, a.Message)
	}
	sb.WriteString("\n")

	sb.WriteString("### Suggested runbook steps\n\n")
	for idx, step := range r.Runbook {
		fmt.Fprintf(&sb, "%d. **%s**\n", idx+1, step.Title)
		writeMarkdownItems(&sb, "Verify", step.Verify)
		writeMarkdownItems(&sb, "Mitigate", step.Mitigate)
		writeMarkdownItems(&sb, "Confirm", step.Confirm)
		writeMarkdownItems(&sb, "Commands", step.ExampleCommands)
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeMarkdownItems(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "   - %s:\n", label)
	for _, it := range items {
		fmt.Fprintf(sb, "     - %s\n", it)
	}
}
