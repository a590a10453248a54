// Package notify posts incident escalations to Slack. Notification is fire
// and forget: it is triggered by the ingestion path but never influences it.
package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// SlackNotifier posts a message when an incident's impact level escalates.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier for the given bot token and channel.
// Returns nil when the token or channel is empty, which disables notification.
func NewSlackNotifier(botToken, channel string) *SlackNotifier {
	if botToken == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		client:  slack.New(botToken),
		channel: channel,
	}
}

var impactRank = map[triage.ImpactLevel]int{
	triage.ImpactNone:  0,
	triage.ImpactMinor: 1,
	triage.ImpactMajor: 2,
}

// NotifyIfEscalated posts to Slack when the incident's impact level rose
// compared to previousImpact. Safe to call on a nil notifier.
func (n *SlackNotifier) NotifyIfEscalated(incident *triage.Incident, previousImpact triage.ImpactLevel) {
	if n == nil {
		return
	}
	if impactRank[incident.Impact.Impact] <= impactRank[previousImpact] {
		return
	}

	// Post from a goroutine so a slow Slack API never delays the caller.
	message := formatIncident(incident)
	go func() {
		_, _, err := n.client.PostMessage(n.channel, slack.MsgOptionText(message, false))
		if err != nil {
			log.Printf("Failed to post incident %s to Slack: %v", incident.ID, err)
		}
	}()
}

func formatIncident(incident *triage.Incident) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s *%s impact* - `%s` (`%s`)\n\n",
		impactEmoji(incident.Impact.Impact), incident.Impact.Impact, incident.Service, incident.Env))
	sb.WriteString(fmt.Sprintf("*Classification*: %s\n", incident.Impact.Classification))
	sb.WriteString(fmt.Sprintf("*Status*: %s\n", incident.Status))

	if incident.Impact.Summary != "" {
		sb.WriteString(fmt.Sprintf("\n*Summary*\n%s\n", incident.Impact.Summary))
	}

	if len(incident.Impact.Reasons) > 0 {
		sb.WriteString("\n*Reasons*\n")
		for _, reason := range incident.Impact.Reasons {
			sb.WriteString(fmt.Sprintf("• %s\n", reason))
		}
	}

	sb.WriteString(fmt.Sprintf("\nIncident ID: `%s`", incident.ID))
	return sb.String()
}

func impactEmoji(level triage.ImpactLevel) string {
	switch level {
	case triage.ImpactMajor:
		return "🔴"
	case triage.ImpactMinor:
		return "🟡"
	default:
		return "🟢"
	}
}
