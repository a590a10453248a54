package report

// RunbookStep is one suggested response step. Steps are generic and
// Kubernetes-flavored rather than vendor-specific.
type RunbookStep struct {
	Title           string   `json:"title"`
	Verify          []string `json:"verify,omitempty"`
	Mitigate        []string `json:"mitigate,omitempty"`
	Confirm         []string `json:"confirm,omitempty"`
	ExampleCommands []string `json:"exampleCommands,omitempty"`
}

// SuggestRunbookSteps returns deterministic runbook suggestions for an
// impact classification.
func SuggestRunbookSteps(classification string) []RunbookStep {
	switch classification {
	case "capacity_warning":
		return []RunbookStep{
			{
				Title: "Validate whether capacity is actually impacting users",
				Verify: []string{
					"Check p95/p99 latency against SLO (if you have it).",
					"Check error rate (% 5xx / exceptions) for the same time window.",
					"Confirm request rate / throughput is normal.",
				},
			},
			{
				Title: "Identify the saturated resource",
				Verify: []string{
					"CPU saturation: look for hot pods/nodes.",
					"Connection pool saturation: inspect DB pool usage vs max.",
					"Thread/worker saturation: check queue depth and worker utilization.",
				},
				ExampleCommands: []string{
					"kubectl top pods -n <ns>",
					"kubectl top nodes",
					"kubectl describe hpa -n <ns> <hpa-name>",
				},
			},
			{
				Title: "Mitigate safely (if needed)",
				Mitigate: []string{
					"Scale out if autoscaling isn't keeping up (or temporarily raise limits).",
					"Rollback the last deploy if the change increased resource usage.",
					"Apply rate limiting / shed non-critical traffic if you are nearing failure.",
				},
			},
		}

	case "latency_degradation", "degradation_possible":
		return []RunbookStep{
			{
				Title: "Confirm where latency is coming from",
				Verify: []string{
					"Break down latency by dependency (DB, cache, external APIs).",
					"Compare p95 vs p99 - tail latency often points to contention.",
					"Check saturation and error rate in the same window.",
				},
			},
			{
				Title: "Mitigate",
				Mitigate: []string{
					"Scale the bottleneck (pods, DB, cache) or reduce concurrency.",
					"Rollback the last deploy if latency regressed after a change.",
					"Enable or tighten timeouts to shed slow dependencies.",
				},
			},
			{
				Title: "Confirm recovery",
				Confirm: []string{
					"Latency back within SLO for at least 10 minutes.",
					"No error rate increase introduced by the mitigation.",
				},
			},
		}

	case "error_spike", "outage":
		return []RunbookStep{
			{
				Title: "Stop the bleeding",
				Mitigate: []string{
					"Rollback the most recent deploy or config change.",
					"Fail over to a healthy region/replica if available.",
					"Shed or rate limit traffic that triggers the failing path.",
				},
			},
			{
				Title: "Confirm scope",
				Verify: []string{
					"Which endpoints/routes produce the errors?",
					"All users or a subset (region, tenant, client version)?",
					"Do errors correlate with a dependency outage?",
				},
				ExampleCommands: []string{
					"kubectl rollout undo deployment/<name> -n <ns>",
					"kubectl get events -n <ns> --sort-by=.lastTimestamp",
				},
			},
			{
				Title: "Confirm recovery",
				Confirm: []string{
					"Error rate back under threshold for 10+ minutes.",
					"Latency normal and saturation not climbing.",
				},
			},
		}

	case "investigate":
		return []RunbookStep{
			{
				Title: "Triage the warning signals",
				Verify: []string{
					"Check whether the warning trend is rising or stable.",
					"Compare against the same window yesterday / last week.",
					"Look for a recent deploy or traffic shift.",
				},
			},
		}
	}

	return []RunbookStep{
		{
			Title: "No action needed",
			Verify: []string{
				"Signals are within normal ranges; keep monitoring.",
			},
		},
	}
}
