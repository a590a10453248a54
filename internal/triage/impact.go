package triage

// signalView flattens an incident's signal map for rule evaluation.
// Missing signals read as ok state and not-up trend.
type signalView struct {
	errors     SignalState
	latency    SignalState
	saturation SignalState
	errorsUp   bool
	latencyUp  bool
}

func newSignalView(signals map[SignalType]*SignalSnapshot) signalView {
	v := signalView{errors: StateOK, latency: StateOK, saturation: StateOK}
	if s := signals[SignalErrors]; s != nil {
		v.errors = s.State
		v.errorsUp = s.Trend == TrendUp
	}
	if s := signals[SignalLatency]; s != nil {
		v.latency = s.State
		v.latencyUp = s.Trend == TrendUp
	}
	if s := signals[SignalSaturation]; s != nil {
		v.saturation = s.State
	}
	return v
}

func atLeastWarning(s SignalState) bool {
	return s == StateWarning || s == StateCritical
}

// impactRule pairs a predicate with the assessment it produces. Rules are
// evaluated strictly in order and the first match wins, so reordering the
// list below is a behavioral change, not a refactor.
type impactRule struct {
	matches func(signalView) bool
	assess  func(signalView) ImpactAssessment
}

var impactRules = []impactRule{
	// Direct customer pain: both errors and latency critical.
	{
		matches: func(v signalView) bool {
			return v.errors == StateCritical && v.latency == StateCritical
		},
		assess: func(signalView) ImpactAssessment {
			return ImpactAssessment{
				Impact:         ImpactMajor,
				Confidence:     0.9,
				Classification: "outage",
				Summary:        "Likely user-facing outage: both errors and latency are critical.",
				Reasons:        []string{"Errors and latency are both critical."},
			}
		},
	},
	{
		matches: func(v signalView) bool { return v.errors == StateCritical },
		assess: func(signalView) ImpactAssessment {
			return ImpactAssessment{
				Impact:         ImpactMajor,
				Confidence:     0.8,
				Classification: "error_spike",
				Summary:        "Likely user-facing issue: error rate is critical.",
				Reasons:        []string{"Errors are critical."},
			}
		},
	},
	{
		matches: func(v signalView) bool { return v.latency == StateCritical },
		assess: func(signalView) ImpactAssessment {
			return ImpactAssessment{
				Impact:         ImpactMajor,
				Confidence:     0.8,
				Classification: "latency_degradation",
				Summary:        "Likely user-facing issue: latency is critical.",
				Reasons:        []string{"Latency is critical."},
			}
		},
	},
	// Critical saturation with corroborating evidence of user impact.
	{
		matches: func(v signalView) bool {
			return v.saturation == StateCritical &&
				(atLeastWarning(v.errors) || atLeastWarning(v.latency) || v.errorsUp || v.latencyUp)
		},
		assess: func(signalView) ImpactAssessment {
			return ImpactAssessment{
				Impact:         ImpactMinor,
				Confidence:     0.7,
				Classification: "degradation_possible",
				Summary:        "Potential degradation: saturation is critical and other signals are worsening.",
				Reasons:        []string{"Saturation is critical and errors/latency indicate possible impact."},
			}
		},
	},
	// Critical saturation alone never implies user impact.
	{
		matches: func(v signalView) bool { return v.saturation == StateCritical },
		assess: func(signalView) ImpactAssessment {
			return ImpactAssessment{
				Impact:         ImpactNone,
				Confidence:     0.65,
				Classification: "capacity_warning",
				Summary:        "Capacity warning: saturation is high, but no evidence of user impact yet.",
				Reasons:        []string{"Saturation is critical, but latency and errors are normal."},
			}
		},
	},
	{
		matches: func(v signalView) bool {
			return v.errors == StateWarning || v.latency == StateWarning
		},
		assess: func(signalView) ImpactAssessment {
			return ImpactAssessment{
				Impact:         ImpactMinor,
				Confidence:     0.6,
				Classification: "investigate",
				Summary:        "Investigate: warning-level errors/latency without clear outage signals.",
				Reasons:        []string{"Latency/errors are warning-level."},
			}
		},
	},
}

// AssessIncident classifies the business impact of an incident from its
// current signal map. Deterministic and total: every incident state maps to
// exactly one assessment.
//
// Key behavior: saturation==critical alone does NOT imply user impact when
// latency and errors are normal.
func AssessIncident(incident *Incident) ImpactAssessment {
	v := newSignalView(incident.Signals)
	for _, rule := range impactRules {
		if rule.matches(v) {
			return rule.assess(v)
		}
	}
	return ImpactAssessment{
		Impact:         ImpactNone,
		Confidence:     0.55,
		Classification: "healthy",
		Summary:        "No clear incident signals. System appears healthy.",
		Reasons:        []string{},
	}
}

// DeriveStatus maps a fresh impact assessment to a lifecycle status.
// previousImpact is the impact level before this re-classification; recovery
// from a real incident (major/minor back to a clean healthy read) resolves it.
func DeriveStatus(impact ImpactAssessment, incident *Incident, previousImpact ImpactLevel) IncidentStatus {
	if impact.Impact == ImpactNone &&
		(previousImpact == ImpactMajor || previousImpact == ImpactMinor) &&
		impact.Classification == "healthy" {
		return StatusResolved
	}

	if impact.Impact == ImpactMajor || impact.Impact == ImpactMinor {
		return StatusInvestigating
	}

	if impact.Classification == "capacity_warning" {
		return StatusWatch
	}

	// With any alerts at all, keep watching; an incident with zero alerts has
	// nothing to watch.
	if len(incident.Alerts) > 0 {
		return StatusWatch
	}
	return StatusResolved
}
