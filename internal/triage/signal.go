package triage

import "time"

// trendEpsilon is the absolute tolerance used when comparing the oldest and
// newest of the last three observations. Many signals are ratios (0..1) or
// percents, so the tolerance stays small enough not to mask real movement
// while ignoring float noise.
const trendEpsilon = 1e-6

// computeState derives the signal state for an event. When both an observed
// value and a threshold are present they are compared directly; saturation
// signals are allowed to run hotter before warning. Without numeric context
// the provider-reported severity decides.
func computeState(event AlertEvent, cfg Config) SignalState {
	if event.Observed == nil || event.Threshold == nil {
		switch event.Severity {
		case SeverityCritical:
			return StateCritical
		case SeverityWarning:
			return StateWarning
		default:
			return StateOK
		}
	}

	warnRatio := cfg.GenericWarnRatio
	if event.SignalType == SignalSaturation {
		warnRatio = cfg.SaturationWarnRatio
	}

	observed, threshold := *event.Observed, *event.Threshold
	switch {
	case observed >= threshold:
		return StateCritical
	case observed >= threshold*warnRatio:
		return StateWarning
	default:
		return StateOK
	}
}

// computeTrend looks at the last three observations, oldest to newest.
// Fewer than three points means the trend is unknown.
func computeTrend(history []float64) Trend {
	if len(history) < 3 {
		return TrendUnknown
	}
	a, b, c := history[len(history)-3], history[len(history)-2], history[len(history)-1]
	if c > b && b > a && (c-a) > trendEpsilon {
		return TrendUp
	}
	if c < b && b < a && (a-c) > trendEpsilon {
		return TrendDown
	}
	return TrendFlat
}

// UpdateSnapshot folds a new event into the previous snapshot for its signal
// type and returns the replacement snapshot. prev may be nil for the first
// observation of a signal type. The observed value (when present) is appended
// to a sliding history bounded by cfg.MaxSignalHistory, oldest dropped first.
func UpdateSnapshot(prev *SignalSnapshot, event AlertEvent, cfg Config) *SignalSnapshot {
	state := computeState(event, cfg)

	var history []float64
	if prev != nil {
		history = append(history, prev.History...)
	}
	if event.Observed != nil {
		history = append(history, *event.Observed)
		if len(history) > cfg.MaxSignalHistory {
			history = history[len(history)-cfg.MaxSignalHistory:]
		}
	}

	return &SignalSnapshot{
		SignalType:    event.SignalType,
		State:         state,
		Trend:         computeTrend(history),
		Observed:      event.Observed,
		Threshold:     event.Threshold,
		Unit:          event.Unit,
		LastUpdatedAt: time.Now().UTC(),
		History:       history,
	}
}
