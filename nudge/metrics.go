package nudge

import (
	"math"
	"strings"
	"time"
)

const silenceReasonKeyRunes = 30

// RestraintMetrics summarizes how often the engine chose to stay quiet.
type RestraintMetrics struct {
	ThreadsTracked     int    `json:"threadsTracked"`
	NudgesLast7Days    int    `json:"nudgesLast7Days"`
	SilenceRatePercent int    `json:"silenceRatePercent"`
	TopSilenceReason   string `json:"topSilenceReason,omitempty"`
}

// ComputeRestraintMetrics groups silence reasons by their lowercase 30-rune
// prefix; the most frequent group wins and ties go to the group seen first.
// TopSilenceReason is the first reason of the first silent decision that
// carries the winning group.
func ComputeRestraintMetrics(evals []Evaluation, state LearningState, today time.Time) RestraintMetrics {
	m := RestraintMetrics{
		ThreadsTracked:  len(evals),
		NudgesLast7Days: state.NudgesInWindow(today),
	}
	if len(evals) == 0 {
		return m
	}

	counts := map[string]int{}
	order := make([]string, 0, 8)
	silent := 0
	for _, e := range evals {
		if e.Decision.ShouldNudge {
			continue
		}
		silent++
		for _, reason := range e.Decision.Reasons {
			key := silenceKey(reason)
			if _, seen := counts[key]; !seen {
				order = append(order, key)
			}
			counts[key]++
		}
	}
	m.SilenceRatePercent = int(math.Round(float64(silent) / float64(len(evals)) * 100))

	topKey := ""
	topCount := 0
	for _, key := range order {
		if counts[key] > topCount {
			topKey = key
			topCount = counts[key]
		}
	}
	if topKey == "" {
		return m
	}
	for _, e := range evals {
		if e.Decision.ShouldNudge {
			continue
		}
		for _, reason := range e.Decision.Reasons {
			if silenceKey(reason) == topKey {
				m.TopSilenceReason = e.Decision.Reasons[0]
				return m
			}
		}
	}
	return m
}

func silenceKey(reason string) string {
	r := []rune(strings.ToLower(reason))
	if len(r) > silenceReasonKeyRunes {
		r = r[:silenceReasonKeyRunes]
	}
	return string(r)
}
