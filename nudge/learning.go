package nudge

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type FeedbackKind string

const (
	FeedbackFollowUp      FeedbackKind = "followUp"
	FeedbackNotNow        FeedbackKind = "notNow"
	FeedbackTooEarly      FeedbackKind = "tooEarly"
	FeedbackDismiss       FeedbackKind = "dismiss"
	FeedbackSuppress      FeedbackKind = "suppress"
	FeedbackStillRelevant FeedbackKind = "stillRelevant"
)

var feedbackAliases = map[string]FeedbackKind{
	"followup":       FeedbackFollowUp,
	"follow-up":      FeedbackFollowUp,
	"notnow":         FeedbackNotNow,
	"not-now":        FeedbackNotNow,
	"tooearly":       FeedbackTooEarly,
	"too-early":      FeedbackTooEarly,
	"dismiss":        FeedbackDismiss,
	"suppress":       FeedbackSuppress,
	"stillrelevant":  FeedbackStillRelevant,
	"still-relevant": FeedbackStillRelevant,
}

// ParseFeedbackKind accepts the canonical camelCase names as well as
// kebab-case spellings, case-insensitively.
func ParseFeedbackKind(raw string) (FeedbackKind, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if kind, ok := feedbackAliases[key]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unknown feedback kind %q", raw)
}

// FeedbackEvent is one user reaction to a thread's decision. ThreadName and
// Confidence are optional; a NudgeRecord is only written when both are set.
type FeedbackEvent struct {
	ThreadID   string
	Kind       FeedbackKind
	Category   InteractionType
	Today      time.Time
	ThreadName string
	Confidence *float64
}

// ApplyFeedback returns the state that results from ev. The input state is
// left untouched. Threshold, window shifts and suppression only ever move in
// one direction.
func ApplyFeedback(state LearningState, ev FeedbackEvent) LearningState {
	next := state.Clone()
	override := next.ThreadOverrides[ev.ThreadID]
	var outcome *NudgeOutcome

	switch ev.Kind {
	case FeedbackFollowUp:
		override.FollowupAlreadySent = boolPtr(true)
		outcome = outcomePtr(OutcomeAccepted)

	case FeedbackNotNow:
		next.UserThreshold = raiseThreshold(next.UserThreshold)
		end := ev.Today.AddDate(0, 0, ThreadCooldownDays)
		override.ThreadCooldownEnd = &end
		next.NudgeHistory = append(next.NudgeHistory, HistoryEntry{ThreadID: ev.ThreadID, Date: ev.Today})
		override.NudgedAlready = boolPtr(true)
		override.IgnoredNudgesCount = intPtr(ignoredCount(override) + 1)
		outcome = outcomePtr(OutcomeIgnored)

	case FeedbackTooEarly:
		next.WindowShifts[ev.Category] = next.WindowShifts[ev.Category] + 1
		override.NudgedAlready = boolPtr(true)
		override.IgnoredNudgesCount = intPtr(ignoredCount(override) + 1)
		outcome = outcomePtr(OutcomeIgnored)

	case FeedbackDismiss:
		override.NudgedAlready = boolPtr(true)
		outcome = outcomePtr(OutcomeDismissed)

	case FeedbackSuppress:
		next.SuppressedThreads[ev.ThreadID] = struct{}{}
		override.SuppressThread = boolPtr(true)
		outcome = outcomePtr(OutcomeDismissed)

	case FeedbackStillRelevant:
		override.OverrideFit = boolPtr(true)

	default:
		return next
	}

	if outcome != nil && strings.TrimSpace(ev.ThreadName) != "" && ev.Confidence != nil {
		record := NudgeRecord{
			ThreadID:        ev.ThreadID,
			ThreadName:      ev.ThreadName,
			Date:            ev.Today,
			ConfidenceScore: *ev.Confidence,
			Outcome:         outcome,
		}
		records := make([]NudgeRecord, 0, len(next.NudgeRecords)+1)
		records = append(records, record)
		records = append(records, next.NudgeRecords...)
		if len(records) > MaxNudgeRecords {
			records = records[:MaxNudgeRecords]
		}
		next.NudgeRecords = records
	}

	next.ThreadOverrides[ev.ThreadID] = override
	return next
}

// raiseThreshold steps t up by ThresholdStep, capped at MaxUserThreshold.
// Values already above the cap are left alone.
func raiseThreshold(t float64) float64 {
	if t >= MaxUserThreshold {
		return t
	}
	return math.Min(MaxUserThreshold, roundScore(t+ThresholdStep))
}

// ignoredCount reads the running count from the override only; the base
// thread's count is not folded in.
func ignoredCount(o ThreadOverride) int {
	if o.IgnoredNudgesCount == nil {
		return 0
	}
	return *o.IgnoredNudgesCount
}

func outcomePtr(o NudgeOutcome) *NudgeOutcome { return &o }
