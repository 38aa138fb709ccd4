package nudge

import (
	"fmt"
	"math"
	"time"
)

const (
	inputDaysSince         = "daysSince"
	inputTimingState       = "timingState"
	inputFitScore          = "fitScore"
	inputConfidenceScore   = "confidenceScore"
	inputSuppressThread    = "suppressThread"
	inputGlobalCooldown    = "globalCooldown"
	inputThreadCooldown    = "threadCooldown"
	inputTimingTooEarly    = "timingTooEarly"
	inputTimingLate        = "timingLate"
	inputLowFit            = "lowFit"
	inputAlreadyFollowedUp = "alreadyFollowedUp"
	inputAlreadyNudged     = "alreadyNudged"
	inputLowConfidence     = "lowConfidence"
)

const (
	reasonSuppressed     = "This thread has been suppressed."
	reasonTimingOptimal  = "Timing is within the optimal window for this interaction type."
	reasonFitStrong      = "Strong fit with your recruiting focus."
	reasonPriorEngaged   = "You have prior engagement with this contact."
	reasonWindowMatch    = "Now is within your usual follow-up window."
	reasonGlobalCooldown = "You recently received a nudge (max 1 per 7 days)."
	reasonLowFit         = "Fit score is below threshold (0.75)."
	reasonFollowedUp     = "You have already followed up with this contact."
	reasonAlreadyNudged  = "A nudge was already shown for this thread (max 1 per thread)."
	reasonNoAction       = "No specific action needed at this time."
)

// Decide evaluates one thread on today. It is a pure reduction over its
// inputs and never fails. assessment may be nil.
func Decide(thread Thread, focus UserFocus, today time.Time, state LearningState, assessment *FitAssessment) Decision {
	override := state.Override(thread.ID)
	effective := ApplyOverride(thread, override)

	if effective.SuppressThread || state.IsSuppressed(thread.ID) {
		return Decision{
			ShouldNudge:     false,
			Kind:            KindSilent,
			Reasons:         []string{reasonSuppressed},
			InputsUsed:      []string{inputSuppressThread},
			ConfidenceScore: 0,
			FitScore:        0,
			TimingState:     TimingTooEarly,
			DaysSince:       0,
			Fit:             FitResult{Mode: FitModeRules},
		}
	}

	daysSince := DaysSince(today, effective.LastInteraction)
	shift := state.WindowShift(effective.InteractionType)
	window := ShiftedWindow(effective.InteractionType, shift)
	timing := ClassifyTiming(daysSince, effective.InteractionType, shift)

	fit := ScoreFit(effective, focus, assessment)
	if effective.OverrideFit {
		fit.Score = OverrideFitScore
		fit.Mode = FitModeOverride
	}
	fitScore := fit.Score

	confidence := ScoreConfidence(effective, timing, fitScore, state)

	inGlobalCooldown := state.NudgesInWindow(today) >= 1
	inThreadCooldown := false
	remaining := 0
	if end := override.ThreadCooldownEnd; end != nil && end.After(today) {
		inThreadCooldown = true
		remaining = int(math.Ceil(end.Sub(today).Hours() / 24))
	}

	shouldNudge := !inGlobalCooldown &&
		!inThreadCooldown &&
		!effective.NudgedAlready &&
		confidence >= state.UserThreshold &&
		fitScore >= FitThreshold &&
		!effective.FollowupAlreadySent &&
		timing == TimingOptimal &&
		!effective.SuppressThread

	kind := KindSilent
	reasons := make([]string, 0, 8)
	inputs := []string{inputDaysSince, inputTimingState, inputFitScore, inputConfidenceScore}

	if shouldNudge {
		kind = KindFollowUp
		reasons = append(reasons, reasonTimingOptimal)
		if fitScore >= FitThreshold {
			reasons = append(reasons, reasonFitStrong)
		}
		if effective.PriorEngagement {
			reasons = append(reasons, reasonPriorEngaged)
		}
		if timing == TimingOptimal {
			reasons = append(reasons, reasonWindowMatch)
		}
	} else {
		if inGlobalCooldown {
			reasons = append(reasons, reasonGlobalCooldown)
			inputs = append(inputs, inputGlobalCooldown)
		}
		if inThreadCooldown {
			reasons = append(reasons, fmt.Sprintf("This thread is in cooldown (%d %s remaining).", remaining, plural(remaining, "day", "days")))
			inputs = append(inputs, inputThreadCooldown)
		}
		switch timing {
		case TimingTooEarly:
			kind = KindDoNothingYet
			reasons = append(reasons, fmt.Sprintf("It's only been %d days. The optimal window is %d-%d days.", daysSince, window.Min, window.Max))
			inputs = append(inputs, inputTimingTooEarly)
		case TimingLate:
			reasons = append(reasons, fmt.Sprintf("It's been %d days (optimal window ended).", daysSince))
			inputs = append(inputs, inputTimingLate)
		}
		if fitScore < FitThreshold && !effective.OverrideFit {
			reasons = append(reasons, reasonLowFit)
			inputs = append(inputs, inputLowFit)
		}
		if effective.FollowupAlreadySent {
			reasons = append(reasons, reasonFollowedUp)
			inputs = append(inputs, inputAlreadyFollowedUp)
		}
		if effective.NudgedAlready {
			reasons = append(reasons, reasonAlreadyNudged)
			inputs = append(inputs, inputAlreadyNudged)
		}
		if confidence < state.UserThreshold {
			reasons = append(reasons, fmt.Sprintf("Confidence score (%.2f) is below your threshold (%.2f).", confidence, state.UserThreshold))
			inputs = append(inputs, inputLowConfidence)
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, reasonNoAction)
	}
	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}

	return Decision{
		ShouldNudge:     shouldNudge,
		Kind:            kind,
		Reasons:         reasons,
		InputsUsed:      inputs,
		ConfidenceScore: confidence,
		FitScore:        fitScore,
		TimingState:     timing,
		DaysSince:       daysSince,
		Fit:             fit,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
