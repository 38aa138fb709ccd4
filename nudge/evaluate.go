package nudge

import "time"

// Evaluation pairs an effective (override-merged) thread with its decision.
type Evaluation struct {
	Thread   Thread   `json:"thread"`
	Decision Decision `json:"decision"`
}

// AssessmentLookup returns a previously obtained fit assessment for a thread,
// or nil. It must not block.
type AssessmentLookup func(thread Thread, focus UserFocus) *FitAssessment

// EvaluateAll decides every thread in order. lookup may be nil.
func EvaluateAll(threads []Thread, focus UserFocus, today time.Time, state LearningState, lookup AssessmentLookup) []Evaluation {
	out := make([]Evaluation, 0, len(threads))
	for _, thread := range threads {
		var assessment *FitAssessment
		if lookup != nil {
			assessment = lookup(thread, focus)
		}
		out = append(out, Evaluation{
			Thread:   state.EffectiveThread(thread),
			Decision: Decide(thread, focus, today, state, assessment),
		})
	}
	return out
}

// ActiveNudge returns the first evaluation that should nudge.
func ActiveNudge(evals []Evaluation) (Evaluation, bool) {
	for _, e := range evals {
		if e.Decision.ShouldNudge {
			return e, true
		}
	}
	return Evaluation{}, false
}
