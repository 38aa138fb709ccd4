package nudge

// ScoreConfidence blends timing, fit, relationship and penalty signals into
// [0,1]. Penalty fields are read after merging the thread's stored override,
// so callers may pass either the base or the effective thread.
func ScoreConfidence(thread Thread, timing TimingState, fitScore float64, state LearningState) float64 {
	thread = state.EffectiveThread(thread)
	base := 0.0

	switch timing {
	case TimingOptimal:
		base += 0.55
	case TimingLate:
		base += 0.15
	}

	if thread.PriorEngagement {
		base += 0.10
	}
	if thread.TypicalResponseLatencyDays <= 4 {
		base += 0.10
	}
	if fitScore >= FitThreshold {
		base += 0.10
	}
	if thread.SharedConnection != ConnectionNone && thread.SharedConnection != "" {
		base += 0.05
	}

	base -= 0.15 * float64(thread.IgnoredNudgesCount)
	if thread.FollowupAlreadySent {
		base -= 0.30
	}
	if thread.NudgedAlready {
		base -= 0.20
	}

	return roundScore(clamp(base, 0, 1))
}
