package nudge

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyFeedbackNotNowRatchetsThreshold(t *testing.T) {
	state := DefaultLearningState()
	want := []float64{0.8, 0.85, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9}
	for i, w := range want {
		state = ApplyFeedback(state, FeedbackEvent{ThreadID: "t-1", Kind: FeedbackNotNow, Today: testToday})
		if state.UserThreshold != w {
			t.Fatalf("after %d notNow threshold = %v, want %v", i+1, state.UserThreshold, w)
		}
	}
	if got := *state.ThreadOverrides["t-1"].IgnoredNudgesCount; got != 10 {
		t.Fatalf("ignored count = %d, want 10", got)
	}
	if len(state.NudgeHistory) != 10 {
		t.Fatalf("history len = %d, want 10", len(state.NudgeHistory))
	}
}

func TestApplyFeedbackNotNowSetsCooldown(t *testing.T) {
	state := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-1", Kind: FeedbackNotNow, Today: testToday})
	o := state.ThreadOverrides["t-1"]
	if o.ThreadCooldownEnd == nil || !o.ThreadCooldownEnd.Equal(testToday.AddDate(0, 0, 7)) {
		t.Fatalf("cooldown end = %v, want today+7", o.ThreadCooldownEnd)
	}
	if o.NudgedAlready == nil || !*o.NudgedAlready {
		t.Fatalf("nudgedAlready not set")
	}
	want := []HistoryEntry{{ThreadID: "t-1", Date: testToday}}
	if diff := cmp.Diff(want, state.NudgeHistory); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyFeedbackTooEarlyShiftsOnlyItsCategory(t *testing.T) {
	state := DefaultLearningState()
	for i := 0; i < 2; i++ {
		state = ApplyFeedback(state, FeedbackEvent{ThreadID: "t-2", Kind: FeedbackTooEarly, Category: InteractionReferralIntro, Today: testToday})
	}
	if got := state.WindowShift(InteractionReferralIntro); got != 2 {
		t.Fatalf("Referral Intro shift = %d, want 2", got)
	}
	for _, c := range []InteractionType{InteractionCoffeeChat, InteractionRecruiterEmail, InteractionPostInterview} {
		if got := state.WindowShift(c); got != 0 {
			t.Fatalf("%s shift = %d, want 0", c, got)
		}
	}
	if state.UserThreshold != DefaultUserThreshold {
		t.Fatalf("tooEarly must not move the threshold: %v", state.UserThreshold)
	}
	if len(state.NudgeHistory) != 0 {
		t.Fatalf("tooEarly must not write history")
	}
	if got := *state.ThreadOverrides["t-2"].IgnoredNudgesCount; got != 2 {
		t.Fatalf("ignored count = %d, want 2", got)
	}
}

func TestApplyFeedbackOverrides(t *testing.T) {
	cases := []struct {
		kind  FeedbackKind
		check func(ThreadOverride) bool
	}{
		{
			kind:  FeedbackFollowUp,
			check: func(o ThreadOverride) bool {
				return o.FollowupAlreadySent != nil && *o.FollowupAlreadySent
			},
		},
		{
			kind:  FeedbackDismiss,
			check: func(o ThreadOverride) bool {
				return o.NudgedAlready != nil && *o.NudgedAlready && o.IgnoredNudgesCount == nil
			},
		},
		{
			kind:  FeedbackSuppress,
			check: func(o ThreadOverride) bool {
				return o.SuppressThread != nil && *o.SuppressThread
			},
		},
		{
			kind:  FeedbackStillRelevant,
			check: func(o ThreadOverride) bool {
				return o.OverrideFit != nil && *o.OverrideFit
			},
		},
	}
	for _, tc := range cases {
		state := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-3", Kind: tc.kind, Today: testToday})
		if !tc.check(state.ThreadOverrides["t-3"]) {
			t.Fatalf("%s: unexpected override %+v", tc.kind, state.ThreadOverrides["t-3"])
		}
		if state.UserThreshold != DefaultUserThreshold || len(state.NudgeHistory) != 0 {
			t.Fatalf("%s: threshold or history changed", tc.kind)
		}
	}

	suppressed := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-3", Kind: FeedbackSuppress, Today: testToday})
	if !suppressed.IsSuppressed("t-3") {
		t.Fatalf("suppress should add the thread to the suppressed set")
	}
}

func TestApplyFeedbackRecords(t *testing.T) {
	conf := f64(0.9)
	state := ApplyFeedback(DefaultLearningState(), FeedbackEvent{
		ThreadID:   "t-4",
		Kind:       FeedbackFollowUp,
		Today:      testToday,
		ThreadName: "Priya Shah",
		Confidence: conf,
	})
	if len(state.NudgeRecords) != 1 {
		t.Fatalf("records len = %d, want 1", len(state.NudgeRecords))
	}
	rec := state.NudgeRecords[0]
	if rec.ThreadName != "Priya Shah" || rec.ConfidenceScore != 0.9 || rec.Outcome == nil || *rec.Outcome != OutcomeAccepted {
		t.Fatalf("unexpected record %+v", rec)
	}

	noName := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-4", Kind: FeedbackDismiss, Today: testToday, Confidence: conf})
	noConf := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-4", Kind: FeedbackDismiss, Today: testToday, ThreadName: "Priya"})
	stillRelevant := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-4", Kind: FeedbackStillRelevant, Today: testToday, ThreadName: "Priya", Confidence: conf})
	for name, s := range map[string]LearningState{"no name": noName, "no confidence": noConf, "still relevant": stillRelevant} {
		if len(s.NudgeRecords) != 0 {
			t.Fatalf("%s: expected no record, got %d", name, len(s.NudgeRecords))
		}
	}

	outcomes := map[FeedbackKind]NudgeOutcome{
		FeedbackNotNow:   OutcomeIgnored,
		FeedbackTooEarly: OutcomeIgnored,
		FeedbackDismiss:  OutcomeDismissed,
		FeedbackSuppress: OutcomeDismissed,
	}
	for kind, want := range outcomes {
		s := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-4", Kind: kind, Today: testToday, ThreadName: "Priya", Confidence: conf})
		if got := *s.NudgeRecords[0].Outcome; got != want {
			t.Fatalf("%s outcome = %s, want %s", kind, got, want)
		}
	}
}

func TestApplyFeedbackRecordsCappedMostRecentFirst(t *testing.T) {
	state := DefaultLearningState()
	for i := 0; i < 105; i++ {
		state = ApplyFeedback(state, FeedbackEvent{
			ThreadID:   fmt.Sprintf("t-%d", i),
			Kind:       FeedbackDismiss,
			Today:      testToday,
			ThreadName: "Contact",
			Confidence: f64(0.5),
		})
	}
	if len(state.NudgeRecords) != MaxNudgeRecords {
		t.Fatalf("records len = %d, want %d", len(state.NudgeRecords), MaxNudgeRecords)
	}
	if state.NudgeRecords[0].ThreadID != "t-104" {
		t.Fatalf("first record = %s, want t-104", state.NudgeRecords[0].ThreadID)
	}
	if state.NudgeRecords[99].ThreadID != "t-5" {
		t.Fatalf("last record = %s, want t-5", state.NudgeRecords[99].ThreadID)
	}
}

func TestApplyFeedbackLeavesInputUntouched(t *testing.T) {
	state := ApplyFeedback(DefaultLearningState(), FeedbackEvent{ThreadID: "t-5", Kind: FeedbackTooEarly, Category: InteractionCoffeeChat, Today: testToday})
	before := state.Clone()

	for _, kind := range []FeedbackKind{FeedbackFollowUp, FeedbackNotNow, FeedbackTooEarly, FeedbackDismiss, FeedbackSuppress, FeedbackStillRelevant} {
		_ = ApplyFeedback(state, FeedbackEvent{ThreadID: "t-5", Kind: kind, Category: InteractionCoffeeChat, Today: testToday, ThreadName: "X", Confidence: f64(0.8)})
	}
	if diff := cmp.Diff(before, state); diff != "" {
		t.Fatalf("input state mutated (-before +after):\n%s", diff)
	}
}

func TestApplyFeedbackMonotonic(t *testing.T) {
	kinds := []FeedbackKind{FeedbackNotNow, FeedbackDismiss, FeedbackTooEarly, FeedbackFollowUp, FeedbackSuppress, FeedbackStillRelevant, FeedbackNotNow}
	state := DefaultLearningState()
	prevThreshold := state.UserThreshold
	prevShift := 0
	for i := 0; i < 30; i++ {
		kind := kinds[i%len(kinds)]
		id := fmt.Sprintf("t-%d", i%3)
		wasSuppressed := state.IsSuppressed(id)
		state = ApplyFeedback(state, FeedbackEvent{ThreadID: id, Kind: kind, Category: InteractionCoffeeChat, Today: testToday})
		if state.UserThreshold < prevThreshold || state.UserThreshold > MaxUserThreshold {
			t.Fatalf("threshold moved to %v from %v", state.UserThreshold, prevThreshold)
		}
		if shift := state.WindowShift(InteractionCoffeeChat); shift < prevShift {
			t.Fatalf("window shift decreased to %d", shift)
		} else {
			prevShift = shift
		}
		if wasSuppressed && !state.IsSuppressed(id) {
			t.Fatalf("thread %s left the suppressed set", id)
		}
		prevThreshold = state.UserThreshold
	}
}

func TestApplyFeedbackUnknownKindIsNoop(t *testing.T) {
	state := DefaultLearningState()
	got := ApplyFeedback(state, FeedbackEvent{ThreadID: "t-6", Kind: "snooze", Today: testToday})
	if diff := cmp.Diff(state, got); diff != "" {
		t.Fatalf("unknown kind changed state (-want +got):\n%s", diff)
	}
}

func TestParseFeedbackKind(t *testing.T) {
	cases := map[string]FeedbackKind{
		"followUp":       FeedbackFollowUp,
		"follow-up":      FeedbackFollowUp,
		"NOT-NOW":        FeedbackNotNow,
		" tooEarly ":     FeedbackTooEarly,
		"dismiss":        FeedbackDismiss,
		"Suppress":       FeedbackSuppress,
		"still-relevant": FeedbackStillRelevant,
		"stillrelevant":  FeedbackStillRelevant,
	}
	for raw, want := range cases {
		got, err := ParseFeedbackKind(raw)
		if err != nil {
			t.Fatalf("ParseFeedbackKind(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseFeedbackKind(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseFeedbackKind("later"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
