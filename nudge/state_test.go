package nudge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleState() LearningState {
	state := DefaultLearningState()
	state = ApplyFeedback(state, FeedbackEvent{ThreadID: "t-b", Kind: FeedbackNotNow, Today: testToday, ThreadName: "Bo", Confidence: f64(0.81)})
	state = ApplyFeedback(state, FeedbackEvent{ThreadID: "t-a", Kind: FeedbackSuppress, Today: testToday})
	state = ApplyFeedback(state, FeedbackEvent{ThreadID: "t-z", Kind: FeedbackSuppress, Today: testToday})
	state = ApplyFeedback(state, FeedbackEvent{ThreadID: "t-c", Kind: FeedbackTooEarly, Category: InteractionPostInterview, Today: testToday})
	return state
}

func TestLearningStateJSONRoundTrip(t *testing.T) {
	state := sampleState()
	raw, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(raw), `"suppressedThreads":["t-a","t-z"]`) {
		t.Fatalf("suppressed threads should persist as a sorted list: %s", raw)
	}
	if !strings.Contains(string(raw), `"windowShifts":{"Post-Interview":1}`) {
		t.Fatalf("window shifts keyed by category name: %s", raw)
	}

	got, err := DecodeLearningState(raw)
	if err != nil {
		t.Fatalf("DecodeLearningState() error = %v", err)
	}
	if diff := cmp.Diff(state, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeLearningStateEmpty(t *testing.T) {
	for _, raw := range []string{"", "   \n"} {
		got, err := DecodeLearningState([]byte(raw))
		if err != nil {
			t.Fatalf("DecodeLearningState(%q) error = %v", raw, err)
		}
		if diff := cmp.Diff(DefaultLearningState(), got); diff != "" {
			t.Fatalf("empty input should yield defaults (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeLearningStateCorrupt(t *testing.T) {
	cases := []string{
		`{"userThreshold":`,
		`not json`,
		`{"userThreshold":1.5}`,
		`{"userThreshold":-0.1}`,
		`{"nudgeHistory":"yesterday"}`,
	}
	for _, raw := range cases {
		got, err := DecodeLearningState([]byte(raw))
		if err == nil {
			t.Fatalf("DecodeLearningState(%q) expected error", raw)
		}
		if got.UserThreshold != DefaultUserThreshold || got.WindowShifts == nil || got.ThreadOverrides == nil {
			t.Fatalf("DecodeLearningState(%q) should fall back to defaults, got %+v", raw, got)
		}
	}
}

func TestDecodeLearningStatePartial(t *testing.T) {
	got, err := DecodeLearningState([]byte(`{"userThreshold":0.85}`))
	if err != nil {
		t.Fatalf("DecodeLearningState() error = %v", err)
	}
	if got.UserThreshold != 0.85 {
		t.Fatalf("threshold = %v, want 0.85", got.UserThreshold)
	}
	if got.WindowShifts == nil || got.SuppressedThreads == nil || got.NudgeHistory == nil {
		t.Fatalf("missing collections should be initialized: %+v", got)
	}
}

func TestDecodeLearningStateTruncatesRecords(t *testing.T) {
	records := make([]NudgeRecord, 120)
	for i := range records {
		records[i] = NudgeRecord{ThreadID: "t", ThreadName: "n", Date: testToday}
	}
	raw, err := json.Marshal(map[string]any{"nudgeRecords": records})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := DecodeLearningState(raw)
	if err != nil {
		t.Fatalf("DecodeLearningState() error = %v", err)
	}
	if len(got.NudgeRecords) != MaxNudgeRecords {
		t.Fatalf("records len = %d, want %d", len(got.NudgeRecords), MaxNudgeRecords)
	}
}

func TestLearningStateCloneIsDeep(t *testing.T) {
	state := sampleState()
	clone := state.Clone()

	clone.WindowShifts[InteractionCoffeeChat] = 9
	clone.SuppressedThreads["t-new"] = struct{}{}
	*clone.ThreadOverrides["t-b"].IgnoredNudgesCount = 42
	clone.NudgeHistory[0].ThreadID = "changed"
	*clone.NudgeRecords[0].Outcome = OutcomeAccepted

	if state.WindowShift(InteractionCoffeeChat) != 0 || state.IsSuppressed("t-new") {
		t.Fatalf("clone shares maps with the original")
	}
	if *state.ThreadOverrides["t-b"].IgnoredNudgesCount != 1 {
		t.Fatalf("clone shares override pointers with the original")
	}
	if state.NudgeHistory[0].ThreadID != "t-b" {
		t.Fatalf("clone shares history with the original")
	}
	if *state.NudgeRecords[0].Outcome != OutcomeIgnored {
		t.Fatalf("clone shares record outcomes with the original")
	}
}

func TestNudgesInWindowAndPrune(t *testing.T) {
	state := DefaultLearningState()
	state.NudgeHistory = []HistoryEntry{
		{ThreadID: "old", Date: daysBefore(testToday, 8)},
		{ThreadID: "edge", Date: daysBefore(testToday, 7)},
		{ThreadID: "recent", Date: daysBefore(testToday, 1)},
		{ThreadID: "future", Date: testToday.AddDate(0, 0, 1)},
	}
	if got := state.NudgesInWindow(testToday); got != 2 {
		t.Fatalf("NudgesInWindow() = %d, want 2", got)
	}

	pruned := PruneHistory(state, testToday)
	var ids []string
	for _, e := range pruned.NudgeHistory {
		ids = append(ids, e.ThreadID)
	}
	if diff := cmp.Diff([]string{"edge", "recent", "future"}, ids); diff != "" {
		t.Fatalf("pruned history mismatch (-want +got):\n%s", diff)
	}
	if len(state.NudgeHistory) != 4 {
		t.Fatalf("PruneHistory mutated its input")
	}
	if pruned.NudgesInWindow(testToday) != state.NudgesInWindow(testToday) {
		t.Fatalf("pruning changed the cooldown count")
	}
}
