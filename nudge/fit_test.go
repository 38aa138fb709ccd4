package nudge

import (
	"encoding/json"
	"testing"
)

func TestScoreFitRuleBased(t *testing.T) {
	thread := strongThread()
	got := ScoreFit(thread, testFocus(), nil)
	if got.Mode != FitModeRules {
		t.Fatalf("mode = %s, want rules", got.Mode)
	}
	if got.Score != 1.0 {
		t.Fatalf("score = %v, want 1.0 (0.4+0.3+0.2+0.1+0.05 clamped)", got.Score)
	}
	if got.Assessment != nil || got.Explanation() != "" {
		t.Fatalf("rule mode should not carry an assessment: %+v", got)
	}

	thread.Industry = "consulting"
	thread.RoleTitle = "Vice President"
	thread.PriorEngagement = false
	thread.SharedConnection = ConnectionNone
	if got := ScoreFit(thread, testFocus(), nil); got.Score != 0.1 {
		t.Fatalf("weak thread score = %v, want 0.1", got.Score)
	}
}

func TestScoreFitRoleKeywordOverlap(t *testing.T) {
	base := Thread{Industry: "Tech", SharedConnection: ConnectionNone}
	focus := UserFocus{TargetIndustry: "Banking", TargetRole: "Software Engineer"}

	cases := []struct {
		title string
		want  float64
	}{
		{title: "Senior Software Developer", want: 0.4},
		{title: "ENGINEERING Manager", want: 0.4},
		{title: "Trader", want: 0.1},
		{title: "Staff Engineer", want: 0.4},
		{title: "soft", want: 0.4},
		{title: "Recruiter", want: 0.1},
		{title: "Associate Product Manager", want: 0.2},
	}
	for _, tc := range cases {
		base.RoleTitle = tc.title
		if got := ScoreFit(base, focus, nil).Score; got != tc.want {
			t.Fatalf("ScoreFit(title=%q) = %v, want %v", tc.title, got, tc.want)
		}
	}

	base.RoleTitle = "Analyst"
	if got := ScoreFit(base, UserFocus{TargetRole: "   "}, nil).Score; got != 0.2 {
		t.Fatalf("blank target role should not match: got %v want 0.2", got)
	}
}

func TestScoreFitEmptyTargetRoleNeverMatches(t *testing.T) {
	thread := Thread{RoleTitle: "VP", SharedConnection: ConnectionNone}
	if got := ScoreFit(thread, UserFocus{}, nil).Score; got != 0.5 {
		t.Fatalf("empty focus score = %v, want 0.5 (industry 0.4 + seniority 0.1, no role bonus)", got)
	}
	if roleKeywordsOverlap("", "VP") {
		t.Fatalf("roleKeywordsOverlap(\"\", \"VP\") = true, want false")
	}
}

func TestScoreFitIndustryIsCaseInsensitive(t *testing.T) {
	thread := Thread{Industry: "investment BANKING", RoleTitle: "VP", SharedConnection: ConnectionNone}
	if got := ScoreFit(thread, testFocus(), nil).Score; got != 0.5 {
		t.Fatalf("score = %v, want 0.5", got)
	}
}

func TestScoreFitConnectionBonus(t *testing.T) {
	cases := map[SharedConnection]float64{
		ConnectionSameSchool:      0.15,
		ConnectionSameHometown:    0.15,
		ConnectionSameStudentOrg:  0.18,
		ConnectionFriendOfFriend:  0.18,
		ConnectionSamePrevCompany: 0.18,
		ConnectionNone:            0.1,
	}
	for conn, want := range cases {
		thread := Thread{Industry: "x", RoleTitle: "Director", SharedConnection: conn}
		if got := ScoreFit(thread, testFocus(), nil).Score; got != want {
			t.Fatalf("ScoreFit(%q) = %v, want %v", conn, got, want)
		}
	}
}

func TestScoreFitAIMode(t *testing.T) {
	thread := strongThread()
	thread.PriorEngagement = false
	thread.SharedConnection = ConnectionNone

	assessment := &FitAssessment{
		IndustryMatch:   MatchYes,
		RoleMatch:       MatchUnknown,
		SeniorityBucket: SeniorityManagerPlus,
		Confidence:      0.8,
		Explanation:     "Same industry; role unclear.",
	}
	got := ScoreFit(thread, testFocus(), assessment)
	if got.Mode != FitModeAI {
		t.Fatalf("mode = %s, want ai", got.Mode)
	}
	if got.Score != 0.5 {
		t.Fatalf("score = %v, want 0.5 (0.4 industry + 0 unknown role + 0.1 manager_plus)", got.Score)
	}
	if got.Explanation() != "Same industry; role unclear." {
		t.Fatalf("explanation = %q", got.Explanation())
	}
	assessment.Explanation = "mutated"
	if got.Explanation() == "mutated" {
		t.Fatalf("FitResult must hold its own copy of the assessment")
	}
}

func TestScoreFitLowConfidenceAssessmentFallsBack(t *testing.T) {
	thread := strongThread()
	assessment := &FitAssessment{
		IndustryMatch:   MatchNo,
		RoleMatch:       MatchNo,
		SeniorityBucket: SeniorityUnknown,
		Confidence:      0.74,
	}
	got := ScoreFit(thread, testFocus(), assessment)
	if got.Mode != FitModeRules {
		t.Fatalf("mode = %s, want rules below confidence floor", got.Mode)
	}
	if got.Score != 1.0 {
		t.Fatalf("score = %v, want rule-based 1.0", got.Score)
	}

	assessment.Confidence = 0.75
	if got := ScoreFit(thread, testFocus(), assessment); got.Mode != FitModeAI {
		t.Fatalf("confidence exactly at floor should select ai mode")
	}
}

func TestScoreFitAlwaysInRangeAndDeterministic(t *testing.T) {
	buckets := []SeniorityBucket{SeniorityStudent, SeniorityAnalyst, SeniorityAssociate, SeniorityManagerPlus, SeniorityUnknown}
	matches := []Match{MatchYes, MatchNo, MatchUnknown}
	conns := []SharedConnection{ConnectionSameSchool, ConnectionSameStudentOrg, ConnectionNone}
	for _, b := range buckets {
		for _, im := range matches {
			for _, rm := range matches {
				for _, c := range conns {
					thread := strongThread()
					thread.SharedConnection = c
					a := &FitAssessment{IndustryMatch: im, RoleMatch: rm, SeniorityBucket: b, Confidence: 0.9}
					first := ScoreFit(thread, testFocus(), a)
					second := ScoreFit(thread, testFocus(), a)
					if first.Score < 0 || first.Score > 1 {
						t.Fatalf("score out of range: %v", first.Score)
					}
					if first.Score != second.Score || first.Mode != second.Mode {
						t.Fatalf("non-deterministic fit: %+v vs %+v", first, second)
					}
				}
			}
		}
	}
}

func TestFitBucketFor(t *testing.T) {
	cases := map[float64]FitBucket{1: FitHigh, 0.75: FitHigh, 0.74: FitMed, 0.5: FitMed, 0.49: FitLow, 0: FitLow}
	for score, want := range cases {
		if got := FitBucketFor(score); got != want {
			t.Fatalf("FitBucketFor(%v) = %s, want %s", score, got, want)
		}
	}
}

func TestMatchMarshalJSON(t *testing.T) {
	raw, err := json.Marshal(FitAssessment{IndustryMatch: MatchYes, RoleMatch: MatchUnknown, SeniorityBucket: SeniorityAnalyst})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out["industry_match"] != float64(1) {
		t.Fatalf("industry_match = %v, want 1", out["industry_match"])
	}
	if out["role_match"] != "unknown" {
		t.Fatalf("role_match = %v, want unknown", out["role_match"])
	}
}

func TestMatchUnmarshalJSON(t *testing.T) {
	var a FitAssessment
	if err := json.Unmarshal([]byte(`{"industry_match":0,"role_match":"unknown"}`), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if a.IndustryMatch != MatchNo || a.RoleMatch != MatchUnknown {
		t.Fatalf("assessment = %+v", a)
	}
	if err := json.Unmarshal([]byte(`{"industry_match":2}`), &a); err == nil {
		t.Fatalf("Unmarshal(2) expected error")
	}
}
