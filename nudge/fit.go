package nudge

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Match is a tri-state signal reported by an external fit normalizer.
type Match int8

const (
	MatchNo      Match = 0
	MatchYes     Match = 1
	MatchUnknown Match = -1
)

func (m Match) String() string {
	switch m {
	case MatchYes:
		return "1"
	case MatchNo:
		return "0"
	default:
		return "unknown"
	}
}

func (m Match) MarshalJSON() ([]byte, error) {
	switch m {
	case MatchYes:
		return []byte("1"), nil
	case MatchNo:
		return []byte("0"), nil
	default:
		return json.Marshal("unknown")
	}
}

func (m *Match) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "1", "true":
		*m = MatchYes
	case "0", "false":
		*m = MatchNo
	case `"unknown"`, "null":
		*m = MatchUnknown
	default:
		return fmt.Errorf("invalid match value %s", data)
	}
	return nil
}

type SeniorityBucket string

const (
	SeniorityStudent     SeniorityBucket = "student"
	SeniorityAnalyst     SeniorityBucket = "analyst"
	SeniorityAssociate   SeniorityBucket = "associate"
	SeniorityManagerPlus SeniorityBucket = "manager_plus"
	SeniorityUnknown     SeniorityBucket = "unknown"
)

func (b SeniorityBucket) Valid() bool {
	switch b {
	case SeniorityStudent, SeniorityAnalyst, SeniorityAssociate, SeniorityManagerPlus, SeniorityUnknown:
		return true
	default:
		return false
	}
}

func (b SeniorityBucket) early() bool {
	return b == SeniorityStudent || b == SeniorityAnalyst || b == SeniorityAssociate
}

type FitNotes struct {
	NormalizedIndustry string `json:"normalized_industry"`
	NormalizedRole     string `json:"normalized_role"`
}

// FitAssessment is a validated reply from an external fit normalizer.
type FitAssessment struct {
	IndustryMatch   Match           `json:"industry_match"`
	RoleMatch       Match           `json:"role_match"`
	SeniorityBucket SeniorityBucket `json:"seniority_bucket"`
	Notes           FitNotes        `json:"notes"`
	Confidence      float64         `json:"confidence"`
	Explanation     string          `json:"explanation"`
}

// Usable reports whether the assessment is confident enough to replace the
// rule-based signals.
func (a *FitAssessment) Usable() bool {
	return a != nil && a.Confidence >= AIConfidenceFloor
}

type FitMode string

const (
	FitModeRules    FitMode = "rules"
	FitModeAI       FitMode = "ai"
	FitModeOverride FitMode = "override"
)

// FitResult carries the score together with its provenance so callers can
// disclose whether an external assessment was used.
type FitResult struct {
	Score      float64        `json:"score"`
	Mode       FitMode        `json:"mode"`
	Assessment *FitAssessment `json:"assessment,omitempty"`
}

func (r FitResult) Explanation() string {
	if r.Assessment == nil {
		return ""
	}
	return strings.TrimSpace(r.Assessment.Explanation)
}

// ScoreFit scores how well thread matches focus. The assessment is used only
// when it is Usable; otherwise the rule-based signals apply.
func ScoreFit(thread Thread, focus UserFocus, assessment *FitAssessment) FitResult {
	score := 0.0
	result := FitResult{Mode: FitModeRules}

	if assessment.Usable() {
		result.Mode = FitModeAI
		cp := *assessment
		result.Assessment = &cp
		if assessment.IndustryMatch == MatchYes {
			score += 0.4
		}
		if assessment.RoleMatch == MatchYes {
			score += 0.3
		}
		if assessment.SeniorityBucket.early() {
			score += 0.2
		} else {
			score += 0.1
		}
	} else {
		if strings.EqualFold(thread.Industry, focus.TargetIndustry) {
			score += 0.4
		}
		if roleKeywordsOverlap(focus.TargetRole, thread.RoleTitle) {
			score += 0.3
		}
		if earlyCareerTitle(thread.RoleTitle) {
			score += 0.2
		} else {
			score += 0.1
		}
	}

	if thread.PriorEngagement {
		score += 0.1
	}
	score += connectionBonus(thread.SharedConnection)

	result.Score = roundScore(math.Min(score, 1.0))
	return result
}

// roleKeywordsOverlap matches when any whitespace token of target is a
// substring of title or title is a substring of the token.
func roleKeywordsOverlap(target, title string) bool {
	title = strings.ToLower(title)
	for _, keyword := range strings.Fields(strings.ToLower(target)) {
		if strings.Contains(title, keyword) || strings.Contains(keyword, title) {
			return true
		}
	}
	return false
}

func earlyCareerTitle(title string) bool {
	title = strings.ToLower(title)
	for _, marker := range []string{"student", "analyst", "associate"} {
		if strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

func connectionBonus(c SharedConnection) float64 {
	switch c {
	case ConnectionSameSchool, ConnectionSameHometown:
		return 0.05
	case ConnectionSameStudentOrg, ConnectionFriendOfFriend, ConnectionSamePrevCompany:
		return 0.08
	default:
		return 0
	}
}

type FitBucket string

const (
	FitHigh FitBucket = "High"
	FitMed  FitBucket = "Med"
	FitLow  FitBucket = "Low"
)

func FitBucketFor(score float64) FitBucket {
	switch {
	case score >= FitThreshold:
		return FitHigh
	case score >= 0.5:
		return FitMed
	default:
		return FitLow
	}
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
