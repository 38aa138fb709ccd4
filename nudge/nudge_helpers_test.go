package nudge

import "time"

var testToday = time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)

func daysBefore(today time.Time, n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func testFocus() UserFocus {
	return UserFocus{
		TargetIndustry:  "Investment Banking",
		TargetRole:      "TMT",
		RecruitingStage: "Networking",
	}
}

// strongThread is optimal on testToday for a Coffee Chat (4 days, window 3-6)
// and matches testFocus on every rule-based signal.
func strongThread() Thread {
	return Thread{
		ID:                         "t-strong",
		Name:                       "Priya Shah",
		Company:                    "Evercore",
		RoleTitle:                  "TMT Analyst",
		Industry:                   "Investment Banking",
		InteractionType:            InteractionCoffeeChat,
		LastInteraction:            daysBefore(testToday, 4),
		PriorEngagement:            true,
		TypicalResponseLatencyDays: 2,
		SharedConnection:           ConnectionSameSchool,
	}
}

func f64(v float64) *float64 { return &v }
