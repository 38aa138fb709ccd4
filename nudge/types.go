package nudge

import "time"

const (
	DefaultUserThreshold = 0.75
	MaxUserThreshold     = 0.9
	ThresholdStep        = 0.05

	FitThreshold      = 0.75
	OverrideFitScore  = 0.8
	AIConfidenceFloor = 0.75

	GlobalCooldownDays = 7
	ThreadCooldownDays = 7

	MaxReasons      = 4
	MaxNudgeRecords = 100
)

type InteractionType string

const (
	InteractionCoffeeChat     InteractionType = "Coffee Chat"
	InteractionReferralIntro  InteractionType = "Referral Intro"
	InteractionRecruiterEmail InteractionType = "Recruiter Email"
	InteractionPostInterview  InteractionType = "Post-Interview"
)

type TimingState string

const (
	TimingTooEarly TimingState = "TOO_EARLY"
	TimingOptimal  TimingState = "OPTIMAL"
	TimingLate     TimingState = "LATE"
)

type NudgeKind string

const (
	KindFollowUp     NudgeKind = "FOLLOW_UP"
	KindDoNothingYet NudgeKind = "DO_NOTHING_YET"
	KindSilent       NudgeKind = "SILENT"
)

type SharedConnection string

const (
	ConnectionSameSchool      SharedConnection = "Same school"
	ConnectionSameStudentOrg  SharedConnection = "Same student org"
	ConnectionSameHometown    SharedConnection = "Same hometown/country"
	ConnectionFriendOfFriend  SharedConnection = "Friend-of-friend intro"
	ConnectionSamePrevCompany SharedConnection = "Same previous company"
	ConnectionNone            SharedConnection = "None"
)

// Thread is one tracked contact. Values are never mutated by the engine;
// learned deltas live in LearningState.ThreadOverrides.
type Thread struct {
	ID                         string           `json:"id" yaml:"id"`
	Name                       string           `json:"name" yaml:"name"`
	Company                    string           `json:"company" yaml:"company"`
	RoleTitle                  string           `json:"roleTitle" yaml:"roleTitle"`
	Industry                   string           `json:"industry" yaml:"industry"`
	InteractionType            InteractionType  `json:"interactionType" yaml:"interactionType"`
	LastInteraction            time.Time        `json:"lastInteractionDate" yaml:"lastInteractionDate"`
	FollowupAlreadySent        bool             `json:"followupAlreadySent" yaml:"followupAlreadySent"`
	PriorEngagement            bool             `json:"priorEngagement" yaml:"priorEngagement"`
	TypicalResponseLatencyDays int              `json:"typicalResponseLatencyDays" yaml:"typicalResponseLatencyDays"`
	SharedConnection           SharedConnection `json:"sharedConnection" yaml:"sharedConnection"`
	NudgedAlready              bool             `json:"nudgedAlready" yaml:"nudgedAlready"`
	IgnoredNudgesCount         int              `json:"ignoredNudgesCount" yaml:"ignoredNudgesCount"`
	SuppressThread             bool             `json:"suppressThread,omitempty" yaml:"suppressThread,omitempty"`
	OverrideFit                bool             `json:"overrideFit,omitempty" yaml:"overrideFit,omitempty"`
}

type UserFocus struct {
	TargetIndustry  string `json:"targetIndustry" yaml:"targetIndustry"`
	TargetRole      string `json:"targetRole" yaml:"targetRole"`
	RecruitingStage string `json:"recruitingStage" yaml:"recruitingStage"`
}

// Decision is the per-evaluation output. It is recomputed on every call and
// never persisted.
type Decision struct {
	ShouldNudge     bool        `json:"shouldNudge"`
	Kind            NudgeKind   `json:"nudgeType"`
	Reasons         []string    `json:"reasons"`
	InputsUsed      []string    `json:"inputsUsed"`
	ConfidenceScore float64     `json:"confidenceScore"`
	FitScore        float64     `json:"fitScore"`
	TimingState     TimingState `json:"timingState"`
	DaysSince       int         `json:"daysSince"`
	Fit             FitResult   `json:"fit"`
}

type NudgeOutcome string

const (
	OutcomeAccepted  NudgeOutcome = "accepted"
	OutcomeIgnored   NudgeOutcome = "ignored"
	OutcomeDismissed NudgeOutcome = "dismissed"
)

// NudgeRecord is an audit entry. A nil Outcome means pending.
type NudgeRecord struct {
	ThreadID        string        `json:"threadId"`
	ThreadName      string        `json:"threadName"`
	Date            time.Time     `json:"date"`
	ConfidenceScore float64       `json:"confidenceScore"`
	Outcome         *NudgeOutcome `json:"outcome"`
}

type HistoryEntry struct {
	ThreadID string    `json:"threadId"`
	Date     time.Time `json:"date"`
}
