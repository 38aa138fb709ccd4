package nudge

import "time"

// ThreadOverride is a sparse patch over a Thread. A nil field leaves the
// base value in place.
type ThreadOverride struct {
	FollowupAlreadySent *bool      `json:"followupAlreadySent,omitempty"`
	NudgedAlready       *bool      `json:"nudgedAlready,omitempty"`
	IgnoredNudgesCount  *int       `json:"ignoredNudgesCount,omitempty"`
	SuppressThread      *bool      `json:"suppressThread,omitempty"`
	OverrideFit         *bool      `json:"overrideFit,omitempty"`
	ThreadCooldownEnd   *time.Time `json:"threadCooldownEnd,omitempty"`
}

func (o ThreadOverride) IsZero() bool {
	return o.FollowupAlreadySent == nil &&
		o.NudgedAlready == nil &&
		o.IgnoredNudgesCount == nil &&
		o.SuppressThread == nil &&
		o.OverrideFit == nil &&
		o.ThreadCooldownEnd == nil
}

// ApplyOverride returns thread with every present override field applied.
func ApplyOverride(thread Thread, o ThreadOverride) Thread {
	if o.FollowupAlreadySent != nil {
		thread.FollowupAlreadySent = *o.FollowupAlreadySent
	}
	if o.NudgedAlready != nil {
		thread.NudgedAlready = *o.NudgedAlready
	}
	if o.IgnoredNudgesCount != nil {
		thread.IgnoredNudgesCount = *o.IgnoredNudgesCount
	}
	if o.SuppressThread != nil {
		thread.SuppressThread = *o.SuppressThread
	}
	if o.OverrideFit != nil {
		thread.OverrideFit = *o.OverrideFit
	}
	return thread
}

func (o ThreadOverride) clone() ThreadOverride {
	out := ThreadOverride{}
	if o.FollowupAlreadySent != nil {
		out.FollowupAlreadySent = boolPtr(*o.FollowupAlreadySent)
	}
	if o.NudgedAlready != nil {
		out.NudgedAlready = boolPtr(*o.NudgedAlready)
	}
	if o.IgnoredNudgesCount != nil {
		out.IgnoredNudgesCount = intPtr(*o.IgnoredNudgesCount)
	}
	if o.SuppressThread != nil {
		out.SuppressThread = boolPtr(*o.SuppressThread)
	}
	if o.OverrideFit != nil {
		out.OverrideFit = boolPtr(*o.OverrideFit)
	}
	if o.ThreadCooldownEnd != nil {
		ts := *o.ThreadCooldownEnd
		out.ThreadCooldownEnd = &ts
	}
	return out
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }
