package nudge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// LearningState is the adaptive state shared by every evaluation. It is
// treated as a value: transitions return a fresh copy and never touch the
// receiver's maps or slices.
type LearningState struct {
	UserThreshold     float64
	WindowShifts      map[InteractionType]int
	ThreadOverrides   map[string]ThreadOverride
	NudgeHistory      []HistoryEntry
	SuppressedThreads map[string]struct{}
	NudgeRecords      []NudgeRecord
}

func DefaultLearningState() LearningState {
	return LearningState{
		UserThreshold:     DefaultUserThreshold,
		WindowShifts:      map[InteractionType]int{},
		ThreadOverrides:   map[string]ThreadOverride{},
		NudgeHistory:      []HistoryEntry{},
		SuppressedThreads: map[string]struct{}{},
		NudgeRecords:      []NudgeRecord{},
	}
}

// Clone returns a deep copy. Nil collections come back empty.
func (s LearningState) Clone() LearningState {
	out := LearningState{
		UserThreshold:     s.UserThreshold,
		WindowShifts:      make(map[InteractionType]int, len(s.WindowShifts)),
		ThreadOverrides:   make(map[string]ThreadOverride, len(s.ThreadOverrides)),
		NudgeHistory:      make([]HistoryEntry, len(s.NudgeHistory)),
		SuppressedThreads: make(map[string]struct{}, len(s.SuppressedThreads)),
		NudgeRecords:      make([]NudgeRecord, 0, len(s.NudgeRecords)),
	}
	for k, v := range s.WindowShifts {
		out.WindowShifts[k] = v
	}
	for k, v := range s.ThreadOverrides {
		out.ThreadOverrides[k] = v.clone()
	}
	copy(out.NudgeHistory, s.NudgeHistory)
	for k := range s.SuppressedThreads {
		out.SuppressedThreads[k] = struct{}{}
	}
	for _, rec := range s.NudgeRecords {
		if rec.Outcome != nil {
			outcome := *rec.Outcome
			rec.Outcome = &outcome
		}
		out.NudgeRecords = append(out.NudgeRecords, rec)
	}
	return out
}

func (s LearningState) WindowShift(category InteractionType) int {
	return s.WindowShifts[category]
}

func (s LearningState) Override(threadID string) ThreadOverride {
	return s.ThreadOverrides[threadID]
}

func (s LearningState) IsSuppressed(threadID string) bool {
	_, ok := s.SuppressedThreads[threadID]
	return ok
}

// EffectiveThread merges the stored override for thread onto it.
func (s LearningState) EffectiveThread(thread Thread) Thread {
	return ApplyOverride(thread, s.Override(thread.ID))
}

// NudgesInWindow counts history entries dated within the trailing 7 days
// ending at today, both ends inclusive.
func (s LearningState) NudgesInWindow(today time.Time) int {
	from := today.AddDate(0, 0, -GlobalCooldownDays)
	n := 0
	for _, entry := range s.NudgeHistory {
		if !entry.Date.Before(from) && !entry.Date.After(today) {
			n++
		}
	}
	return n
}

// PruneHistory drops history entries that can no longer affect the global
// cooldown at today or later. Entries dated after today are kept.
func PruneHistory(s LearningState, today time.Time) LearningState {
	out := s.Clone()
	from := today.AddDate(0, 0, -GlobalCooldownDays)
	kept := out.NudgeHistory[:0]
	for _, entry := range out.NudgeHistory {
		if entry.Date.Before(from) {
			continue
		}
		kept = append(kept, entry)
	}
	out.NudgeHistory = kept
	return out
}

type persistedState struct {
	UserThreshold     *float64                  `json:"userThreshold"`
	WindowShifts      map[InteractionType]int   `json:"windowShifts"`
	ThreadOverrides   map[string]ThreadOverride `json:"threadOverrides"`
	NudgeHistory      []HistoryEntry            `json:"nudgeHistory"`
	SuppressedThreads []string                  `json:"suppressedThreads"`
	NudgeRecords      []NudgeRecord             `json:"nudgeRecords"`
}

// MarshalJSON writes the persisted shape: SuppressedThreads becomes a sorted
// list.
func (s LearningState) MarshalJSON() ([]byte, error) {
	c := s.Clone()
	threshold := c.UserThreshold
	suppressed := make([]string, 0, len(c.SuppressedThreads))
	for id := range c.SuppressedThreads {
		suppressed = append(suppressed, id)
	}
	sort.Strings(suppressed)
	return json.Marshal(persistedState{
		UserThreshold:     &threshold,
		WindowShifts:      c.WindowShifts,
		ThreadOverrides:   c.ThreadOverrides,
		NudgeHistory:      c.NudgeHistory,
		SuppressedThreads: suppressed,
		NudgeRecords:      c.NudgeRecords,
	})
}

func (s *LearningState) UnmarshalJSON(data []byte) error {
	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	out := DefaultLearningState()
	if p.UserThreshold != nil {
		t := *p.UserThreshold
		if math.IsNaN(t) || t < 0 || t > 1 {
			return fmt.Errorf("userThreshold out of range: %v", t)
		}
		out.UserThreshold = t
	}
	for k, v := range p.WindowShifts {
		out.WindowShifts[k] = v
	}
	for k, v := range p.ThreadOverrides {
		out.ThreadOverrides[k] = v
	}
	if p.NudgeHistory != nil {
		out.NudgeHistory = p.NudgeHistory
	}
	for _, id := range p.SuppressedThreads {
		out.SuppressedThreads[id] = struct{}{}
	}
	if p.NudgeRecords != nil {
		out.NudgeRecords = p.NudgeRecords
	}
	if len(out.NudgeRecords) > MaxNudgeRecords {
		out.NudgeRecords = out.NudgeRecords[:MaxNudgeRecords]
	}
	*s = out
	return nil
}

// DecodeLearningState parses a persisted blob. An empty blob yields the
// defaults with no error; a corrupt one yields the defaults and the decode
// error so the caller can report it.
func DecodeLearningState(data []byte) (LearningState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return DefaultLearningState(), nil
	}
	var s LearningState
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultLearningState(), fmt.Errorf("decode learning state: %w", err)
	}
	return s, nil
}
