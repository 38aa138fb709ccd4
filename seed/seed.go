// Package seed ships the demo contacts and parses thread files.
package seed

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed threads.yaml
var threadsYAML []byte

const (
	DefaultLatencyDays = 4
	unknownValue       = "Unknown"
)

// Threads returns the embedded demo threads.
func Threads() ([]nudge.Thread, error) {
	return ParseThreads(threadsYAML)
}

type threadFile struct {
	Threads []threadDoc `yaml:"threads"`
}

type threadDoc struct {
	ID                         string                 `yaml:"id"`
	Name                       string                 `yaml:"name"`
	Company                    string                 `yaml:"company"`
	RoleTitle                  string                 `yaml:"roleTitle"`
	Industry                   string                 `yaml:"industry"`
	InteractionType            nudge.InteractionType  `yaml:"interactionType"`
	LastInteractionDate        string                 `yaml:"lastInteractionDate"`
	FollowupAlreadySent        bool                   `yaml:"followupAlreadySent"`
	PriorEngagement            bool                   `yaml:"priorEngagement"`
	TypicalResponseLatencyDays int                    `yaml:"typicalResponseLatencyDays"`
	SharedConnection           nudge.SharedConnection `yaml:"sharedConnection"`
	NudgedAlready              bool                   `yaml:"nudgedAlready"`
	IgnoredNudgesCount         int                    `yaml:"ignoredNudgesCount"`
}

// ParseThreads decodes a YAML thread file. It accepts either a top-level
// list or a mapping with a threads key. Entries without an id get a fresh
// one.
func ParseThreads(data []byte) ([]nudge.Thread, error) {
	var docs []threadDoc
	var file threadFile
	if err := yaml.Unmarshal(data, &file); err == nil && file.Threads != nil {
		docs = file.Threads
	} else if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode threads yaml: %w", err)
	}

	out := make([]nudge.Thread, 0, len(docs))
	seen := map[string]bool{}
	for i, d := range docs {
		t, err := d.thread()
		if err != nil {
			return nil, fmt.Errorf("thread %d (%s): %w", i+1, d.Name, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("thread %d: duplicate id %q", i+1, t.ID)
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

func (d threadDoc) thread() (nudge.Thread, error) {
	if !d.InteractionType.Valid() {
		return nudge.Thread{}, fmt.Errorf("unknown interaction type %q", d.InteractionType)
	}
	last, err := ParseDate(d.LastInteractionDate)
	if err != nil {
		return nudge.Thread{}, err
	}
	if d.TypicalResponseLatencyDays < 0 || d.IgnoredNudgesCount < 0 {
		return nudge.Thread{}, fmt.Errorf("negative count")
	}
	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = NewThreadID()
	}
	conn := d.SharedConnection
	if strings.TrimSpace(string(conn)) == "" {
		conn = nudge.ConnectionNone
	}
	return nudge.Thread{
		ID:                         id,
		Name:                       orUnknown(d.Name),
		Company:                    orUnknown(d.Company),
		RoleTitle:                  orUnknown(d.RoleTitle),
		Industry:                   strings.TrimSpace(d.Industry),
		InteractionType:            d.InteractionType,
		LastInteraction:            last,
		FollowupAlreadySent:        d.FollowupAlreadySent,
		PriorEngagement:            d.PriorEngagement,
		TypicalResponseLatencyDays: d.TypicalResponseLatencyDays,
		SharedConnection:           conn,
		NudgedAlready:              d.NudgedAlready,
		IgnoredNudgesCount:         d.IgnoredNudgesCount,
	}, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the civil day at UTC
// midnight.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func NewThreadID() string {
	return "u-" + uuid.NewString()
}

// ThreadInput is what a user supplies when adding a contact by hand.
type ThreadInput struct {
	Name             string
	CompanyRole      string
	Industry         string
	InteractionType  nudge.InteractionType
	LastInteraction  time.Time
	FollowupSent     bool
	SharedConnection nudge.SharedConnection
}

// NewThread builds a user thread. CompanyRole is split on the first comma
// into company and role title; missing parts become "Unknown". New threads
// assume prior engagement and a typical latency of DefaultLatencyDays.
func NewThread(in ThreadInput) (nudge.Thread, error) {
	if !in.InteractionType.Valid() {
		return nudge.Thread{}, fmt.Errorf("unknown interaction type %q", in.InteractionType)
	}
	if in.LastInteraction.IsZero() {
		return nudge.Thread{}, fmt.Errorf("missing last interaction date")
	}
	company, role, _ := strings.Cut(in.CompanyRole, ",")
	conn := in.SharedConnection
	if strings.TrimSpace(string(conn)) == "" {
		conn = nudge.ConnectionNone
	}
	return nudge.Thread{
		ID:                         NewThreadID(),
		Name:                       orUnknown(in.Name),
		Company:                    orUnknown(company),
		RoleTitle:                  orUnknown(role),
		Industry:                   strings.TrimSpace(in.Industry),
		InteractionType:            in.InteractionType,
		LastInteraction:            in.LastInteraction,
		FollowupAlreadySent:        in.FollowupSent,
		PriorEngagement:            true,
		TypicalResponseLatencyDays: DefaultLatencyDays,
		SharedConnection:           conn,
	}, nil
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownValue
	}
	return s
}
