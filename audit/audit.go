// Package audit records applied feedback events as JSON lines.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one applied feedback. Thresholds capture the learning state on
// either side of the transition.
type Event struct {
	EventID         string    `json:"event_id"`
	Timestamp       time.Time `json:"ts"`
	Day             string    `json:"day"`
	ThreadID        string    `json:"thread_id"`
	ThreadName      string    `json:"thread_name,omitempty"`
	Kind            string    `json:"kind"`
	Category        string    `json:"category,omitempty"`
	Confidence      *float64  `json:"confidence,omitempty"`
	ThresholdBefore float64   `json:"threshold_before"`
	ThresholdAfter  float64   `json:"threshold_after"`
	Suppressed      bool      `json:"suppressed"`
}

type Sink interface {
	Emit(ctx context.Context, e Event) error
	Close() error
}

// NewEventID returns a random event id.
func NewEventID() string {
	return "fb_" + uuid.NewString()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }
func (Nop) Close() error                      { return nil }
