package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestJSONLSinkAppendsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "feedback.jsonl")
	sink, err := NewJSONLSink(path, 0, "")
	if err != nil {
		t.Fatalf("NewJSONLSink() error = %v", err)
	}

	conf := 0.81
	ts := time.Date(2024, 1, 21, 9, 0, 0, 0, time.FixedZone("x", 3600))
	events := []Event{
		{Timestamp: ts, Day: "2024-01-21", ThreadID: "t-1", Kind: "notNow", Confidence: &conf, ThresholdBefore: 0.75, ThresholdAfter: 0.8},
		{EventID: "fixed", Day: "2024-01-21", ThreadID: "t-2", Kind: "suppress", Suppressed: true, ThresholdBefore: 0.8, ThresholdAfter: 0.8},
	}
	for _, e := range events {
		if err := sink.Emit(context.Background(), e); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sink.Emit(context.Background(), events[0]); err == nil {
		t.Fatalf("Emit() after Close expected error")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	var got []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("lines = %d, want 2", len(got))
	}
	if !strings.HasPrefix(got[0].EventID, "fb_") {
		t.Fatalf("generated event id = %q", got[0].EventID)
	}
	if got[0].Timestamp.Location() != time.UTC || !got[0].Timestamp.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v in UTC", got[0].Timestamp, ts)
	}
	if got[0].Confidence == nil || *got[0].Confidence != conf {
		t.Fatalf("confidence = %v", got[0].Confidence)
	}
	if got[1].EventID != "fixed" || !got[1].Suppressed {
		t.Fatalf("second event = %+v", got[1])
	}
}

func TestNewJSONLSinkRequiresPath(t *testing.T) {
	if _, err := NewJSONLSink("  ", 0, ""); err == nil {
		t.Fatalf("NewJSONLSink() expected error for empty path")
	}
}
