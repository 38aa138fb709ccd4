package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arkankau/coffee-chatted/internal/jsonutil"
	"github.com/arkankau/coffee-chatted/nudge"
)

// ParseFitAssessment decodes and validates a fit normalizer reply. Every
// field is required; any malformed field rejects the whole reply.
func ParseFitAssessment(raw string) (nudge.FitAssessment, error) {
	var fields map[string]json.RawMessage
	if err := jsonutil.DecodeWithFallback(raw, &fields); err != nil {
		return nudge.FitAssessment{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	industry, err := parseMatch(fields, "industry_match")
	if err != nil {
		return nudge.FitAssessment{}, err
	}
	role, err := parseMatch(fields, "role_match")
	if err != nil {
		return nudge.FitAssessment{}, err
	}

	var bucket string
	if err := requireString(fields, "seniority_bucket", &bucket); err != nil {
		return nudge.FitAssessment{}, err
	}
	seniority := nudge.SeniorityBucket(bucket)
	if !seniority.Valid() {
		return nudge.FitAssessment{}, fmt.Errorf("%w: seniority_bucket %q", ErrInvalidResponse, bucket)
	}

	notesRaw, ok := fields["notes"]
	if !ok {
		return nudge.FitAssessment{}, fmt.Errorf("%w: missing notes", ErrInvalidResponse)
	}
	var notesFields map[string]json.RawMessage
	if err := json.Unmarshal(notesRaw, &notesFields); err != nil || notesFields == nil {
		return nudge.FitAssessment{}, fmt.Errorf("%w: notes must be an object", ErrInvalidResponse)
	}
	var notes nudge.FitNotes
	if err := requireString(notesFields, "normalized_industry", &notes.NormalizedIndustry); err != nil {
		return nudge.FitAssessment{}, err
	}
	if err := requireString(notesFields, "normalized_role", &notes.NormalizedRole); err != nil {
		return nudge.FitAssessment{}, err
	}

	confidence, err := parseConfidence(fields["confidence"])
	if err != nil {
		return nudge.FitAssessment{}, err
	}

	var explanation string
	if err := requireString(fields, "explanation", &explanation); err != nil {
		return nudge.FitAssessment{}, err
	}

	return nudge.FitAssessment{
		IndustryMatch:   industry,
		RoleMatch:       role,
		SeniorityBucket: seniority,
		Notes:           notes,
		Confidence:      confidence,
		Explanation:     explanation,
	}, nil
}

// ParsePolish decodes and validates a tone polisher reply.
func ParsePolish(raw string) (Polish, error) {
	var fields map[string]json.RawMessage
	if err := jsonutil.DecodeWithFallback(raw, &fields); err != nil {
		return Polish{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	var out Polish
	if err := requireString(fields, "title", &out.Title); err != nil {
		return Polish{}, err
	}
	if err := requireString(fields, "body", &out.Body); err != nil {
		return Polish{}, err
	}
	out.Title = strings.TrimSpace(out.Title)
	out.Body = strings.TrimSpace(out.Body)
	if out.Title == "" || out.Body == "" {
		return Polish{}, fmt.Errorf("%w: empty title or body", ErrInvalidResponse)
	}
	return out, nil
}

func parseMatch(fields map[string]json.RawMessage, key string) (nudge.Match, error) {
	raw, ok := fields[key]
	if !ok {
		return nudge.MatchUnknown, fmt.Errorf("%w: missing %s", ErrInvalidResponse, key)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		switch n {
		case 0:
			return nudge.MatchNo, nil
		case 1:
			return nudge.MatchYes, nil
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s == "unknown" {
		return nudge.MatchUnknown, nil
	}
	return nudge.MatchUnknown, fmt.Errorf("%w: %s must be 0, 1 or \"unknown\", got %s", ErrInvalidResponse, key, raw)
}

// parseConfidence accepts a number or a numeric string in [0,1].
func parseConfidence(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, fmt.Errorf("%w: missing confidence", ErrInvalidResponse)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: confidence %s", ErrInvalidResponse, raw)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: confidence %q", ErrInvalidResponse, s)
		}
		v = parsed
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: confidence %v out of range", ErrInvalidResponse, v)
	}
	return v, nil
}

func requireString(fields map[string]json.RawMessage, key string, out *string) error {
	raw, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrInvalidResponse, key)
	}
	if err := json.Unmarshal(raw, out); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%w: %s must be a string", ErrInvalidResponse, key)
	}
	return nil
}
