package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arkankau/coffee-chatted/nudge"
)

var (
	// ErrUnavailable means no enrichment backend is configured.
	ErrUnavailable = errors.New("enrich: unavailable")
	// ErrInvalidResponse means the backend replied with something that did
	// not pass validation. The whole reply is discarded.
	ErrInvalidResponse = errors.New("enrich: invalid response")
)

type FitRequest struct {
	TargetIndustry string `json:"target_industry"`
	TargetRole     string `json:"target_role"`
	Company        string `json:"company"`
	RoleTitle      string `json:"role_title"`
	IndustryText   string `json:"industry_text"`
	SeniorityText  string `json:"seniority_text"`
}

// FitRequestFor builds the normalizer input. The role title doubles as the
// seniority hint.
func FitRequestFor(thread nudge.Thread, focus nudge.UserFocus) FitRequest {
	return FitRequest{
		TargetIndustry: strings.TrimSpace(focus.TargetIndustry),
		TargetRole:     strings.TrimSpace(focus.TargetRole),
		Company:        strings.TrimSpace(thread.Company),
		RoleTitle:      strings.TrimSpace(thread.RoleTitle),
		IndustryText:   strings.TrimSpace(thread.Industry),
		SeniorityText:  strings.TrimSpace(thread.RoleTitle),
	}
}

type PolishRequest struct {
	ContactName      string                 `json:"contact_name"`
	InteractionType  nudge.InteractionType  `json:"interaction_type"`
	DaysSince        int                    `json:"days_since"`
	Window           nudge.Window           `json:"window"`
	SharedConnection nudge.SharedConnection `json:"shared_connection"`
	Reasons          []string               `json:"reasons"`
	RawMessage       string                 `json:"raw_message"`
}

// PolishRequestFor builds the polisher input for a decision. It reports false
// for decisions that are neither a nudge nor DO_NOTHING_YET.
func PolishRequestFor(thread nudge.Thread, d nudge.Decision, shift int) (PolishRequest, bool) {
	if !Polishable(d) {
		return PolishRequest{}, false
	}
	reasons := append([]string(nil), d.Reasons...)
	return PolishRequest{
		ContactName:      thread.Name,
		InteractionType:  thread.InteractionType,
		DaysSince:        d.DaysSince,
		Window:           nudge.ShiftedWindow(thread.InteractionType, shift),
		SharedConnection: thread.SharedConnection,
		Reasons:          reasons,
		RawMessage:       RawMessage(thread, d),
	}, true
}

func Polishable(d nudge.Decision) bool {
	return d.ShouldNudge || d.Kind == nudge.KindDoNothingYet
}

// RawMessage is the unpolished text for a decision.
func RawMessage(thread nudge.Thread, d nudge.Decision) string {
	if d.ShouldNudge {
		return fmt.Sprintf("If you want, now is within your usual follow-up window for %s.", thread.Name)
	}
	return strings.Join(d.Reasons, " ")
}

// Polish is a validated tone-polisher reply. Both fields are trimmed and
// non-empty.
type Polish struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type FitNormalizer interface {
	NormalizeFit(ctx context.Context, req FitRequest) (nudge.FitAssessment, error)
}

type TonePolisher interface {
	PolishNudge(ctx context.Context, req PolishRequest) (Polish, error)
}

// Absent stands in when no backend is configured.
type Absent struct{}

func (Absent) NormalizeFit(context.Context, FitRequest) (nudge.FitAssessment, error) {
	return nudge.FitAssessment{}, ErrUnavailable
}

func (Absent) PolishNudge(context.Context, PolishRequest) (Polish, error) {
	return Polish{}, ErrUnavailable
}

// FitCacheKey identifies a fit assessment: it changes when the focus does.
func FitCacheKey(threadID string, focus nudge.UserFocus) string {
	return strings.Join([]string{"fit", threadID, focus.TargetIndustry, focus.TargetRole}, "|")
}

// ToneCacheKey identifies a polished message for one decision shape.
func ToneCacheKey(threadID string, daysSince int, shouldNudge bool) string {
	return fmt.Sprintf("tone|%s|%d|%t", threadID, daysSince, shouldNudge)
}
