package enrich

import (
	"strings"

	"github.com/arkankau/coffee-chatted/nudge"
)

const (
	titleFollowUp = "Optional follow-up"
	titleNoAction = "No action taken"
	bodyNoAction  = "The timing isn't right yet based on recruiting norms and your previous feedback."
	bodyNotYet    = "The timing isn't right yet."
)

type Message struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Polished bool   `json:"polished"`
}

// LiteralMessage is the text shown when no polished version exists.
func LiteralMessage(thread nudge.Thread, d nudge.Decision) Message {
	switch {
	case d.ShouldNudge:
		return Message{Title: titleFollowUp, Body: RawMessage(thread, d)}
	case d.Kind == nudge.KindDoNothingYet:
		body := bodyNotYet
		if len(d.Reasons) > 0 && strings.TrimSpace(d.Reasons[0]) != "" {
			body = d.Reasons[0]
		}
		return Message{Title: titleNoAction, Body: body}
	default:
		return Message{Title: titleNoAction, Body: bodyNoAction}
	}
}
