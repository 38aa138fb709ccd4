package main

import (
	"context"
	"fmt"
	"time"

	"github.com/arkankau/coffee-chatted/audit"
	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type feedbackResult struct {
	ThreadID        string             `json:"threadId"`
	Kind            nudge.FeedbackKind `json:"kind"`
	Day             string             `json:"day"`
	Confidence      float64            `json:"confidence"`
	ThresholdBefore float64            `json:"thresholdBefore"`
	ThresholdAfter  float64            `json:"thresholdAfter"`
	WindowShift     int                `json:"windowShift"`
	EventID         string             `json:"eventId,omitempty"`
}

func newFeedbackCmd() *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "feedback THREAD_ID KIND",
		Short: "Record a reaction to a thread's decision",
		Long: `Record a reaction to a thread's decision. KIND is one of:
  followUp       you followed up
  notNow         not now; raises your threshold and cools the thread down
  tooEarly       too early; widens the window for this interaction type
  dismiss        dismiss this nudge
  suppress       never nudge about this thread again
  stillRelevant  the contact is relevant despite a low fit score`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := nudge.ParseFeedbackKind(args[1])
			if err != nil {
				return err
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sink, err := auditSinkFromViper()
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer sink.Close()

			res, err := a.applyFeedback(cmd.Context(), args[0], kind, sink)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s on %s\n", clifmt.Success("recorded"), res.Kind, res.ThreadID, res.Day)
			if res.ThresholdAfter != res.ThresholdBefore {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "threshold: %.2f -> %.2f\n", res.ThresholdBefore, res.ThresholdAfter)
			}
			if kind == nudge.FeedbackTooEarly {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "window shift: +%d days\n", res.WindowShift)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}

// applyFeedback records kind against the thread's decision for the current
// day. The decision is recomputed under the store lock so the recorded
// confidence matches the state the feedback is applied to.
func (a *app) applyFeedback(ctx context.Context, threadID string, kind nudge.FeedbackKind, sink audit.Sink) (feedbackResult, error) {
	storeCtx, cancel := a.storeContext(ctx)
	defer cancel()

	all, err := a.threads(storeCtx)
	if err != nil {
		return feedbackResult{}, err
	}
	st, err := findThread(all, threadID)
	if err != nil {
		return feedbackResult{}, err
	}
	thread := st.Thread
	focus, err := a.repo.LoadFocus(storeCtx)
	if err != nil {
		return feedbackResult{}, err
	}

	var assessment *nudge.FitAssessment
	if e := a.Enricher(ctx); e.Enabled() {
		fitCtx, cancelFit := withOptionalTimeout(ctx, viper.GetDuration("enrich.wait"))
		assessment = e.FitNow(fitCtx, thread, focus)
		cancelFit()
	}

	res := feedbackResult{ThreadID: thread.ID, Kind: kind, Day: a.today.Format(time.DateOnly)}
	var suppressed bool
	_, err = a.repo.UpdateLearning(storeCtx, func(state nudge.LearningState) (nudge.LearningState, error) {
		d := nudge.Decide(thread, focus, a.today, state, assessment)
		confidence := d.ConfidenceScore
		next := nudge.ApplyFeedback(state, nudge.FeedbackEvent{
			ThreadID:   thread.ID,
			Kind:       kind,
			Category:   thread.InteractionType,
			Today:      a.today,
			ThreadName: thread.Name,
			Confidence: &confidence,
		})
		res.Confidence = confidence
		res.ThresholdBefore = state.UserThreshold
		res.ThresholdAfter = next.UserThreshold
		res.WindowShift = next.WindowShift(thread.InteractionType)
		suppressed = next.IsSuppressed(thread.ID)
		return next, nil
	})
	if err != nil {
		return feedbackResult{}, fmt.Errorf("apply feedback: %w", err)
	}
	a.logger.Info("feedback_applied", "thread_id", thread.ID, "kind", kind, "threshold", res.ThresholdAfter)

	conf := res.Confidence
	ev := audit.Event{
		EventID:         audit.NewEventID(),
		Timestamp:       time.Now(),
		Day:             res.Day,
		ThreadID:        thread.ID,
		ThreadName:      thread.Name,
		Kind:            string(kind),
		Category:        string(thread.InteractionType),
		Confidence:      &conf,
		ThresholdBefore: res.ThresholdBefore,
		ThresholdAfter:  res.ThresholdAfter,
		Suppressed:      suppressed,
	}
	if err := sink.Emit(ctx, ev); err != nil {
		a.logger.Warn("feedback_audit_failed", "thread_id", thread.ID, "error", err.Error())
	} else {
		res.EventID = ev.EventID
	}
	return res, nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
