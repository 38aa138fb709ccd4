package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arkankau/coffee-chatted/enrich"
	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/spf13/cobra"
)

type decisionView struct {
	Thread   nudge.Thread    `json:"thread"`
	Source   string          `json:"source"`
	Decision nudge.Decision  `json:"decision"`
	Message  *enrich.Message `json:"message,omitempty"`
}

type decideOutput struct {
	Day         string          `json:"day"`
	Focus       nudge.UserFocus `json:"focus"`
	Threshold   float64         `json:"userThreshold"`
	ActiveNudge string          `json:"activeNudge,omitempty"`
	Decisions   []decisionView  `json:"decisions"`
}

func newDecideCmd() *cobra.Command {
	var threadID string
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Evaluate every thread for the simulated day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.decide(cmd.Context(), strings.TrimSpace(threadID))
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if threadID != "" {
				printDecisionDetail(cmd.OutOrStdout(), out)
				return nil
			}
			printDecisions(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&threadID, "thread", "", "Show the decision for one thread in detail.")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}

func (a *app) decide(ctx context.Context, threadID string) (decideOutput, error) {
	storeCtx, cancel := a.storeContext(ctx)
	defer cancel()
	state, err := a.repo.LoadLearning(storeCtx)
	if err != nil {
		return decideOutput{}, err
	}
	focus, err := a.repo.LoadFocus(storeCtx)
	if err != nil {
		return decideOutput{}, err
	}
	all, err := a.threads(storeCtx)
	if err != nil {
		return decideOutput{}, err
	}
	if threadID != "" {
		one, err := findThread(all, threadID)
		if err != nil {
			return decideOutput{}, err
		}
		all = []sourcedThread{one}
	}

	e := a.Enricher(ctx)
	threads := plainThreads(all)
	e.RequestFits(threads, focus)
	a.waitForEnrichment(ctx)

	evals := nudge.EvaluateAll(threads, focus, a.today, state, e.FitLookup())

	out := decideOutput{
		Day:       a.today.Format(time.DateOnly),
		Focus:     focus,
		Threshold: state.UserThreshold,
		Decisions: make([]decisionView, len(evals)),
	}
	for i, ev := range evals {
		out.Decisions[i] = decisionView{Thread: ev.Thread, Source: string(all[i].Source), Decision: ev.Decision}
		a.logger.Debug("decision_evaluated",
			"thread_id", ev.Thread.ID,
			"kind", ev.Decision.Kind,
			"fit_mode", ev.Decision.Fit.Mode,
			"confidence", ev.Decision.ConfidenceScore,
		)
	}

	// Only the active nudge, or the single requested thread, carries a message.
	var shown []int
	if active, ok := nudge.ActiveNudge(evals); ok {
		out.ActiveNudge = active.Thread.ID
		for i := range evals {
			if evals[i].Thread.ID == active.Thread.ID {
				shown = append(shown, i)
				break
			}
		}
	} else if threadID != "" {
		shown = append(shown, 0)
	}
	for _, i := range shown {
		e.RequestPolish(all[i].Thread, evals[i].Decision, state.WindowShift(all[i].Thread.InteractionType))
	}
	if len(shown) > 0 {
		a.waitForEnrichment(ctx)
	}
	for _, i := range shown {
		msg := e.Message(all[i].Thread, evals[i].Decision)
		out.Decisions[i].Message = &msg
	}
	return out, nil
}

func printDecisions(w io.Writer, out decideOutput) {
	_, _ = fmt.Fprintln(w, clifmt.Headerf("==> %s  focus %s / %s (%s)  threshold %.2f",
		out.Day, out.Focus.TargetIndustry, out.Focus.TargetRole, out.Focus.RecruitingStage, out.Threshold))

	rows := make([][]string, 0, len(out.Decisions))
	for _, d := range out.Decisions {
		rows = append(rows, []string{
			d.Thread.ID,
			d.Thread.Name,
			string(d.Thread.InteractionType),
			strconv.Itoa(d.Decision.DaysSince),
			string(d.Decision.TimingState),
			fmt.Sprintf("%.2f", d.Decision.FitScore),
			fmt.Sprintf("%.2f", d.Decision.ConfidenceScore),
			string(d.Decision.Kind),
		})
	}
	clifmt.Table{
		Headers: []string{"ID", "NAME", "TYPE", "DAYS", "TIMING", "FIT", "CONF", "DECISION"},
		Rows:    rows,
		Style: func(row int, line string) string {
			switch out.Decisions[row].Decision.Kind {
			case nudge.KindFollowUp:
				return clifmt.Success(line)
			case nudge.KindSilent:
				return clifmt.Dim(line)
			default:
				return line
			}
		},
	}.Print(w)

	_, _ = fmt.Fprintln(w)
	for _, d := range out.Decisions {
		if d.Thread.ID != out.ActiveNudge || d.Message == nil {
			continue
		}
		printMessageCard(w, d)
		return
	}
	_, _ = fmt.Fprintln(w, clifmt.Dim("No nudge today."))
}

func printMessageCard(w io.Writer, d decisionView) {
	title := d.Message.Title
	if d.Message.Polished {
		title += " " + clifmt.Dim("(polished)")
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", clifmt.Key(title), clifmt.Dim("· "+d.Thread.Name))
	_, _ = fmt.Fprintln(w, d.Message.Body)
	if len(d.Decision.Reasons) > 0 {
		_, _ = fmt.Fprintf(w, "%s %s\n", clifmt.Dim("Why:"), strings.Join(d.Decision.Reasons, " "))
	}
}

func printDecisionDetail(w io.Writer, out decideOutput) {
	if len(out.Decisions) == 0 {
		return
	}
	d := out.Decisions[0]
	fit := fmt.Sprintf("%.2f (%s, %s)", d.Decision.FitScore, d.Decision.Fit.Mode, nudge.FitBucketFor(d.Decision.FitScore))
	if exp := d.Decision.Fit.Explanation(); exp != "" {
		fit += " " + exp
	}
	rows := []clifmt.DetailRow{
		{Name: "decision", Detail: string(d.Decision.Kind)},
		{Name: "timing", Detail: fmt.Sprintf("%s, %d days since %s", d.Decision.TimingState, d.Decision.DaysSince, d.Thread.InteractionType)},
		{Name: "fit", Detail: fit},
		{Name: "confidence", Detail: fmt.Sprintf("%.2f (threshold %.2f)", d.Decision.ConfidenceScore, out.Threshold)},
		{Name: "reasons", Detail: strings.Join(d.Decision.Reasons, " ")},
		{Name: "inputs", Detail: strings.Join(d.Decision.InputsUsed, ", ")},
	}
	if d.Message != nil {
		rows = append(rows, clifmt.DetailRow{Name: "message", Detail: d.Message.Title + ": " + d.Message.Body})
	}
	_, _ = fmt.Fprintln(w, clifmt.Headerf("==> %s  %s, %s at %s  %s", d.Thread.ID, d.Thread.Name, d.Thread.RoleTitle, d.Thread.Company, out.Day))
	clifmt.Details{
		NameHeader:   "FIELD",
		DetailHeader: "VALUE",
		Rows:         rows,
	}.Print(w)
}
