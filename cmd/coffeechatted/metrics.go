package main

import (
	"fmt"
	"time"

	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/spf13/cobra"
)

type metricsOutput struct {
	Day string `json:"day"`
	nudge.RestraintMetrics
}

func newMetricsCmd() *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Summarize how often the engine stayed quiet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			state, err := a.repo.LoadLearning(storeCtx)
			if err != nil {
				return err
			}
			focus, err := a.repo.LoadFocus(storeCtx)
			if err != nil {
				return err
			}
			all, err := a.threads(storeCtx)
			if err != nil {
				return err
			}
			e := a.Enricher(cmd.Context())
			threads := plainThreads(all)
			e.RequestFits(threads, focus)
			a.waitForEnrichment(cmd.Context())

			evals := nudge.EvaluateAll(threads, focus, a.today, state, e.FitLookup())
			out := metricsOutput{
				Day:              a.today.Format(time.DateOnly),
				RestraintMetrics: nudge.ComputeRestraintMetrics(evals, state, a.today),
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, clifmt.Headerf("==> restraint metrics for %s", out.Day))
			_, _ = fmt.Fprintf(w, "%s %d\n", clifmt.Key("threads tracked:"), out.ThreadsTracked)
			_, _ = fmt.Fprintf(w, "%s %d\n", clifmt.Key("nudges (last 7 days):"), out.NudgesLast7Days)
			_, _ = fmt.Fprintf(w, "%s %d%%\n", clifmt.Key("silence rate:"), out.SilenceRatePercent)
			top := out.TopSilenceReason
			if top == "" {
				top = clifmt.Dim("none")
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", clifmt.Key("top silence reason:"), top)
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}
