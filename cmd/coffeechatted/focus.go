package main

import (
	"fmt"
	"strings"

	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/spf13/cobra"
)

func newFocusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show or change the recruiting focus",
	}
	cmd.AddCommand(newFocusShowCmd())
	cmd.AddCommand(newFocusSetCmd())
	return cmd
}

func newFocusShowCmd() *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current focus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			focus, err := a.repo.LoadFocus(storeCtx)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), focus)
			}
			printFocus(cmd, focus)
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}

func newFocusSetCmd() *cobra.Command {
	var industry, role, stage string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the focus; omitted fields keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(industry+role+stage) == "" {
				return fmt.Errorf("nothing to set: pass --industry, --role or --stage")
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			focus, err := a.repo.LoadFocus(storeCtx)
			if err != nil {
				return err
			}
			if v := strings.TrimSpace(industry); v != "" {
				focus.TargetIndustry = v
			}
			if v := strings.TrimSpace(role); v != "" {
				focus.TargetRole = v
			}
			if v := strings.TrimSpace(stage); v != "" {
				focus.RecruitingStage = v
			}
			if err := a.repo.SaveFocus(storeCtx, focus); err != nil {
				return err
			}
			a.logger.Info("focus_updated",
				"target_industry", focus.TargetIndustry,
				"target_role", focus.TargetRole,
				"recruiting_stage", focus.RecruitingStage,
			)
			printFocus(cmd, focus)
			return nil
		},
	}
	cmd.Flags().StringVar(&industry, "industry", "", "Target industry.")
	cmd.Flags().StringVar(&role, "role", "", "Target role.")
	cmd.Flags().StringVar(&stage, "stage", "", "Recruiting stage.")
	return cmd
}

func printFocus(cmd *cobra.Command, focus nudge.UserFocus) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s %s\n", clifmt.Key("industry:"), focus.TargetIndustry)
	_, _ = fmt.Fprintf(w, "%s %s\n", clifmt.Key("role:"), focus.TargetRole)
	_, _ = fmt.Fprintf(w, "%s %s\n", clifmt.Key("stage:"), focus.RecruitingStage)
}
