package main

import (
	"fmt"
	"os"

	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/arkankau/coffee-chatted/statestore"
	"github.com/spf13/cobra"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the learning state",
	}
	cmd.AddCommand(newStateShowCmd())
	cmd.AddCommand(newStateResetCmd())
	cmd.AddCommand(newStatePruneCmd())
	cmd.AddCommand(newStateImportCmd())
	return cmd
}

func newStateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the persisted learning state as JSON",
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
			return writeJSON(cmd.OutOrStdout(), state)
		},
	}
}

func newStateResetCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget everything learned from feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			if err := a.repo.ResetLearning(storeCtx); err != nil {
				return err
			}
			if all {
				for _, key := range []string{statestore.KeyUserFocus, statestore.KeyUserThreads} {
					if err := a.repo.KV().Delete(storeCtx, key); err != nil {
						return err
					}
				}
			}
			a.logger.Info("state_reset", "all", all)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), clifmt.Success("learning state reset"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also clear the saved focus and user threads.")
	return cmd
}

func newStatePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop nudge history older than the global cooldown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			var before int
			state, err := a.repo.UpdateLearning(storeCtx, func(s nudge.LearningState) (nudge.LearningState, error) {
				before = len(s.NudgeHistory)
				return nudge.PruneHistory(s, a.today), nil
			})
			if err != nil {
				return err
			}
			dropped := before - len(state.NudgeHistory)
			a.logger.Info("history_pruned", "dropped", dropped, "kept", len(state.NudgeHistory))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d history entries (%d kept)\n", clifmt.Success("pruned"), dropped, len(state.NudgeHistory))
			return nil
		},
	}
}

func newStateImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the learning state with one exported by state show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			state, err := nudge.DecodeLearningState(data)
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			if err := a.repo.SaveLearning(storeCtx, state); err != nil {
				return err
			}
			a.logger.Info("state_imported", "file", args[0], "history", len(state.NudgeHistory), "overrides", len(state.ThreadOverrides))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s learning state from %s\n", clifmt.Success("imported"), args[0])
			return nil
		},
	}
}
