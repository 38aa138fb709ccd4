package main

import (
	"fmt"
	"strconv"

	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/spf13/cobra"
)

type normView struct {
	Category  nudge.InteractionType `json:"category"`
	Base      nudge.Window          `json:"base"`
	Shift     int                   `json:"shift"`
	Effective nudge.Window          `json:"effective"`
}

func newNormsCmd() *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "norms",
		Short: "Show follow-up windows per interaction type",
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
			views := make([]normView, 0, 4)
			for _, c := range nudge.InteractionTypes() {
				shift := state.WindowShift(c)
				views = append(views, normView{
					Category:  c,
					Base:      nudge.WindowFor(c),
					Shift:     shift,
					Effective: nudge.ShiftedWindow(c, shift),
				})
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}

			table := clifmt.Table{Headers: []string{"CATEGORY", "BASE", "SHIFT", "WINDOW"}}
			for _, v := range views {
				table.Rows = append(table.Rows, []string{
					string(v.Category),
					formatWindow(v.Base),
					"+" + strconv.Itoa(v.Shift),
					formatWindow(v.Effective),
				})
			}
			table.Style = func(row int, line string) string {
				if views[row].Shift > 0 {
					return clifmt.Warn(line)
				}
				return line
			}
			table.Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}

func formatWindow(w nudge.Window) string {
	return fmt.Sprintf("%d-%d days", w.Min, w.Max)
}
