package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arkankau/coffee-chatted/internal/clifmt"
	"github.com/arkankau/coffee-chatted/nudge"
	"github.com/arkankau/coffee-chatted/seed"
	"github.com/spf13/cobra"
)

func newThreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "thread",
		Aliases: []string{"threads"},
		Short:   "Manage tracked threads",
	}
	cmd.AddCommand(newThreadListCmd())
	cmd.AddCommand(newThreadAddCmd())
	cmd.AddCommand(newThreadImportCmd())
	cmd.AddCommand(newThreadRemoveCmd())
	return cmd
}

type threadView struct {
	nudge.Thread
	Source string `json:"source"`
}

func newThreadListCmd() *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List seed and user threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			all, err := a.threads(storeCtx)
			if err != nil {
				return err
			}
			if outputJSON {
				views := make([]threadView, len(all))
				for i, t := range all {
					views[i] = threadView{Thread: t.Thread, Source: string(t.Source)}
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			rows := make([]clifmt.DetailRow, 0, len(all))
			for _, t := range all {
				rows = append(rows, clifmt.DetailRow{Name: t.Thread.ID, Detail: describeThread(t)})
			}
			clifmt.Details{
				Title:        "Threads",
				Rows:         rows,
				Empty:        "No threads. Add one with `coffeechatted thread add`.",
				NameHeader:   "ID",
				DetailHeader: "CONTACT",
			}.Print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}

func describeThread(t sourcedThread) string {
	th := t.Thread
	parts := []string{
		fmt.Sprintf("%s, %s at %s (%s).", th.Name, th.RoleTitle, th.Company, th.Industry),
		fmt.Sprintf("%s on %s.", th.InteractionType, th.LastInteraction.Format(time.DateOnly)),
	}
	if th.SharedConnection != "" && th.SharedConnection != nudge.ConnectionNone {
		parts = append(parts, string(th.SharedConnection)+".")
	}
	if th.FollowupAlreadySent {
		parts = append(parts, "Followed up.")
	}
	if t.Source == sourceUser {
		parts = append(parts, "[user]")
	}
	return strings.Join(parts, " ")
}

func newThreadAddCmd() *cobra.Command {
	var (
		name         string
		companyRole  string
		industry     string
		interaction  string
		last         string
		followupSent bool
		connection   string
		outputJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			lastDay := a.today
			if strings.TrimSpace(last) != "" {
				if lastDay, err = seed.ParseDate(last); err != nil {
					return fmt.Errorf("--last: %w", err)
				}
			}
			thread, err := seed.NewThread(seed.ThreadInput{
				Name:             name,
				CompanyRole:      companyRole,
				Industry:         industry,
				InteractionType:  nudge.InteractionType(strings.TrimSpace(interaction)),
				LastInteraction:  lastDay,
				FollowupSent:     followupSent,
				SharedConnection: nudge.SharedConnection(strings.TrimSpace(connection)),
			})
			if err != nil {
				return err
			}
			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			if _, err := a.repo.PutUserThreads(storeCtx, thread); err != nil {
				return err
			}
			a.logger.Info("thread_added", "thread_id", thread.ID)
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), thread)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", clifmt.Success("added"), thread.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Contact name.")
	cmd.Flags().StringVar(&companyRole, "company-role", "", `Company and role as "Company, Role".`)
	cmd.Flags().StringVar(&industry, "industry", "Investment Banking", "Contact industry.")
	cmd.Flags().StringVar(&interaction, "type", string(nudge.InteractionCoffeeChat), "Interaction type: Coffee Chat|Referral Intro|Recruiter Email|Post-Interview.")
	cmd.Flags().StringVar(&last, "last", "", "Date of last interaction, YYYY-MM-DD (defaults to the simulated day).")
	cmd.Flags().BoolVar(&followupSent, "followup-sent", false, "A follow-up was already sent.")
	cmd.Flags().StringVar(&connection, "connection", string(nudge.ConnectionNone), "Shared connection.")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Print as JSON")
	return cmd
}

func newThreadImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import threads from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			threads, err := seed.ParseThreads(data)
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
			stored, err := a.repo.PutUserThreads(storeCtx, threads...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d threads (%d user threads stored)\n", clifmt.Success("imported"), len(threads), len(stored))
			return nil
		},
	}
}

func newThreadRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a user thread",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			storeCtx, cancel := a.storeContext(cmd.Context())
			defer cancel()
			removed, err := a.repo.RemoveUserThread(storeCtx, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no user thread %q", args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", clifmt.Success("removed"), args[0])
			return nil
		},
	}
}
