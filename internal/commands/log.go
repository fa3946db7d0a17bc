package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/activitylog"
)

func newLogCommand(a *app) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := activitylog.Tail(a.dir(), n)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No activity recorded."))
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "TIME", "COMMAND", "ACTION", "SUBJECT", "AMOUNT", "DETAILS")
			for _, e := range entries {
				t.row(e.Timestamp.Local().Format(time.DateTime), e.Command, e.Action, e.Subject, e.Amount, e.Details)
			}
			return t.flush()
		},
	}

	cmd.Flags().IntVarP(&n, "limit", "n", 20, "entries to show, 0 for all")
	return cmd
}
