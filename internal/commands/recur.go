package commands

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/builder"
	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/recurrence"
)

func newRecurCommand(a *app) *cobra.Command {
	recurCmd := &cobra.Command{
		Use:   "recur",
		Short: "Recurring transaction templates",
	}
	recurCmd.AddCommand(newRecurListCommand(a))
	recurCmd.AddCommand(newRecurNextCommand(a))
	recurCmd.AddCommand(newRecurPostCommand(a))
	recurCmd.AddCommand(newRecurStopCommand(a))
	return recurCmd
}

// templates returns the recurring templates in date order.
func templates(l *ledger.Ledger) []model.Transaction {
	var out []model.Transaction
	for _, txn := range l.Transactions() {
		if txn.Recurring && txn.Recurrence != nil {
			out = append(out, txn)
		}
	}
	return out
}

func describeRule(r model.RecurrenceRule) string {
	s := string(r.Frequency)
	if r.Interval > 1 {
		s = "every " + strconv.Itoa(r.Interval) + " " + map[model.Frequency]string{
			model.FrequencyDaily:   "days",
			model.FrequencyWeekly:  "weeks",
			model.FrequencyMonthly: "months",
			model.FrequencyYearly:  "years",
		}[r.Frequency]
	}
	if r.EndDate != nil {
		s += " until " + calendar.Format(*r.EndDate)
	}
	return s
}

func newRecurListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, _, err := a.open()
			if err != nil {
				return err
			}
			list := templates(book.Ledger)
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No recurring templates."))
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "ID", "DESCRIPTION", "AMOUNT", "RULE", "NEXT")
			for _, txn := range list {
				next := "ended"
				if n := txn.Recurrence.NextOccurrence; n != nil {
					next = calendar.Format(*n)
				}
				t.row(txn.ID, txn.Description, money(txn.Amount(), a.cfg.Project.Currency), describeRule(*txn.Recurrence), next)
			}
			return t.flush()
		},
	}
}

type upcoming struct {
	date time.Time
	txn  model.Transaction
}

func newRecurNextCommand(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show occurrences due in the coming days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				days = a.cfg.Recurrence.HorizonDays
			}
			book, _, err := a.open()
			if err != nil {
				return err
			}
			from := a.today()
			to := calendar.AddDays(from, days)

			var due []upcoming
			for _, txn := range templates(book.Ledger) {
				if txn.Recurrence.NextOccurrence == nil {
					continue
				}
				for _, d := range recurrence.Occurrences(*txn.Recurrence, *txn.Recurrence.NextOccurrence, to) {
					if d.Before(from) {
						continue
					}
					due = append(due, upcoming{date: d, txn: txn})
				}
			}
			sort.SliceStable(due, func(i, j int) bool { return due[i].date.Before(due[j].date) })

			out := cmd.OutOrStdout()
			title(out, "Due %s through %s", calendar.Format(from), calendar.Format(to))
			if len(due) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("Nothing due."))
				return nil
			}
			t := newTable(out, "DATE", "DESCRIPTION", "AMOUNT", "TEMPLATE")
			for _, u := range due {
				t.row(calendar.Format(u.date), u.txn.Description, money(u.txn.Amount(), a.cfg.Project.Currency), u.txn.ID)
			}
			return t.flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "days to look ahead (default: recurrence.horizon_days)")
	return cmd
}

func newRecurPostCommand(a *app) *cobra.Command {
	var through string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post every template occurrence that has come due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			until, err := a.dateFlag(through)
			if err != nil {
				return err
			}
			book, _, err := a.open()
			if err != nil {
				return err
			}

			var entries []activitylog.Entry
			for _, tpl := range templates(book.Ledger) {
				next := tpl.Recurrence.NextOccurrence
				if next == nil || next.After(until) {
					continue
				}
				due, err := builder.DueOccurrences(tpl, *next, until)
				if err != nil {
					return err
				}
				if len(due) == 0 {
					continue
				}
				for _, occ := range due {
					posted, err := book.Ledger.Post(occ)
					if err != nil {
						return fmt.Errorf("posting %s on %s: %w", tpl.ID, calendar.Format(occ.Date), err)
					}
					entries = append(entries, activitylog.Entry{
						Action:  "post_occurrence",
						Subject: posted.ID,
						Amount:  money(posted.Amount(), a.cfg.Project.Currency),
						Details: fmt.Sprintf("%s on %s from %s", posted.Description, calendar.Format(posted.Date), tpl.ID),
					})
				}
				rule := recurrence.Advance(*tpl.Recurrence, due[len(due)-1].Date)
				tpl.Recurrence = &rule
				if err := book.Ledger.UpdateTransaction(tpl); err != nil {
					return err
				}
				logger.Get().Debugw("template advanced", "id", tpl.ID, "posted", len(due))
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("Nothing due."))
				return nil
			}
			if err := a.commit(cmd, book, entries...); err != nil {
				return err
			}
			success(out, "Posted %d occurrences through %s", len(entries), calendar.Format(until))
			return nil
		},
	}

	cmd.Flags().StringVar(&through, "through", "", "post occurrences up to this date (default: today)")
	return cmd
}

func newRecurStopCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <template-id>",
		Short: "End a template so it produces no further occurrences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, _, err := a.open()
			if err != nil {
				return err
			}
			tpl, ok := book.Ledger.Transaction(args[0])
			if !ok || tpl.Recurrence == nil {
				return fmt.Errorf("%s: %w", args[0], builder.ErrNotRecurring)
			}
			end := a.today()
			if end.Before(tpl.Recurrence.StartDate) {
				end = tpl.Recurrence.StartDate
			}
			rule := tpl.Recurrence.Clone()
			rule.EndDate = &end
			// occurrences already due stay postable
			if rule.NextOccurrence != nil && rule.NextOccurrence.After(end) {
				rule.NextOccurrence = nil
			}
			tpl.Recurrence = &rule
			if err := book.Ledger.UpdateTransaction(tpl); err != nil {
				return err
			}
			if err := a.commit(cmd, book, activitylog.Entry{
				Action:  "stop_recurring_template",
				Subject: tpl.ID,
				Details: tpl.Description + " until " + calendar.Format(end),
			}); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Stopped %s (%s) after %s", tpl.Description, tpl.ID, calendar.Format(end))
			return nil
		},
	}
}
