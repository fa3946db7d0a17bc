package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/report"
)

func newBalanceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account...]",
		Short: "Show account balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			book, chart, err := a.open()
			if err != nil {
				return err
			}
			list := chart.All()
			if len(args) > 0 {
				if list, err = resolveAll(chart, args...); err != nil {
					return err
				}
			}

			t := newTable(cmd.OutOrStdout(), "ACCOUNT", "CLASS", "BALANCE")
			for _, acct := range list {
				if len(args) == 0 && !acct.Active {
					continue
				}
				bal, err := book.Ledger.AccountBalance(acct.ID)
				if err != nil {
					return err
				}
				t.row(acct.Name, string(acct.Class), money(bal, acct.Currency))
			}
			return t.flush()
		},
	}
}

func newReportCommand(a *app) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Summaries derived from the ledger",
	}
	reportCmd.AddCommand(newNetWorthCommand(a))
	reportCmd.AddCommand(newMonthCommand(a))
	reportCmd.AddCommand(newRegisterCommand(a))
	reportCmd.AddCommand(newYearOverYearCommand(a))
	return reportCmd
}

func newNetWorthCommand(a *app) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "networth",
		Short: "Assets minus liabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			on, err := a.dateFlag(asOf)
			if err != nil {
				return err
			}
			book, _, err := a.open()
			if err != nil {
				return err
			}
			code := a.cfg.Project.Currency
			rep := report.NetWorth(book.Ledger, on)

			out := cmd.OutOrStdout()
			title(out, "Net worth as of %s", calendar.Format(rep.AsOf))
			t := newTable(out, "ACCOUNT", "CLASS", "BALANCE")
			for _, aa := range rep.Accounts {
				if aa.Amount.IsZero() {
					continue
				}
				t.row(aa.Account.Name, string(aa.Account.Class), money(aa.Amount, aa.Account.Currency))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nAssets:       %s\n", money(rep.Assets, code))
			fmt.Fprintf(out, "Liabilities:  %s\n", money(rep.Liabilities, code))
			fmt.Fprintf(out, "Net worth:    %s\n", titleStyle.Render(money(rep.NetWorth, code)))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "date to report at (default: today)")
	return cmd
}

// monthRange parses YYYY-MM, defaulting to the current month.
func (a *app) monthRange(s string) (report.DateRange, error) {
	if s == "" {
		today := a.today()
		return report.Month(today.Year(), today.Month()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return report.DateRange{}, fmt.Errorf("invalid month %q want format YYYY-MM: %w", s, err)
	}
	return report.Month(t.Year(), t.Month()), nil
}

func newMonthCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Income, spending and the biggest categories of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.monthRange(month)
			if err != nil {
				return err
			}
			book, _, err := a.open()
			if err != nil {
				return err
			}
			code := a.cfg.Project.Currency
			rep := report.IncomeExpense(book.Ledger, r)

			out := cmd.OutOrStdout()
			title(out, "%s", r.Start.Format("January 2006"))
			fmt.Fprintf(out, "Income:    %s\n", money(rep.Income, code))
			fmt.Fprintf(out, "Expenses:  %s\n", money(rep.Expenses, code))
			fmt.Fprintf(out, "Net:       %s\n\n", signed(rep.Net, code))

			breakdown := report.CategoryBreakdown(book.Ledger, model.ClassExpense, r)
			if len(breakdown) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("No spending recorded."))
				return nil
			}
			t := newTable(out, "CATEGORY", "SPENT", "SHARE")
			for _, aa := range breakdown {
				share := "-"
				if rep.Expenses.IsPositive() {
					share = percent(aa.Amount.Mul(hundred).DivRound(rep.Expenses, 2))
				}
				t.row(aa.Account.Name, money(aa.Amount, aa.Account.Currency), share)
			}
			return t.flush()
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: this month)")
	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "register <account>",
		Short: "An account's transactions with a running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r report.DateRange
			if month != "" {
				var err error
				if r, err = a.monthRange(month); err != nil {
					return err
				}
			}
			book, chart, err := a.open()
			if err != nil {
				return err
			}
			acct, err := chart.Resolve(args[0])
			if err != nil {
				return err
			}
			lines, err := report.Register(book.Ledger, acct.ID, r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			title(out, "%s register", acct.Name)
			t := newTable(out, "DATE", "DESCRIPTION", "AMOUNT", "BALANCE")
			for _, ln := range lines {
				t.row(calendar.Format(ln.Date), ln.Description, money(ln.Amount, acct.Currency), money(ln.Balance, acct.Currency))
			}
			return t.flush()
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "only show one month, YYYY-MM")
	return cmd
}

func newYearOverYearCommand(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "yoy <account>",
		Short: "Compare an account's yearly total with the year before",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = a.today().Year()
			}
			book, chart, err := a.open()
			if err != nil {
				return err
			}
			acct, err := chart.Resolve(args[0])
			if err != nil {
				return err
			}
			rep, err := report.YearOverYear(book.Ledger, acct.ID, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			title(out, "%s, %d vs %d", acct.Name, rep.Year, rep.Year-1)
			fmt.Fprintf(out, "%d:    %s\n", rep.Year, money(rep.Current, acct.Currency))
			fmt.Fprintf(out, "%d:    %s\n", rep.Year-1, money(rep.Previous, acct.Currency))
			change := signed(rep.Change, acct.Currency)
			if rep.PercentChange != nil {
				change += " (" + percent(*rep.PercentChange) + ")"
			}
			fmt.Fprintf(out, "Change:  %s\n", change)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to report (default: this year)")
	return cmd
}
