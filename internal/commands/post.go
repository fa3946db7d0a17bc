package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/builder"
	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/recurrence"
)

// postFlags are shared by expense, income and transfer.
type postFlags struct {
	date        string
	description string
	reference   string
	cleared     bool

	every    string
	interval int
	day      int
	until    string
	weekend  string
}

func (f *postFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date (default: today)")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "description")
	cmd.Flags().StringVar(&f.reference, "ref", "", "reference, e.g. a check number")
	cmd.Flags().BoolVar(&f.cleared, "cleared", false, "mark as cleared with the bank")

	cmd.Flags().StringVar(&f.every, "every", "", "make this a recurring template: daily, weekly, monthly or yearly")
	cmd.Flags().IntVar(&f.interval, "interval", 1, "recur every N units")
	cmd.Flags().IntVar(&f.day, "day", 0, "day of month for monthly and yearly rules (default: the date's day)")
	cmd.Flags().StringVar(&f.until, "until", "", "last date the rule may fall on")
	cmd.Flags().StringVar(&f.weekend, "weekend", "", "move weekend dates: previous, next or nearest")
}

func (f *postFlags) params(a *app, amount decimal.Decimal) (builder.Params, error) {
	on, err := a.dateFlag(f.date)
	if err != nil {
		return builder.Params{}, err
	}
	p := builder.Params{Date: on, Description: f.description, Amount: amount, Reference: f.reference}
	if f.cleared {
		p.Status = model.StatusCleared
	}
	return p, nil
}

// rule returns the recurrence rule the flags describe, nil when --every is unset.
func (f *postFlags) rule(start time.Time) (*model.RecurrenceRule, error) {
	if f.every == "" {
		return nil, nil
	}
	rule := model.RecurrenceRule{
		Frequency:         model.Frequency(f.every),
		Interval:          f.interval,
		DayOfMonth:        f.day,
		WeekendAdjustment: model.WeekendAdjustment(f.weekend),
		StartDate:         start,
	}
	if f.until != "" {
		end, err := calendar.Parse(f.until)
		if err != nil {
			return nil, err
		}
		rule.EndDate = &end
	}
	if err := recurrence.Validate(rule); err != nil {
		return nil, err
	}
	rule = recurrence.Advance(rule, start)
	return &rule, nil
}

type buildFunc func(p builder.Params, first, second *model.Account) (model.Transaction, error)

// newPostCommand builds a two-account posting command. The first account
// flag names the category (or source), the second the balance sheet side.
func newPostCommand(a *app, use, short, firstFlag, firstHelp, secondFlag, secondHelp string, build buildFunc) *cobra.Command {
	var flags postFlags
	var first, second string

	cmd := &cobra.Command{
		Use:   use + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[0], err)
			}
			book, chart, err := a.open()
			if err != nil {
				return err
			}
			accts, err := resolveAll(chart, first, second)
			if err != nil {
				return err
			}
			for _, acct := range accts {
				if !acct.Active {
					return fmt.Errorf("account %s is inactive", acct.Name)
				}
			}

			p, err := flags.params(a, amount)
			if err != nil {
				return err
			}
			if p.Description == "" {
				p.Description = accts[0].Name
				if use == "transfer" {
					p.Description = "Transfer to " + accts[1].Name
				}
			}
			txn, err := build(p, &accts[0], &accts[1])
			if err != nil {
				return err
			}
			if txn.Recurrence, err = flags.rule(txn.Date); err != nil {
				return err
			}
			txn.Recurring = txn.Recurrence != nil

			if txn, err = book.Ledger.Post(txn); err != nil {
				return err
			}
			logger.Get().Debugw("transaction posted", "id", txn.ID, "kind", use, "amount", txn.Amount().String(), "recurring", txn.Recurring)

			details := fmt.Sprintf("%s: %s / %s", txn.Description, accts[0].Name, accts[1].Name)
			display := money(txn.Amount(), accts[0].Currency)
			entries := []activitylog.Entry{{Action: "post_transaction", Subject: txn.ID, Amount: display, Details: details}}

			// a template only defines the series, its first date is posted on its own
			template := txn
			if template.Recurring {
				first, err := builder.CreateOccurrence(template, template.Date)
				if err != nil {
					return err
				}
				first.Status = template.Status
				if txn, err = book.Ledger.Post(first); err != nil {
					return err
				}
				entries = []activitylog.Entry{
					{Action: "post_recurring_template", Subject: template.ID, Amount: display, Details: details},
					{Action: "post_occurrence", Subject: txn.ID, Amount: display, Details: details},
				}
			}
			if err := a.commit(cmd, book, entries...); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			success(out, "Posted %s %s on %s (%s)", use, display, calendar.Format(txn.Date), txn.ID)
			if template.Recurring && template.Recurrence.NextOccurrence != nil {
				fmt.Fprintf(out, "Repeats %s as %s, next on %s\n", template.Recurrence.Frequency, template.ID,
					calendar.Format(*template.Recurrence.NextOccurrence))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&first, firstFlag, "", firstHelp+" (required)")
	_ = cmd.MarkFlagRequired(firstFlag)
	cmd.Flags().StringVar(&second, secondFlag, "", secondHelp+" (required)")
	_ = cmd.MarkFlagRequired(secondFlag)
	return cmd
}

func newExpenseCommand(a *app) *cobra.Command {
	return newPostCommand(a, "expense", "Record spending",
		"category", "expense account", "from", "account paid from",
		builder.CreateExpense)
}

func newIncomeCommand(a *app) *cobra.Command {
	return newPostCommand(a, "income", "Record income",
		"source", "income account", "to", "account deposited to",
		builder.CreateIncome)
}

func newTransferCommand(a *app) *cobra.Command {
	return newPostCommand(a, "transfer", "Move money between accounts",
		"from", "account moved from", "to", "account moved to",
		builder.CreateTransfer)
}
