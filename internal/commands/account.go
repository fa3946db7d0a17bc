package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/builder"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
)

func newAccountCommand(a *app) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	accountCmd.AddCommand(newAccountListCommand(a))
	accountCmd.AddCommand(newAccountAddCommand(a))
	accountCmd.AddCommand(newAccountDeactivateCommand(a))
	accountCmd.AddCommand(newAccountDeleteCommand(a))
	return accountCmd
}

func newAccountListCommand(a *app) *cobra.Command {
	var class string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, chart, err := a.open()
			if err != nil {
				return err
			}
			list := chart.All()
			if class != "" {
				c := model.AccountClass(class)
				if !c.Valid() {
					return fmt.Errorf("unknown account class %q", class)
				}
				list = chart.ByClass(c)
			}

			t := newTable(cmd.OutOrStdout(), "ID", "NUMBER", "NAME", "CLASS", "TYPE", "BALANCE")
			for _, acct := range list {
				if !acct.Active && !all {
					continue
				}
				bal, err := book.Ledger.AccountBalance(acct.ID)
				if err != nil {
					return err
				}
				name := acct.Name
				if !acct.Active {
					name += " " + subtleStyle.Render("(inactive)")
				}
				t.row(acct.ID, acct.Number, name, string(acct.Class), acct.Type.DisplayName(), money(bal, acct.Currency))
			}
			return t.flush()
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "only list one class (asset, liability, equity, income, expense)")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive accounts")
	return cmd
}

func newAccountAddCommand(a *app) *cobra.Command {
	var acct model.Account
	var class, typ, opening, date string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add an account, optionally with an opening balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, chart, err := a.open()
			if err != nil {
				return err
			}

			acct.ID = args[0]
			acct.Class = model.AccountClass(class)
			acct.Type = model.AccountType(typ)
			acct.Active = true
			if acct.Currency == "" {
				acct.Currency = a.cfg.Project.Currency
			}
			if err := book.Ledger.AddAccount(acct); err != nil {
				return err
			}
			acct, _ = book.Ledger.Account(acct.ID)
			entries := []activitylog.Entry{{Action: "add_account", Subject: acct.ID, Details: acct.Name}}

			if opening != "" {
				amount, err := decimal.NewFromString(opening)
				if err != nil {
					return fmt.Errorf("parsing --opening %q: %w", opening, err)
				}
				on, err := a.dateFlag(date)
				if err != nil {
					return err
				}
				equity, ok := chart.Get(a.cfg.Accounts.OpeningBalanceEquity)
				if !ok {
					return fmt.Errorf("opening balance equity account %q not found", a.cfg.Accounts.OpeningBalanceEquity)
				}
				txn, err := builder.CreateOpeningBalance(on, &acct, amount, &equity)
				if err != nil {
					return err
				}
				if txn, err = book.Ledger.Post(txn); err != nil {
					return err
				}
				entries = append(entries, activitylog.Entry{
					Action:  "post_transaction",
					Subject: txn.ID,
					Amount:  money(amount, acct.Currency),
					Details: txn.Description,
				})
			}

			if err := a.commit(cmd, book, entries...); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Added %s account %s (%s)", acct.Class, acct.Name, acct.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&acct.Name, "name", "", "display name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&class, "class", "", "asset, liability, equity, income or expense (required)")
	_ = cmd.MarkFlagRequired("class")
	cmd.Flags().StringVar(&typ, "type", "", "account type within the class, e.g. bank, creditCard, food")
	cmd.Flags().StringVar(&acct.Number, "number", "", "chart number")
	cmd.Flags().StringVar(&acct.Currency, "currency", "", "currency (default: project currency)")
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance, negative for the abnormal side")
	cmd.Flags().StringVar(&date, "date", "", "opening balance date (default: today)")
	return cmd
}

func newAccountDeactivateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <account>",
		Short: "Hide an account, keeping its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeAccount(cmd, args[0], "deactivate_account", "Deactivated", (*ledger.Ledger).DeactivateAccount)
		},
	}
}

func newAccountDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account no transaction references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeAccount(cmd, args[0], "delete_account", "Deleted", (*ledger.Ledger).DeleteAccount)
		},
	}
}

func (a *app) changeAccount(cmd *cobra.Command, ref, action, done string, change func(*ledger.Ledger, string) error) error {
	book, chart, err := a.open()
	if err != nil {
		return err
	}
	acct, err := chart.Resolve(ref)
	if err != nil {
		return err
	}
	if err := change(book.Ledger, acct.ID); err != nil {
		return err
	}
	if err := a.commit(cmd, book, activitylog.Entry{Action: action, Subject: acct.ID, Details: acct.Name}); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "%s %s (%s)", done, acct.Name, acct.ID)
	return nil
}

// resolveAll resolves account references in order.
func resolveAll(chart *accounts.Chart, refs ...string) ([]model.Account, error) {
	out := make([]model.Account, 0, len(refs))
	for _, ref := range refs {
		acct, err := chart.Resolve(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}
