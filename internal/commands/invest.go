package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/activitylog"
	"github.com/cleared-dev/fincore/internal/builder"
	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/model"
)

func newInvestCommand(a *app) *cobra.Command {
	investCmd := &cobra.Command{
		Use:   "invest",
		Short: "Record trades and dividends",
	}
	investCmd.AddCommand(newTradeCommand(a, "buy", "Buy shares with cash", builder.CreateInvestmentBuy))
	investCmd.AddCommand(newTradeCommand(a, "sell", "Sell shares for cash", builder.CreateInvestmentSell))
	investCmd.AddCommand(newDividendCommand(a))
	return investCmd
}

type tradeFunc func(p builder.InvestmentParams, investment, cash *model.Account) (model.Transaction, error)

func newTradeCommand(a *app, use, short string, build tradeFunc) *cobra.Command {
	var holding, cash, fees, date, description string

	cmd := &cobra.Command{
		Use:   use + " <shares> <price>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := builder.InvestmentParams{Description: description}
			var err error
			if p.Shares, err = parseDecimal("shares", args[0]); err != nil {
				return err
			}
			if p.Price, err = parseDecimal("price", args[1]); err != nil {
				return err
			}
			if p.Fees, err = optionalDecimal("fees", fees); err != nil {
				return err
			}
			if p.Date, err = a.dateFlag(date); err != nil {
				return err
			}
			book, chart, err := a.open()
			if err != nil {
				return err
			}
			accts, err := resolveAll(chart, holding, cash)
			if err != nil {
				return err
			}
			txn, err := build(p, &accts[0], &accts[1])
			if err != nil {
				return err
			}
			if txn, err = book.Ledger.Post(txn); err != nil {
				return err
			}
			display := money(txn.Amount(), accts[1].Currency)
			if err := a.commit(cmd, book, activitylog.Entry{
				Action:  "post_transaction",
				Subject: txn.ID,
				Amount:  display,
				Details: fmt.Sprintf("%s: %s / %s", txn.Description, accts[0].Name, accts[1].Name),
			}); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Posted %s %s on %s (%s)", use, display, calendar.Format(txn.Date), txn.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&holding, "account", "brokerage", "investment account")
	cmd.Flags().StringVar(&cash, "cash", "checking", "cash account")
	cmd.Flags().StringVar(&fees, "fees", "", "commission and fees")
	cmd.Flags().StringVar(&date, "date", "", "trade date (default: today)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	return cmd
}

func newDividendCommand(a *app) *cobra.Command {
	return newPostCommand(a, "dividend", "Record a dividend paid to cash",
		"source", "dividend income account", "to", "account deposited to",
		func(p builder.Params, income, cash *model.Account) (model.Transaction, error) {
			return builder.CreateDividend(p, cash, income)
		})
}
