package builder

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
)

// InvestmentParams describes a trade in a holding.
type InvestmentParams struct {
	Date        time.Time
	Description string
	Shares      decimal.Decimal
	Price       decimal.Decimal // per share
	Fees        decimal.Decimal
	Reference   string
}

func (p InvestmentParams) validate(kind string) error {
	if !p.Shares.IsPositive() {
		return fmt.Errorf("%s shares %s: %w", kind, p.Shares, ErrNonPositiveAmount)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%s price %s: %w", kind, p.Price, ErrNonPositiveAmount)
	}
	if p.Fees.IsNegative() {
		return fmt.Errorf("%s fees %s are negative: %w", kind, p.Fees, ErrNonPositiveAmount)
	}
	return nil
}

func (p InvestmentParams) description(kind string) string {
	if p.Description != "" {
		return p.Description
	}
	return fmt.Sprintf("%s %s @ %s", kind, p.Shares, p.Price)
}

// CreateInvestmentBuy debits the holding and credits cash for the shares
// bought plus fees. Fees are capitalized into cost basis. Fees must fit the
// cash currency; the shares times price total is rounded to it.
func CreateInvestmentBuy(p InvestmentParams, investment, cash *model.Account) (model.Transaction, error) {
	mustAccount(investment, "investment buy")
	mustAccount(cash, "investment buy")
	if err := p.validate("buy"); err != nil {
		return model.Transaction{}, err
	}
	if err := exact(p.Fees, cash.Currency, "buy fees"); err != nil {
		return model.Transaction{}, err
	}
	total := currency.Round(p.Shares.Mul(p.Price).Add(p.Fees), cash.Currency)
	return trade(p, "Buy", total, investment, cash)
}

// CreateInvestmentSell debits cash and credits the holding for the proceeds
// net of fees.
func CreateInvestmentSell(p InvestmentParams, investment, cash *model.Account) (model.Transaction, error) {
	mustAccount(investment, "investment sell")
	mustAccount(cash, "investment sell")
	if err := p.validate("sell"); err != nil {
		return model.Transaction{}, err
	}
	if err := exact(p.Fees, cash.Currency, "sell fees"); err != nil {
		return model.Transaction{}, err
	}
	net := currency.Round(p.Shares.Mul(p.Price).Sub(p.Fees), cash.Currency)
	if !net.IsPositive() {
		return model.Transaction{}, fmt.Errorf("sell proceeds %s after fees: %w", net, ErrNonPositiveAmount)
	}
	return trade(p, "Sell", net, cash, investment)
}

func trade(p InvestmentParams, kind string, amount decimal.Decimal, debit, credit *model.Account) (model.Transaction, error) {
	if !amount.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%s total %s: %w", kind, amount, ErrNonPositiveAmount)
	}
	return ledger.NewTransaction(ledger.TransactionParams{
		Date:        p.Date,
		Description: p.description(kind),
		Reference:   p.Reference,
	}, []ledger.Line{
		ledger.Debit(*debit, amount),
		ledger.Credit(*credit, amount),
	})
}

// CreateDividend debits cash and credits dividend income.
func CreateDividend(p Params, cash, income *model.Account) (model.Transaction, error) {
	return double(p, "dividend", cash, income)
}

// CreateStockSplit records a split of a holding. Splits change share counts
// only, so there are no entries to post.
func CreateStockSplit(date time.Time, account *model.Account, numerator, denominator int64) (model.StockSplit, error) {
	mustAccount(account, "stock split")
	if numerator <= 0 || denominator <= 0 {
		return model.StockSplit{}, fmt.Errorf("split ratio %d:%d: %w", numerator, denominator, ErrNonPositiveAmount)
	}
	return model.StockSplit{
		AccountID:   account.ID,
		Date:        calendar.Normalize(date),
		Numerator:   numerator,
		Denominator: denominator,
	}, nil
}
