// Package builder assembles the balanced transactions behind everyday
// events: spending, income, transfers, opening balances and investments.
// Builders do not post; hand the result to ledger.Ledger.Post.
package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
)

var (
	// ErrNonPositiveAmount is returned for amounts that must be above zero.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrExcessPrecision is returned for amounts finer than the currency's minor unit.
	ErrExcessPrecision = errors.New("amount has more decimal places than the currency allows")
)

// Params holds the fields shared by the simple two-entry builders.
type Params struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reference   string
	Status      model.Status
}

func (p Params) transaction() ledger.TransactionParams {
	return ledger.TransactionParams{
		Date:        p.Date,
		Description: p.Description,
		Reference:   p.Reference,
		Status:      p.Status,
	}
}

// CreateExpense debits the expense account and credits the account paid from.
func CreateExpense(p Params, expense, payment *model.Account) (model.Transaction, error) {
	return double(p, "expense", expense, payment)
}

// CreateIncome debits the deposit account and credits the income account.
func CreateIncome(p Params, income, deposit *model.Account) (model.Transaction, error) {
	return double(p, "income", deposit, income)
}

// CreateTransfer moves money between two balance sheet accounts: debit to,
// credit from.
func CreateTransfer(p Params, from, to *model.Account) (model.Transaction, error) {
	return double(p, "transfer", to, from)
}

func double(p Params, kind string, debit, credit *model.Account) (model.Transaction, error) {
	mustAccount(debit, kind)
	mustAccount(credit, kind)
	amount, err := positive(p.Amount, debit.Currency, kind)
	if err != nil {
		return model.Transaction{}, err
	}
	return ledger.NewTransaction(p.transaction(), []ledger.Line{
		ledger.Debit(*debit, amount),
		ledger.Credit(*credit, amount),
	})
}

// CreateOpeningBalance sets an account's starting balance against equity.
// A negative amount puts the balance on the account's abnormal side, such as
// an overdrawn checking account.
func CreateOpeningBalance(date time.Time, account *model.Account, amount decimal.Decimal, equity *model.Account) (model.Transaction, error) {
	mustAccount(account, "opening balance")
	mustAccount(equity, "opening balance")
	if amount.IsZero() {
		return model.Transaction{}, fmt.Errorf("opening balance for %s: %w", account.Name, ErrNonPositiveAmount)
	}
	if err := exact(amount, account.Currency, "opening balance"); err != nil {
		return model.Transaction{}, err
	}
	side := account.NormalSide()
	if amount.IsNegative() {
		side = side.Opposite()
	}
	abs := amount.Abs()
	return ledger.NewTransaction(ledger.TransactionParams{
		Date:        date,
		Description: "Opening balance: " + account.Name,
	}, []ledger.Line{
		{Account: *account, Type: side, Amount: abs},
		{Account: *equity, Type: side.Opposite(), Amount: abs},
	})
}

func positive(amount decimal.Decimal, code, kind string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s of %s: %w", kind, amount, ErrNonPositiveAmount)
	}
	if err := exact(amount, code, kind); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func exact(amount decimal.Decimal, code, kind string) error {
	if !currency.Exact(amount, code) {
		return fmt.Errorf("%s of %s in %s: %w", kind, amount, code, ErrExcessPrecision)
	}
	return nil
}

// mustAccount panics on a nil account; passing one is a programming error.
func mustAccount(acct *model.Account, kind string) {
	if acct == nil {
		panic("builder: nil account for " + kind)
	}
}
