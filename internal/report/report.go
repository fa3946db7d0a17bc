// Package report derives balances and summaries from posted transactions.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/model"
)

// ErrUnknownAccount is returned when a report names an account the source lacks.
var ErrUnknownAccount = errors.New("unknown account")

// AccountLookup resolves account ids.
type AccountLookup interface {
	Account(id string) (model.Account, bool)
}

// Source is what reports read. *ledger.Ledger satisfies it.
type Source interface {
	AccountLookup
	Accounts() []model.Account
	Transactions() []model.Transaction
}

// AccountMap is an AccountLookup over a plain map.
type AccountMap map[string]model.Account

// Account implements AccountLookup.
func (m AccountMap) Account(id string) (model.Account, bool) {
	a, ok := m[id]
	return a, ok
}

// DateRange is the half-open interval [Start, End). A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Month returns the range covering one calendar month.
func Month(year int, month time.Month) DateRange {
	start := calendar.Date(year, month, 1)
	return DateRange{Start: start, End: calendar.AddMonths(start, 1)}
}

// Year returns the range covering one calendar year.
func Year(year int) DateRange {
	return DateRange{Start: calendar.Date(year, time.January, 1), End: calendar.Date(year+1, time.January, 1)}
}

// Through returns the range of every date up to and including asOf.
func Through(asOf time.Time) DateRange {
	return DateRange{End: calendar.AddDays(asOf, 1)}
}

// Contains reports whether t falls in the range.
func (r DateRange) Contains(t time.Time) bool {
	t = calendar.Normalize(t)
	if !r.Start.IsZero() && t.Before(calendar.Normalize(r.Start)) {
		return false
	}
	if !r.End.IsZero() && !t.Before(calendar.Normalize(r.End)) {
		return false
	}
	return true
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", calendar.Format(r.Start), calendar.Format(r.End))
}

// NetBalanceChange returns how much txn moves net worth. Asset and liability
// entries count, debit up and credit down; income and expense legs do not.
// Entries on accounts the lookup does not know are ignored, and a recurring
// template moves nothing.
func NetBalanceChange(txn model.Transaction, accounts AccountLookup) decimal.Decimal {
	total := decimal.Zero
	if txn.Recurring {
		return total
	}
	for _, e := range txn.Entries {
		acct, ok := accounts.Account(e.AccountID)
		if !ok || !acct.Class.BalanceSheet() {
			continue
		}
		if e.Type == model.EntryDebit {
			total = total.Add(e.Amount)
		} else {
			total = total.Sub(e.Amount)
		}
	}
	return total
}

// CategoryTotal sums an account's entries in r, signed to the account's
// normal side. Recurring templates are skipped when excludeTemplates is set.
func CategoryTotal(src Source, accountID string, r DateRange, excludeTemplates bool) (decimal.Decimal, error) {
	acct, ok := src.Account(accountID)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}
	totals := sumByAccount(src.Transactions(), r, excludeTemplates)
	return normal(acct, totals[accountID]), nil
}

// debitNet tracks debits minus credits per account.
type debitNet map[string]decimal.Decimal

func sumByAccount(txns []model.Transaction, r DateRange, excludeTemplates bool) debitNet {
	out := debitNet{}
	for _, txn := range txns {
		if excludeTemplates && txn.Recurring {
			continue
		}
		if !r.Contains(txn.Date) {
			continue
		}
		for _, e := range txn.Entries {
			amt := e.Amount
			if e.Type == model.EntryCredit {
				amt = amt.Neg()
			}
			out[e.AccountID] = out[e.AccountID].Add(amt)
		}
	}
	return out
}

// normal converts a debit-positive net to acct's normal sign.
func normal(acct model.Account, net decimal.Decimal) decimal.Decimal {
	if acct.NormalSide() == model.EntryCredit {
		return net.Neg()
	}
	return net
}

// AccountAmount pairs an account with a total.
type AccountAmount struct {
	Account model.Account
	Amount  decimal.Decimal
}

// NetWorthReport is a balance sheet snapshot.
type NetWorthReport struct {
	AsOf        time.Time
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	NetWorth    decimal.Decimal
	Accounts    []AccountAmount // asset and liability balances, chart order
}

// NetWorth returns asset and liability balances as of the end of asOf.
// Recurring templates are left out, as they are from account balances.
func NetWorth(src Source, asOf time.Time) NetWorthReport {
	totals := sumByAccount(src.Transactions(), Through(asOf), true)
	rep := NetWorthReport{AsOf: calendar.Normalize(asOf)}
	for _, acct := range src.Accounts() {
		if acct.Class != model.ClassAsset && acct.Class != model.ClassLiability {
			continue
		}
		bal := normal(acct, totals[acct.ID])
		rep.Accounts = append(rep.Accounts, AccountAmount{Account: acct, Amount: bal})
		if acct.Class == model.ClassAsset {
			rep.Assets = rep.Assets.Add(bal)
		} else {
			rep.Liabilities = rep.Liabilities.Add(bal)
		}
	}
	rep.NetWorth = rep.Assets.Sub(rep.Liabilities)
	return rep
}

// IncomeExpenseReport summarizes a period's earnings and spending.
type IncomeExpenseReport struct {
	Range    DateRange
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// IncomeExpense totals income and expense accounts over r, skipping
// recurring templates.
func IncomeExpense(src Source, r DateRange) IncomeExpenseReport {
	totals := sumByAccount(src.Transactions(), r, true)
	rep := IncomeExpenseReport{Range: r}
	for _, acct := range src.Accounts() {
		switch acct.Class {
		case model.ClassIncome:
			rep.Income = rep.Income.Add(normal(acct, totals[acct.ID]))
		case model.ClassExpense:
			rep.Expenses = rep.Expenses.Add(normal(acct, totals[acct.ID]))
		}
	}
	rep.Net = rep.Income.Sub(rep.Expenses)
	return rep
}

// CategoryBreakdown lists the non-zero totals of every account in class over
// r, largest first.
func CategoryBreakdown(src Source, class model.AccountClass, r DateRange) []AccountAmount {
	totals := sumByAccount(src.Transactions(), r, true)
	var out []AccountAmount
	for _, acct := range src.Accounts() {
		if acct.Class != class {
			continue
		}
		amt := normal(acct, totals[acct.ID])
		if amt.IsZero() {
			continue
		}
		out = append(out, AccountAmount{Account: acct, Amount: amt})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Account.Name < out[j].Account.Name
	})
	return out
}

// YearOverYearReport compares an account's total across two years.
type YearOverYearReport struct {
	Year          int
	Current       decimal.Decimal
	Previous      decimal.Decimal
	Change        decimal.Decimal
	PercentChange *decimal.Decimal // nil when Previous is zero
}

// YearOverYear compares accountID's total in year with the year before.
func YearOverYear(src Source, accountID string, year int) (YearOverYearReport, error) {
	cur, err := CategoryTotal(src, accountID, Year(year), true)
	if err != nil {
		return YearOverYearReport{}, err
	}
	prev, err := CategoryTotal(src, accountID, Year(year-1), true)
	if err != nil {
		return YearOverYearReport{}, err
	}
	rep := YearOverYearReport{Year: year, Current: cur, Previous: prev, Change: cur.Sub(prev)}
	if !prev.IsZero() {
		pct := rep.Change.Mul(decimal.NewFromInt(100)).DivRound(prev.Abs(), 2)
		rep.PercentChange = &pct
	}
	return rep, nil
}

// RegisterLine is one transaction in an account register.
type RegisterLine struct {
	Date          time.Time
	TransactionID string
	Description   string
	Amount        decimal.Decimal // signed to the account's normal side
	Balance       decimal.Decimal // running, including activity before the range
}

// Register lists accountID's transactions in r in date order with a running
// balance.
func Register(src Source, accountID string, r DateRange) ([]RegisterLine, error) {
	acct, ok := src.Account(accountID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}
	txns := src.Transactions()
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

	balance := decimal.Zero
	var out []RegisterLine
	for _, txn := range txns {
		if !r.End.IsZero() && !txn.Date.Before(calendar.Normalize(r.End)) {
			break
		}
		if txn.Recurring {
			continue
		}
		amt := decimal.Zero
		touched := false
		for _, e := range txn.Entries {
			if e.AccountID == accountID {
				amt = amt.Add(acct.Signed(e.Type, e.Amount))
				touched = true
			}
		}
		if !touched {
			continue
		}
		balance = balance.Add(amt)
		if r.Contains(txn.Date) {
			out = append(out, RegisterLine{
				Date:          txn.Date,
				TransactionID: txn.ID,
				Description:   txn.Description,
				Amount:        amt,
				Balance:       balance,
			})
		}
	}
	return out, nil
}
