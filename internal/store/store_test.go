package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return calendar.Date(y, time.Month(m), d)
}

func account(t *testing.T, l *ledger.Ledger, id string) model.Account {
	t.Helper()
	acct, ok := l.Account(id)
	require.True(t, ok, id)
	return acct
}

func sampleBook(t *testing.T) *Book {
	t.Helper()
	l := ledger.New()
	for _, acct := range accounts.DefaultChart("personal", "USD") {
		require.NoError(t, l.AddAccount(acct))
	}
	checking := account(t, l, "checking")
	groceries := account(t, l, "groceries")
	rent := account(t, l, "rent")
	salary := account(t, l, "salary")
	obe := account(t, l, accounts.OpeningBalanceEquityID)

	post := func(p ledger.TransactionParams, lines ...ledger.Line) {
		_, err := l.CreateBalancedTransaction(p, lines)
		require.NoError(t, err)
	}
	post(ledger.TransactionParams{Date: date(2025, 1, 1), Description: "Opening balance"},
		ledger.Debit(checking, dec("1500")), ledger.Credit(obe, dec("1500")))
	post(ledger.TransactionParams{
		Date:        date(2025, 1, 4),
		Description: `Market, "organic"`,
		Reference:   "R-1",
		Status:      model.StatusCleared,
		Attachments: []string{"receipts/a.jpg", "receipts/b.jpg"},
	}, ledger.Debit(groceries, dec("52.30")), ledger.Credit(checking, dec("52.30")))
	post(ledger.TransactionParams{Date: date(2025, 1, 31), Description: "Paycheck, cash back"},
		ledger.Debit(checking, dec("1980")), ledger.Debit(groceries, dec("20.45")), ledger.Credit(salary, dec("2000.45")))

	friday := time.Friday
	end := date(2025, 12, 31)
	post(ledger.TransactionParams{
		Date:        date(2025, 1, 3),
		Description: "Rent",
		Recurring:   true,
		Recurrence: &model.RecurrenceRule{
			Frequency:         model.FrequencyMonthly,
			Interval:          1,
			DayOfMonth:        3,
			WeekendAdjustment: model.WeekendNext,
			StartDate:         date(2025, 1, 3),
			EndDate:           &end,
		},
	}, ledger.Debit(rent, dec("1200")), ledger.Credit(checking, dec("1200")))
	post(ledger.TransactionParams{
		Date:      date(2025, 1, 10),
		Recurring: true,
		Recurrence: &model.RecurrenceRule{
			Frequency: model.FrequencyWeekly,
			Interval:  2,
			DayOfWeek: &friday,
			StartDate: date(2025, 1, 10),
		},
	}, ledger.Debit(checking, dec("900")), ledger.Credit(salary, dec("900")))

	apr := dec("3.61")
	return &Book{Ledger: l, Loans: []model.Loan{
		{
			ID: "home", Name: "Home, 20y", Type: model.LoanMortgage, RateType: model.RateFixed,
			Frequency: model.PayMonthly, Amortization: model.AmortizationFrench,
			Principal: dec("200000"), AnnualRate: dec("3.5"), APR: &apr, TotalPayments: 240,
			Payment: dec("1159.92"), StartDate: date(2025, 1, 1), PaymentsMade: 12, Currency: "USD",
		},
		{
			ID: "car", Name: "Car", Type: model.LoanAuto, RateType: model.RateVariable,
			Frequency: model.PayMonthly, Amortization: model.AmortizationGerman,
			Principal: dec("12000"), AnnualRate: dec("12"), TotalPayments: 12,
			Payment: dec("1058.48"), StartDate: date(2025, 1, 15), Existing: true, PaymentsMade: 3,
			Currency: "USD", Anchor: &model.LoanAnchor{Balance: dec("9066.99"), PaymentsMade: 3},
		},
	}}
}

func assertSameTransactions(t *testing.T, want, got []model.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID)
		assert.True(t, w.Date.Equal(g.Date), "%s date", w.ID)
		assert.Equal(t, w.Description, g.Description)
		assert.Equal(t, w.Reference, g.Reference)
		assert.Equal(t, w.Status, g.Status)
		assert.Equal(t, w.Recurring, g.Recurring)
		assert.Equal(t, w.Attachments, g.Attachments)
		assert.Equal(t, w.Recurrence, g.Recurrence, "%s recurrence", w.ID)
		require.Len(t, g.Entries, len(w.Entries))
		for j := range w.Entries {
			assert.Equal(t, w.Entries[j].ID, g.Entries[j].ID)
			assert.Equal(t, w.Entries[j].AccountID, g.Entries[j].AccountID)
			assert.Equal(t, w.Entries[j].Type, g.Entries[j].Type)
			assert.True(t, w.Entries[j].Amount.Equal(g.Entries[j].Amount), "%s amount", w.Entries[j].ID)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	book := sampleBook(t)
	s := New(t.TempDir())
	require.NoError(t, s.Save(book))

	for _, name := range []string{AccountsFile, JournalFile, RecurrenceFile, LoansFile} {
		_, err := os.Stat(s.Path(name))
		require.NoError(t, err, name)
	}

	got, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, book.Ledger.Accounts(), got.Ledger.Accounts())
	assertSameTransactions(t, book.Ledger.Transactions(), got.Ledger.Transactions())
	assert.Empty(t, got.Ledger.Verify())

	for _, acct := range book.Ledger.Accounts() {
		want, err := book.Ledger.AccountBalance(acct.ID)
		require.NoError(t, err)
		have, err := got.Ledger.AccountBalance(acct.ID)
		require.NoError(t, err)
		assert.True(t, want.Equal(have), "%s: want %s, got %s", acct.ID, want, have)
	}

	require.Len(t, got.Loans, 2)
	for i, want := range book.Loans {
		have := got.Loans[i]
		assert.Equal(t, want.ID, have.ID)
		assert.Equal(t, want.Name, have.Name)
		assert.Equal(t, want.Type, have.Type)
		assert.Equal(t, want.RateType, have.RateType)
		assert.Equal(t, want.Frequency, have.Frequency)
		assert.Equal(t, want.Amortization, have.Amortization)
		assert.True(t, want.Principal.Equal(have.Principal))
		assert.True(t, want.AnnualRate.Equal(have.AnnualRate))
		assert.True(t, want.Payment.Equal(have.Payment))
		assert.Equal(t, want.TotalPayments, have.TotalPayments)
		assert.True(t, want.StartDate.Equal(have.StartDate))
		assert.Equal(t, want.Existing, have.Existing)
		assert.Equal(t, want.PaymentsMade, have.PaymentsMade)
		assert.Equal(t, want.Currency, have.Currency)
	}
	require.NotNil(t, got.Loans[0].APR)
	assert.True(t, dec("3.61").Equal(*got.Loans[0].APR))
	assert.Nil(t, got.Loans[0].Anchor)
	assert.Nil(t, got.Loans[1].APR)
	require.NotNil(t, got.Loans[1].Anchor)
	assert.True(t, dec("9066.99").Equal(got.Loans[1].Anchor.Balance))
	assert.Equal(t, 3, got.Loans[1].Anchor.PaymentsMade)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save(sampleBook(t)))
	require.NoError(t, s.Save(sampleBook(t)))

	entries, err := os.ReadDir(filepath.Join(s.root, Dir))
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestInit(t *testing.T) {
	s := New(t.TempDir())
	chart := accounts.DefaultChart("minimal", "EUR")
	require.NoError(t, s.Init(chart))

	book, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, book.Ledger.Accounts(), len(chart))
	assert.Empty(t, book.Ledger.Transactions())
	assert.Empty(t, book.Loans)

	assert.ErrorIs(t, s.Init(chart), ErrExists)
}

func TestLoad_NotInitialized(t *testing.T) {
	_, err := New(t.TempDir()).Load()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLoad_MissingOptionalFiles(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init(accounts.DefaultChart("minimal", "USD")))
	for _, name := range []string{JournalFile, RecurrenceFile, LoansFile} {
		require.NoError(t, os.Remove(s.Path(name)))
	}

	book, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, book.Ledger.Accounts(), 5)
}

func TestLoad_RejectsUnbalancedJournal(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init(accounts.DefaultChart("minimal", "USD")))
	journal := JournalHeader + "\n" +
		"t1.1,2025-01-01,expenses,Lunch,12.00,,,,,\n" +
		"t1.2,2025-01-01,checking,Lunch,,11.00,,,,\n"
	require.NoError(t, os.WriteFile(s.Path(JournalFile), []byte(journal), 0o644))

	_, err := s.Load()
	var unbalanced *ledger.UnbalancedTransactionError
	require.ErrorAs(t, err, &unbalanced)
	assert.Equal(t, "t1", unbalanced.TransactionID)
}

func TestLoad_RejectsUnknownAccount(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init(accounts.DefaultChart("minimal", "USD")))
	journal := JournalHeader + "\n" +
		"t1.1,2025-01-01,yacht,Fuel,12.00,,,,,\n" +
		"t1.2,2025-01-01,checking,Fuel,,12.00,,,,\n"
	require.NoError(t, os.WriteFile(s.Path(JournalFile), []byte(journal), 0o644))

	_, err := s.Load()
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestLoad_RejectsOrphanRule(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init(accounts.DefaultChart("minimal", "USD")))
	rules := RecurrenceHeader + "\nghost,monthly,1,,,,,2025-01-01,,\n"
	require.NoError(t, os.WriteFile(s.Path(RecurrenceFile), []byte(rules), 0o644))

	_, err := s.Load()
	assert.ErrorContains(t, err, "reference no transaction")
}

func TestBookLoan(t *testing.T) {
	book := sampleBook(t)
	l, ok := book.Loan("car")
	require.True(t, ok)
	l.PaymentsMade++
	assert.Equal(t, 4, book.Loans[1].PaymentsMade)

	_, ok = book.Loan("boat")
	assert.False(t, ok)
}
