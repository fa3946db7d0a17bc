package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/fincore/internal/calendar"
)

func TestTotals(t *testing.T) {
	txn := Transaction{Entries: []Entry{
		{AccountID: "food", Type: EntryDebit, Amount: dec("52.30")},
		{AccountID: "cash", Type: EntryCredit, Amount: dec("52.30")},
	}}
	d, c := txn.Totals()
	assert.True(t, d.Equal(dec("52.30")))
	assert.True(t, c.Equal(dec("52.30")))
	assert.True(t, txn.Balanced())
	assert.True(t, txn.Amount().Equal(dec("52.30")))
	assert.True(t, txn.References("cash"))
	assert.False(t, txn.References("bank"))

	txn.Entries[1].Amount = dec("52.29")
	assert.False(t, txn.Balanced())
}

func TestTotals_Empty(t *testing.T) {
	var txn Transaction
	d, c := txn.Totals()
	assert.True(t, d.IsZero())
	assert.True(t, c.IsZero())
	assert.True(t, txn.Balanced())
}

func TestClone(t *testing.T) {
	end := calendar.Date(2026, time.January, 1)
	wd := time.Monday
	txn := Transaction{
		ID:          "t1",
		Attachments: []string{"receipt.pdf"},
		Entries:     []Entry{{ID: "t1.1", Type: EntryDebit, Amount: dec("1")}},
		Recurrence:  &RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, DayOfWeek: &wd, EndDate: &end},
	}
	c := txn.Clone()
	c.Entries[0].Amount = dec("2")
	c.Attachments[0] = "other.pdf"
	*c.Recurrence.DayOfWeek = time.Friday
	*c.Recurrence.EndDate = calendar.Date(2030, time.January, 1)

	assert.True(t, txn.Entries[0].Amount.Equal(dec("1")))
	assert.Equal(t, "receipt.pdf", txn.Attachments[0])
	assert.Equal(t, time.Monday, *txn.Recurrence.DayOfWeek)
	assert.True(t, txn.Recurrence.EndDate.Equal(end))
}

func TestEntryType(t *testing.T) {
	assert.True(t, EntryDebit.Valid())
	assert.False(t, EntryType("both").Valid())
	assert.Equal(t, EntryCredit, EntryDebit.Opposite())
	assert.Equal(t, EntryDebit, EntryCredit.Opposite())
}

func TestPaymentFrequencyAdvance(t *testing.T) {
	start := calendar.Date(2025, time.January, 31)
	tests := []struct {
		freq PaymentFrequency
		n    int
		want string
	}{
		{PayMonthly, 1, "2025-02-28"},
		{PayMonthly, 2, "2025-03-31"},
		{PayQuarterly, 1, "2025-04-30"},
		{PaySemiannual, 1, "2025-07-31"},
		{PayAnnual, 1, "2026-01-31"},
		{PayWeekly, 1, "2025-02-07"},
		{PayBiweekly, 2, "2025-02-28"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calendar.Format(tt.freq.Advance(start, tt.n)), "%s x%d", tt.freq, tt.n)
	}
	assert.Equal(t, int64(12), PayMonthly.PeriodsPerYear())
	assert.Equal(t, int64(26), PayBiweekly.PeriodsPerYear())
	assert.Equal(t, int64(0), PaymentFrequency("hourly").PeriodsPerYear())
	assert.False(t, PaymentFrequency("hourly").Valid())
}

func TestStockSplit(t *testing.T) {
	s := StockSplit{Numerator: 3, Denominator: 2}
	assert.True(t, s.Apply(dec("100")).Equal(dec("150")))
	assert.True(t, s.Ratio().Equal(dec("1.5")))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, LoanMortgage.Valid())
	assert.False(t, LoanType("yacht").Valid())
	assert.Equal(t, "Auto Loan", LoanAuto.DisplayName())
	assert.True(t, RateMixed.Valid())
	assert.True(t, AmortizationGerman.Valid())
	assert.False(t, AmortizationType("dutch").Valid())
	assert.True(t, FrequencyYearly.Valid())
	assert.True(t, WeekendAdjustment("").Valid())
	assert.False(t, WeekendAdjustment("sideways").Valid())
}
