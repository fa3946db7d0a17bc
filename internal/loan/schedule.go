package loan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/model"
)

// AmortizationEntry is one scheduled payment. Balance is what remains after it.
type AmortizationEntry struct {
	Number    int
	Date      time.Time
	Payment   decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Balance   decimal.Decimal
}

// ScheduleParams holds the inputs to GenerateAmortizationSchedule.
type ScheduleParams struct {
	Principal     decimal.Decimal
	AnnualRate    decimal.Decimal // percent
	TotalPayments int
	Frequency     model.PaymentFrequency
	Amortization  model.AmortizationType // defaults to french
	StartDate     time.Time              // first payment falls one period later

	// StartingPayment is the first row number returned; earlier rows are
	// still applied to the balance. Zero means 1.
	StartingPayment int

	// Payment replaces the computed level payment of a french schedule.
	Payment decimal.Decimal

	Currency string
}

// GenerateAmortizationSchedule returns one row per payment. The last row
// absorbs rounding so the final balance is exactly zero.
func GenerateAmortizationSchedule(params ScheduleParams) ([]AmortizationEntry, error) {
	return schedule(params, 0)
}

// schedule numbers rows from offset+1 and dates them from StartDate, so a
// re-anchored loan keeps its original payment calendar.
func schedule(params ScheduleParams, offset int) ([]AmortizationEntry, error) {
	if err := checkTerms(params.Principal, params.AnnualRate, params.TotalPayments, params.Frequency); err != nil {
		return nil, err
	}
	kind := params.Amortization
	if kind == "" {
		kind = model.AmortizationFrench
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown amortization type %q", ErrInvalidInput, kind)
	}
	first := params.StartingPayment
	if first == 0 {
		first = 1
	}
	if first < 1 || first > params.TotalPayments {
		return nil, fmt.Errorf("%w: starting payment %d outside 1..%d", ErrInvalidInput, params.StartingPayment, params.TotalPayments)
	}
	if params.Payment.IsNegative() {
		return nil, fmt.Errorf("%w: payment %s is negative", ErrInvalidInput, params.Payment)
	}
	code := currency.Normalize(params.Currency)
	if !currency.Exact(params.Principal, code) {
		return nil, fmt.Errorf("%w: principal %s has more than %d decimal places", ErrInvalidInput, params.Principal, currency.Precision(code))
	}

	rate := periodicRate(params.AnnualRate, params.Frequency)
	p := newPlan(kind, params.Principal, rate, params.TotalPayments, currency.Precision(code), params.Payment)

	rows := make([]AmortizationEntry, 0, params.TotalPayments-first+1)
	if params.Principal.IsZero() {
		// nothing owed: one zero row per scheduled payment
		for k := first; k <= params.TotalPayments; k++ {
			rows = append(rows, AmortizationEntry{
				Number:    offset + k,
				Date:      params.Frequency.Advance(params.StartDate, offset+k),
				Payment:   zero,
				Principal: zero,
				Interest:  zero,
				Balance:   zero,
			})
		}
		return rows, nil
	}
	p.run(params.Principal, params.TotalPayments, func(k int, r row) bool {
		if k >= first {
			rows = append(rows, AmortizationEntry{
				Number:    offset + k,
				Date:      params.Frequency.Advance(params.StartDate, offset+k),
				Payment:   r.payment,
				Principal: r.principal,
				Interest:  r.interest,
				Balance:   r.balance,
			})
		}
		return true
	})
	return rows, nil
}

// Totals sums the payment, principal and interest columns of rows.
func Totals(rows []AmortizationEntry) (paid, principal, interest decimal.Decimal) {
	for _, r := range rows {
		paid = paid.Add(r.Payment)
		principal = principal.Add(r.Principal)
		interest = interest.Add(r.Interest)
	}
	return paid, principal, interest
}
