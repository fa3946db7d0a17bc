package loan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/model"
)

// ErrPaidOff is returned when recording a payment on a finished loan.
var ErrPaidOff = errors.New("loan is paid off")

// Validate checks a tracked loan's terms.
func Validate(l model.Loan) error {
	var problems []string
	if strings.TrimSpace(l.Name) == "" {
		problems = append(problems, "name is required")
	}
	if l.Type != "" && !l.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown loan type %q", l.Type))
	}
	if l.RateType != "" && !l.RateType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown rate type %q", l.RateType))
	}
	if !l.Frequency.Valid() {
		problems = append(problems, fmt.Sprintf("unknown payment frequency %q", l.Frequency))
	}
	if l.Amortization != "" && !l.Amortization.Valid() {
		problems = append(problems, fmt.Sprintf("unknown amortization type %q", l.Amortization))
	}
	if !l.Principal.IsPositive() {
		problems = append(problems, "principal must be positive")
	}
	if l.AnnualRate.IsNegative() {
		problems = append(problems, "annual rate is negative")
	}
	// a re-anchored loan that was paid off early can have no term left
	if l.TotalPayments <= 0 && l.Anchor == nil {
		problems = append(problems, "total payments must be positive")
	}
	if l.PaymentsMade < 0 || l.PaymentsMade > l.TotalPayments {
		problems = append(problems, fmt.Sprintf("payments made %d outside 0..%d", l.PaymentsMade, l.TotalPayments))
	}
	if l.Payment.IsNegative() {
		problems = append(problems, "payment is negative")
	}
	if l.StartDate.IsZero() {
		problems = append(problems, "start date is required")
	}
	if !currency.Valid(l.Currency) {
		problems = append(problems, fmt.Sprintf("unknown currency %q", l.Currency))
	}
	if a := l.Anchor; a != nil && (a.Balance.IsNegative() || a.PaymentsMade < 0 || a.PaymentsMade > l.PaymentsMade) {
		problems = append(problems, "anchor is out of range")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: loan %q: %s", ErrInvalidInput, l.Name, strings.Join(problems, "; "))
	}
	return nil
}

// terms returns where the current schedule starts: the anchor if set,
// otherwise the original principal at payment zero.
func terms(l model.Loan) (balance decimal.Decimal, made int) {
	if l.Anchor != nil {
		return l.Anchor.Balance, l.Anchor.PaymentsMade
	}
	return l.Principal, 0
}

// Schedule returns the loan's rows under its current terms, numbered and
// dated against the original start date.
func Schedule(l model.Loan) ([]AmortizationEntry, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}
	balance, made := terms(l)
	left := l.TotalPayments - made
	if left <= 0 || !balance.IsPositive() {
		return nil, nil
	}
	params := ScheduleParams{
		Principal:     balance,
		AnnualRate:    l.AnnualRate,
		TotalPayments: left,
		Frequency:     l.Frequency,
		Amortization:  l.Amortization,
		StartDate:     l.StartDate,
		Currency:      l.Currency,
	}
	if l.Amortization == "" || l.Amortization == model.AmortizationFrench {
		params.Payment = l.Payment
	}
	return schedule(params, made)
}

// OutstandingBalance returns what is still owed on a tracked loan after the payments made.
func OutstandingBalance(l model.Loan) (decimal.Decimal, error) {
	rows, err := Schedule(l)
	if err != nil {
		return zero, err
	}
	if l.PaymentsMade >= l.TotalPayments {
		return zero, nil
	}
	balance, _ := terms(l)
	for _, r := range rows {
		if r.Number > l.PaymentsMade {
			break
		}
		balance = r.Balance
	}
	return balance, nil
}

// RemainingPayments returns the scheduled payments still due.
func RemainingPayments(l model.Loan) int {
	return max(l.TotalPayments-l.PaymentsMade, 0)
}

// Progress returns the percentage of scheduled payments made.
func Progress(l model.Loan) decimal.Decimal {
	if l.TotalPayments <= 0 {
		return hundred
	}
	made := min(l.PaymentsMade, l.TotalPayments)
	return decimal.NewFromInt(int64(made)).Mul(hundred).DivRound(decimal.NewFromInt(int64(l.TotalPayments)), 2)
}

// TotalInterest sums interest over the loan's current terms, from the last
// re-anchoring or the start.
func TotalInterest(l model.Loan) (decimal.Decimal, error) {
	rows, err := Schedule(l)
	if err != nil {
		return zero, err
	}
	_, _, interest := Totals(rows)
	return interest, nil
}

// RemainingInterest sums interest on the payments still due.
func RemainingInterest(l model.Loan) (decimal.Decimal, error) {
	rows, err := Schedule(l)
	if err != nil {
		return zero, err
	}
	interest := zero
	for _, r := range rows {
		if r.Number > l.PaymentsMade {
			interest = interest.Add(r.Interest)
		}
	}
	return interest, nil
}

// NextPaymentDate returns the due date of the next payment, false once paid off.
func NextPaymentDate(l model.Loan) (time.Time, bool) {
	if l.PaymentsMade >= l.TotalPayments {
		return time.Time{}, false
	}
	return l.Frequency.Advance(l.StartDate, l.PaymentsMade+1), true
}

// RecordPayment counts one scheduled payment.
func RecordPayment(l *model.Loan) error {
	if l.PaymentsMade >= l.TotalPayments {
		return fmt.Errorf("recording payment on %q: %w", l.Name, ErrPaidOff)
	}
	l.PaymentsMade++
	return nil
}

// UpdateRate moves a loan to a new annual rate. The remaining balance is
// re-amortized over the remaining term.
func UpdateRate(l *model.Loan, annualRate decimal.Decimal) error {
	if annualRate.IsNegative() {
		return fmt.Errorf("%w: annual rate %s is negative", ErrInvalidInput, annualRate)
	}
	balance, err := OutstandingBalance(*l)
	if err != nil {
		return err
	}
	l.Anchor = &model.LoanAnchor{Balance: balance, PaymentsMade: l.PaymentsMade}
	l.AnnualRate = annualRate
	left := RemainingPayments(*l)
	if left == 0 || !balance.IsPositive() {
		return nil
	}
	p := newPlan(l.Amortization, balance, periodicRate(annualRate, l.Frequency), left, currency.Precision(l.Currency), zero)
	first, _, _ := p.step(balance, left == 1)
	l.Payment = first
	return nil
}

// ApplyEarlyRepayment pays amount off the loan now and re-anchors its terms.
func ApplyEarlyRepayment(l *model.Loan, amount, penaltyPercentage decimal.Decimal, mode RepaymentMode) (EarlyRepaymentResult, error) {
	balance, err := OutstandingBalance(*l)
	if err != nil {
		return EarlyRepaymentResult{}, err
	}
	left := RemainingPayments(*l)
	if left == 0 || !balance.IsPositive() {
		return EarlyRepaymentResult{}, fmt.Errorf("repaying %q: %w", l.Name, ErrPaidOff)
	}
	params := EarlyRepaymentParams{
		RemainingBalance:  balance,
		RemainingPayments: left,
		AnnualRate:        l.AnnualRate,
		Frequency:         l.Frequency,
		Amortization:      l.Amortization,
		Amount:            amount,
		PenaltyPercentage: penaltyPercentage,
		Mode:              mode,
		Currency:          l.Currency,
	}
	if l.Amortization == "" || l.Amortization == model.AmortizationFrench {
		params.Payment = l.Payment
	}
	res, err := CalculateEarlyRepayment(params)
	if err != nil {
		return res, err
	}
	l.Anchor = &model.LoanAnchor{Balance: res.NewBalance, PaymentsMade: l.PaymentsMade}
	l.TotalPayments = l.PaymentsMade + res.NewRemainingPayments
	l.Payment = res.NewPayment
	return res, nil
}
