// Package loan computes payments, amortization schedules, and early repayment
// and rate scenarios, and tracks the progress of a model.Loan.
package loan

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/model"
)

// ErrInvalidInput is wrapped by every rejected set of loan terms.
var ErrInvalidInput = errors.New("invalid loan input")

// workPlaces is the precision carried by periodic rates and powers.
// Only final outputs are rounded to a currency.
const workPlaces = 24

var (
	zero    = decimal.Zero
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

func checkTerms(principal, annualRate decimal.Decimal, totalPayments int, freq model.PaymentFrequency) error {
	switch {
	case totalPayments <= 0:
		return fmt.Errorf("%w: total payments must be positive, got %d", ErrInvalidInput, totalPayments)
	case principal.IsNegative():
		return fmt.Errorf("%w: principal %s is negative", ErrInvalidInput, principal)
	case annualRate.IsNegative():
		return fmt.Errorf("%w: annual rate %s is negative", ErrInvalidInput, annualRate)
	case !freq.Valid():
		return fmt.Errorf("%w: unknown payment frequency %q", ErrInvalidInput, freq)
	}
	return nil
}

// periodicRate converts a percent annual rate to the rate per payment period.
func periodicRate(annualRate decimal.Decimal, freq model.PaymentFrequency) decimal.Decimal {
	return annualRate.DivRound(hundred.Mul(decimal.NewFromInt(freq.PeriodsPerYear())), workPlaces)
}

// pow raises base to n by squaring, rounding every product to workPlaces so
// long terms do not grow the digit count.
func pow(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(workPlaces)
		}
		base = base.Mul(base).Round(workPlaces)
		n >>= 1
	}
	return result
}

// annuity is the level payment that clears balance in n periods at rate r.
func annuity(balance, r decimal.Decimal, n int, places int32) decimal.Decimal {
	if r.IsZero() {
		return balance.DivRound(decimal.NewFromInt(int64(n)), places)
	}
	f := pow(one.Add(r), n)
	return balance.Mul(r).Mul(f).DivRound(f.Sub(one), workPlaces).Round(places)
}

// plan holds what an amortization style keeps fixed between rows.
type plan struct {
	kind    model.AmortizationType
	rate    decimal.Decimal
	places  int32
	payment decimal.Decimal // french
	part    decimal.Decimal // german principal share
}

func newPlan(kind model.AmortizationType, balance, rate decimal.Decimal, n int, places int32, payment decimal.Decimal) plan {
	p := plan{kind: kind, rate: rate, places: places}
	switch kind {
	case model.AmortizationGerman:
		p.part = balance.DivRound(decimal.NewFromInt(int64(n)), places)
	case model.AmortizationAmerican:
	default:
		p.kind = model.AmortizationFrench
		p.payment = payment
		if p.payment.IsZero() {
			p.payment = annuity(balance, rate, n, places)
		}
	}
	return p
}

// step splits one payment against the opening balance. The last row takes
// whatever principal is left.
func (p plan) step(balance decimal.Decimal, last bool) (payment, principal, interest decimal.Decimal) {
	interest = balance.Mul(p.rate).Round(p.places)
	switch {
	case last:
		principal = balance
	case p.kind == model.AmortizationGerman:
		principal = decimal.Min(p.part, balance)
	case p.kind == model.AmortizationAmerican:
		principal = zero
	default:
		principal = decimal.Min(p.payment.Sub(interest), balance)
	}
	return principal.Add(interest), principal, interest
}

type row struct {
	payment, principal, interest, balance decimal.Decimal
}

// run iterates at most n rows from balance, stopping once it reaches zero.
// visit returns false to stop early.
func (p plan) run(balance decimal.Decimal, n int, visit func(k int, r row) bool) {
	for k := 1; k <= n && balance.IsPositive(); k++ {
		payment, principal, interest := p.step(balance, k == n)
		balance = balance.Sub(principal)
		if !visit(k, row{payment: payment, principal: principal, interest: interest, balance: balance}) {
			return
		}
	}
}

// CalculatePayment returns the level payment for a fully amortizing loan,
// rounded to cents. annualRate is a percentage.
func CalculatePayment(principal, annualRate decimal.Decimal, totalPayments int, freq model.PaymentFrequency) (decimal.Decimal, error) {
	return PaymentIn(principal, annualRate, totalPayments, freq, currency.Default)
}

// PaymentIn is CalculatePayment rounded to the minor unit of code.
func PaymentIn(principal, annualRate decimal.Decimal, totalPayments int, freq model.PaymentFrequency, code string) (decimal.Decimal, error) {
	if err := checkTerms(principal, annualRate, totalPayments, freq); err != nil {
		return zero, err
	}
	return annuity(principal, periodicRate(annualRate, freq), totalPayments, currency.Precision(code)), nil
}

// RemainingBalance returns the balance left after paymentsMade level payments.
// It walks the same rows as GenerateAmortizationSchedule.
func RemainingBalance(principal, annualRate decimal.Decimal, totalPayments, paymentsMade int, freq model.PaymentFrequency) (decimal.Decimal, error) {
	if err := checkTerms(principal, annualRate, totalPayments, freq); err != nil {
		return zero, err
	}
	if paymentsMade < 0 {
		return zero, fmt.Errorf("%w: payments made %d is negative", ErrInvalidInput, paymentsMade)
	}
	if paymentsMade == 0 {
		return principal, nil
	}
	if paymentsMade >= totalPayments {
		return zero, nil
	}
	places := currency.Precision(currency.Default)
	rate := periodicRate(annualRate, freq)
	p := newPlan(model.AmortizationFrench, principal, rate, totalPayments, places, zero)
	balance := principal
	p.run(principal, totalPayments, func(k int, r row) bool {
		balance = r.balance
		return k < paymentsMade
	})
	return balance, nil
}
