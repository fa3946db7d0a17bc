package loan

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/model"
)

// RepaymentMode decides what a partial early repayment shrinks.
type RepaymentMode string

const (
	// ReduceTerm keeps the payment and ends the loan sooner.
	ReduceTerm RepaymentMode = "reduce-term"
	// ReducePayment keeps the end date and lowers the payment.
	ReducePayment RepaymentMode = "reduce-payment"
)

// Valid reports whether m is a known mode. The empty mode means ReduceTerm.
func (m RepaymentMode) Valid() bool {
	return m == "" || m == ReduceTerm || m == ReducePayment
}

// EarlyRepaymentParams describes an extra payment against an outstanding balance.
type EarlyRepaymentParams struct {
	RemainingBalance  decimal.Decimal
	RemainingPayments int
	AnnualRate        decimal.Decimal // percent
	Frequency         model.PaymentFrequency
	Amortization      model.AmortizationType // defaults to french
	Amount            decimal.Decimal
	PenaltyPercentage decimal.Decimal // percent of Amount
	Mode              RepaymentMode

	// Payment is the current level payment; zero computes it from the
	// remaining balance and term.
	Payment decimal.Decimal

	Currency string
}

// EarlyRepaymentResult compares the schedule before and after the repayment.
type EarlyRepaymentResult struct {
	SavedInterest        decimal.Decimal
	PenaltyAmount        decimal.Decimal
	NetSavings           decimal.Decimal
	NewRemainingPayments int
	NewPayment           decimal.Decimal
	NewBalance           decimal.Decimal
	FullPayoff           bool
}

// CalculateEarlyRepayment reports the interest an extra payment saves.
func CalculateEarlyRepayment(params EarlyRepaymentParams) (EarlyRepaymentResult, error) {
	var res EarlyRepaymentResult
	if err := checkTerms(params.RemainingBalance, params.AnnualRate, params.RemainingPayments, params.Frequency); err != nil {
		return res, err
	}
	kind := params.Amortization
	if kind == "" {
		kind = model.AmortizationFrench
	}
	switch {
	case !kind.Valid():
		return res, fmt.Errorf("%w: unknown amortization type %q", ErrInvalidInput, kind)
	case !params.Amount.IsPositive():
		return res, fmt.Errorf("%w: repayment amount must be positive, got %s", ErrInvalidInput, params.Amount)
	case params.PenaltyPercentage.IsNegative():
		return res, fmt.Errorf("%w: penalty percentage %s is negative", ErrInvalidInput, params.PenaltyPercentage)
	case params.Payment.IsNegative():
		return res, fmt.Errorf("%w: payment %s is negative", ErrInvalidInput, params.Payment)
	case !params.Mode.Valid():
		return res, fmt.Errorf("%w: unknown repayment mode %q", ErrInvalidInput, params.Mode)
	}

	places := currency.Precision(params.Currency)
	rate := periodicRate(params.AnnualRate, params.Frequency)
	balance := params.RemainingBalance
	n := params.RemainingPayments

	old := newPlan(kind, balance, rate, n, places, params.Payment)
	oldInterest, _ := totalInterest(old, balance, n)

	amount := params.Amount.Round(places)
	res.PenaltyAmount = amount.Mul(params.PenaltyPercentage).Div(hundred).Round(places)

	if amount.GreaterThanOrEqual(balance) {
		res.FullPayoff = true
		res.SavedInterest = oldInterest
		res.NetSavings = oldInterest.Sub(res.PenaltyAmount)
		res.NewPayment = zero
		res.NewBalance = zero
		return res, nil
	}

	res.NewBalance = balance.Sub(amount)
	var next plan
	switch {
	case kind == model.AmortizationAmerican, params.Mode == ReducePayment:
		next = newPlan(kind, res.NewBalance, rate, n, places, zero)
	default:
		// keep the payment (french) or the principal share (german)
		next = old
	}
	newInterest, rows := totalInterest(next, res.NewBalance, n)
	res.NewRemainingPayments = rows
	res.SavedInterest = oldInterest.Sub(newInterest)
	res.NetSavings = res.SavedInterest.Sub(res.PenaltyAmount)
	res.NewPayment = next.payment
	if next.kind != model.AmortizationFrench {
		first, _, _ := next.step(res.NewBalance, rows == 1)
		res.NewPayment = first
	}
	return res, nil
}

func totalInterest(p plan, balance decimal.Decimal, n int) (decimal.Decimal, int) {
	interest := zero
	count := 0
	p.run(balance, n, func(k int, r row) bool {
		interest = interest.Add(r.interest)
		count = k
		return true
	})
	return interest, count
}

// RateScenario is the outcome of refinancing at Rate.
type RateScenario struct {
	Rate           decimal.Decimal
	Payment        decimal.Decimal
	TotalInterest  decimal.Decimal
	PaymentChange  decimal.Decimal // versus the current rate
	InterestChange decimal.Decimal
}

// CompareRates prices the remaining balance at each rate against currentRate.
func CompareRates(balance decimal.Decimal, remainingPayments int, freq model.PaymentFrequency, currentRate decimal.Decimal, rates []decimal.Decimal) ([]RateScenario, error) {
	current, err := scenario(balance, remainingPayments, freq, currentRate)
	if err != nil {
		return nil, err
	}
	out := make([]RateScenario, 0, len(rates))
	for _, rate := range rates {
		s, err := scenario(balance, remainingPayments, freq, rate)
		if err != nil {
			return nil, err
		}
		s.PaymentChange = s.Payment.Sub(current.Payment)
		s.InterestChange = s.TotalInterest.Sub(current.TotalInterest)
		out = append(out, s)
	}
	return out, nil
}

func scenario(balance decimal.Decimal, n int, freq model.PaymentFrequency, rate decimal.Decimal) (RateScenario, error) {
	if err := checkTerms(balance, rate, n, freq); err != nil {
		return RateScenario{}, err
	}
	places := currency.Precision(currency.Default)
	p := newPlan(model.AmortizationFrench, balance, periodicRate(rate, freq), n, places, zero)
	interest, _ := totalInterest(p, balance, n)
	return RateScenario{Rate: rate, Payment: p.payment, TotalInterest: interest}, nil
}
