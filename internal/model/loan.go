package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/calendar"
)

// LoanType describes what a loan finances.
type LoanType string

const (
	LoanMortgage LoanType = "mortgage"
	LoanPersonal LoanType = "personal"
	LoanAuto     LoanType = "auto"
	LoanStudent  LoanType = "student"
	LoanBusiness LoanType = "business"
	LoanOther    LoanType = "other"
)

var loanTypeNames = map[LoanType]string{
	LoanMortgage: "Mortgage",
	LoanPersonal: "Personal Loan",
	LoanAuto:     "Auto Loan",
	LoanStudent:  "Student Loan",
	LoanBusiness: "Business Loan",
	LoanOther:    "Other",
}

// Valid reports whether t is a known loan type.
func (t LoanType) Valid() bool {
	_, ok := loanTypeNames[t]
	return ok
}

// DisplayName returns a human label.
func (t LoanType) DisplayName() string {
	if n, ok := loanTypeNames[t]; ok {
		return n
	}
	return string(t)
}

// RateType says whether the interest rate can move.
type RateType string

const (
	RateFixed    RateType = "fixed"
	RateVariable RateType = "variable"
	RateMixed    RateType = "mixed"
)

// Valid reports whether r is a known rate type.
func (r RateType) Valid() bool {
	return r == RateFixed || r == RateVariable || r == RateMixed
}

// PaymentFrequency is how often a loan is paid.
type PaymentFrequency string

const (
	PayWeekly     PaymentFrequency = "weekly"
	PayBiweekly   PaymentFrequency = "biweekly"
	PayMonthly    PaymentFrequency = "monthly"
	PayQuarterly  PaymentFrequency = "quarterly"
	PaySemiannual PaymentFrequency = "semiannual"
	PayAnnual     PaymentFrequency = "annual"
)

type frequencyInfo struct {
	perYear int64
	days    int // period length when day-based
	months  int // period length when month-based
	name    string
}

var paymentFrequencies = map[PaymentFrequency]frequencyInfo{
	PayWeekly:     {perYear: 52, days: 7, name: "Weekly"},
	PayBiweekly:   {perYear: 26, days: 14, name: "Every two weeks"},
	PayMonthly:    {perYear: 12, months: 1, name: "Monthly"},
	PayQuarterly:  {perYear: 4, months: 3, name: "Quarterly"},
	PaySemiannual: {perYear: 2, months: 6, name: "Twice a year"},
	PayAnnual:     {perYear: 1, months: 12, name: "Annually"},
}

// Valid reports whether f is a known payment frequency.
func (f PaymentFrequency) Valid() bool {
	_, ok := paymentFrequencies[f]
	return ok
}

// PeriodsPerYear returns the number of payments in a year, 0 if unknown.
func (f PaymentFrequency) PeriodsPerYear() int64 {
	return paymentFrequencies[f].perYear
}

// DisplayName returns a human label.
func (f PaymentFrequency) DisplayName() string {
	if info, ok := paymentFrequencies[f]; ok {
		return info.name
	}
	return string(f)
}

// Advance returns the date n periods after start. Month-based periods are
// computed from start each time so a 31st anchor survives short months.
func (f PaymentFrequency) Advance(start time.Time, n int) time.Time {
	info := paymentFrequencies[f]
	if info.months > 0 {
		return calendar.AddMonths(start, n*info.months)
	}
	return calendar.AddDays(start, n*info.days)
}

// AmortizationType selects how each payment splits into interest and principal.
type AmortizationType string

const (
	// AmortizationFrench keeps the payment constant; the principal share grows.
	AmortizationFrench AmortizationType = "french"
	// AmortizationGerman keeps the principal share constant; payments shrink.
	AmortizationGerman AmortizationType = "german"
	// AmortizationAmerican pays interest only and the whole principal at the end.
	AmortizationAmerican AmortizationType = "american"
)

// Valid reports whether a is a known amortization type.
func (a AmortizationType) Valid() bool {
	return a == AmortizationFrench || a == AmortizationGerman || a == AmortizationAmerican
}

// Loan is a tracked loan. Remaining balance and the rest of its progress are
// derived by the loan package, not stored.
type Loan struct {
	ID            string
	Name          string
	Type          LoanType
	RateType      RateType
	Frequency     PaymentFrequency
	Amortization  AmortizationType
	Principal     decimal.Decimal // original amount borrowed
	AnnualRate    decimal.Decimal // percent; 3.5 means 3.5 %
	APR           *decimal.Decimal
	TotalPayments int
	Payment       decimal.Decimal // current scheduled payment
	StartDate     time.Time
	Existing      bool // tracked loan that was already running when added
	PaymentsMade  int
	Currency      string

	// Anchor is set once the terms change after a rate update or early
	// repayment; nil means the original terms still apply.
	Anchor *LoanAnchor
}

// LoanAnchor is the point from which a loan's current terms run.
type LoanAnchor struct {
	Balance      decimal.Decimal
	PaymentsMade int
}
