package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/model"
)

// LoansHeader is the CSV header for loans.csv.
const LoansHeader = "loan_id,name,type,rate_type,frequency,amortization,principal,annual_rate,apr,total_payments,payment,start_date,existing,payments_made,currency,anchor_balance,anchor_payments"

const (
	loanFields      = 17
	colLoanID       = 0
	colLoanName     = 1
	colLoanType     = 2
	colRateType     = 3
	colLoanFreq     = 4
	colAmortization = 5
	colPrincipal    = 6
	colRate         = 7
	colAPR          = 8
	colTotal        = 9
	colPayment      = 10
	colLoanStart    = 11
	colExisting     = 12
	colMade         = 13
	colLoanCurrency = 14
	colAnchorBal    = 15
	colAnchorMade   = 16
)

// ReadLoans reads loans.csv.
func ReadLoans(r io.Reader) ([]model.Loan, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = loanFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading loans CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var loans []model.Loan
	for i, rec := range records[1:] {
		l, err := UnmarshalLoan(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		loans = append(loans, l)
	}
	return loans, nil
}

// WriteLoans writes loans.csv.
func WriteLoans(w io.Writer, loans []model.Loan) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(LoansHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, l := range loans {
		if err := cw.Write(MarshalLoan(l)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLoan converts a Loan to a CSV row.
func MarshalLoan(l model.Loan) []string {
	row := make([]string, loanFields)
	row[colLoanID] = l.ID
	row[colLoanName] = l.Name
	row[colLoanType] = string(l.Type)
	row[colRateType] = string(l.RateType)
	row[colLoanFreq] = string(l.Frequency)
	row[colAmortization] = string(l.Amortization)
	row[colPrincipal] = formatAmount(l.Principal)
	row[colRate] = l.AnnualRate.String()
	if l.APR != nil {
		row[colAPR] = l.APR.String()
	}
	row[colTotal] = strconv.Itoa(l.TotalPayments)
	row[colPayment] = formatAmount(l.Payment)
	row[colLoanStart] = calendar.Format(l.StartDate)
	row[colExisting] = strconv.FormatBool(l.Existing)
	row[colMade] = strconv.Itoa(l.PaymentsMade)
	row[colLoanCurrency] = l.Currency
	if l.Anchor != nil {
		row[colAnchorBal] = formatAmount(l.Anchor.Balance)
		row[colAnchorMade] = strconv.Itoa(l.Anchor.PaymentsMade)
	}
	return row
}

// UnmarshalLoan converts a CSV row to a Loan.
func UnmarshalLoan(record []string) (model.Loan, error) {
	if len(record) != loanFields {
		return model.Loan{}, fmt.Errorf("expected %d fields, got %d", loanFields, len(record))
	}

	l := model.Loan{
		ID:           record[colLoanID],
		Name:         record[colLoanName],
		Type:         model.LoanType(record[colLoanType]),
		RateType:     model.RateType(record[colRateType]),
		Frequency:    model.PaymentFrequency(record[colLoanFreq]),
		Amortization: model.AmortizationType(record[colAmortization]),
		Currency:     record[colLoanCurrency],
	}

	var err error
	if l.Principal, err = decimalField("principal", record[colPrincipal]); err != nil {
		return model.Loan{}, err
	}
	if l.AnnualRate, err = decimalField("annual_rate", record[colRate]); err != nil {
		return model.Loan{}, err
	}
	if l.Payment, err = decimalField("payment", record[colPayment]); err != nil {
		return model.Loan{}, err
	}
	if s := record[colAPR]; s != "" {
		apr, err := decimalField("apr", s)
		if err != nil {
			return model.Loan{}, err
		}
		l.APR = &apr
	}
	if l.TotalPayments, err = atoi(record[colTotal]); err != nil {
		return model.Loan{}, fmt.Errorf("parsing total_payments: %w", err)
	}
	if l.PaymentsMade, err = atoi(record[colMade]); err != nil {
		return model.Loan{}, fmt.Errorf("parsing payments_made: %w", err)
	}
	if s := record[colLoanStart]; s != "" {
		if l.StartDate, err = calendar.Parse(s); err != nil {
			return model.Loan{}, err
		}
	}
	if s := record[colExisting]; s != "" {
		if l.Existing, err = strconv.ParseBool(s); err != nil {
			return model.Loan{}, fmt.Errorf("parsing existing %q: %w", s, err)
		}
	}
	if record[colAnchorBal] != "" {
		bal, err := decimalField("anchor_balance", record[colAnchorBal])
		if err != nil {
			return model.Loan{}, err
		}
		made, err := atoi(record[colAnchorMade])
		if err != nil {
			return model.Loan{}, fmt.Errorf("parsing anchor_payments: %w", err)
		}
		l.Anchor = &model.LoanAnchor{Balance: bal, PaymentsMade: made}
	}
	return l, nil
}

func decimalField(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", name, s, err)
	}
	return d, nil
}
