package accounts

import (
	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/model"
)

// OpeningBalanceEquityID is the system equity account opening balances post against.
const OpeningBalanceEquityID = "opening-balance-equity"

// OpeningBalanceEquity returns the system account in code.
func OpeningBalanceEquity(code string) model.Account {
	return model.Account{
		ID:       OpeningBalanceEquityID,
		Number:   "3900",
		Name:     "Opening Balance Equity",
		Class:    model.ClassEquity,
		Type:     model.TypeOpeningBalance,
		Currency: currency.Normalize(code),
		Active:   true,
		System:   true,
	}
}

// DefaultChart returns the starter chart of accounts for a profile, every
// account in the given currency.
func DefaultChart(profile, code string) []model.Account {
	var chart []model.Account
	switch profile {
	case "minimal":
		chart = minimalChart()
	default:
		chart = personalChart()
	}
	code = currency.Normalize(code)
	for i := range chart {
		chart[i].Currency = code
		chart[i].Active = true
	}
	return append(chart, OpeningBalanceEquity(code))
}

func minimalChart() []model.Account {
	return []model.Account{
		{ID: "checking", Number: "1010", Name: "Checking", Class: model.ClassAsset, Type: model.TypeBank},
		{ID: "credit-card", Number: "2010", Name: "Credit Card", Class: model.ClassLiability, Type: model.TypeCreditCard},
		{ID: "income", Number: "4090", Name: "Other Income", Class: model.ClassIncome, Type: model.TypeOtherIncome},
		{ID: "expenses", Number: "5090", Name: "Other Expenses", Class: model.ClassExpense, Type: model.TypeOtherExpense},
	}
}

func personalChart() []model.Account {
	return []model.Account{
		{ID: "checking", Number: "1010", Name: "Checking", Class: model.ClassAsset, Type: model.TypeBank},
		{ID: "savings", Number: "1020", Name: "Savings", Class: model.ClassAsset, Type: model.TypeSavings},
		{ID: "cash", Number: "1030", Name: "Cash", Class: model.ClassAsset, Type: model.TypeCash},
		{ID: "brokerage", Number: "1100", Name: "Brokerage", Class: model.ClassAsset, Type: model.TypeInvestment},
		{ID: "credit-card", Number: "2010", Name: "Credit Card", Class: model.ClassLiability, Type: model.TypeCreditCard},
		{ID: "mortgage", Number: "2100", Name: "Mortgage", Class: model.ClassLiability, Type: model.TypeMortgage},
		{ID: "salary", Number: "4010", Name: "Salary", Class: model.ClassIncome, Type: model.TypeSalary},
		{ID: "interest-income", Number: "4020", Name: "Interest Income", Class: model.ClassIncome, Type: model.TypeInterest},
		{ID: "dividends", Number: "4030", Name: "Dividends", Class: model.ClassIncome, Type: model.TypeDividend},
		{ID: "groceries", Number: "5010", Name: "Groceries", Class: model.ClassExpense, Type: model.TypeFood},
		{ID: "rent", Number: "5020", Name: "Rent", Class: model.ClassExpense, Type: model.TypeHousing},
		{ID: "utilities", Number: "5030", Name: "Utilities", Class: model.ClassExpense, Type: model.TypeUtilities},
		{ID: "transport", Number: "5040", Name: "Transport", Class: model.ClassExpense, Type: model.TypeTransport},
		{ID: "health", Number: "5050", Name: "Health", Class: model.ClassExpense, Type: model.TypeHealth},
		{ID: "entertainment", Number: "5060", Name: "Entertainment", Class: model.ClassExpense, Type: model.TypeEntertainment},
		{ID: "loan-interest", Number: "5070", Name: "Loan Interest", Class: model.ClassExpense, Type: model.TypeFees},
		{ID: "bank-fees", Number: "5080", Name: "Bank Fees", Class: model.ClassExpense, Type: model.TypeFees},
	}
}
