package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAccount is wrapped by Account.Validate failures.
var ErrInvalidAccount = errors.New("invalid account")

// AccountClass is the top-level accounting classification.
type AccountClass string

const (
	ClassAsset     AccountClass = "asset"
	ClassLiability AccountClass = "liability"
	ClassIncome    AccountClass = "income"
	ClassExpense   AccountClass = "expense"
	ClassEquity    AccountClass = "equity"
)

// Classes lists every account class in chart order.
var Classes = []AccountClass{ClassAsset, ClassLiability, ClassEquity, ClassIncome, ClassExpense}

// Valid reports whether c is one of the five classes.
func (c AccountClass) Valid() bool {
	switch c {
	case ClassAsset, ClassLiability, ClassIncome, ClassExpense, ClassEquity:
		return true
	}
	return false
}

// NormalSide is the entry type that increases an account of class c.
func (c AccountClass) NormalSide() EntryType {
	switch c {
	case ClassAsset, ClassExpense:
		return EntryDebit
	default:
		return EntryCredit
	}
}

// BalanceSheet reports whether c contributes to net worth.
func (c AccountClass) BalanceSheet() bool {
	return c == ClassAsset || c == ClassLiability
}

// AccountType is a sub-category within a class.
type AccountType string

const (
	TypeBank       AccountType = "bank"
	TypeCash       AccountType = "cash"
	TypeSavings    AccountType = "savings"
	TypeInvestment AccountType = "investment"
	TypeReceivable AccountType = "receivable"
	TypeProperty   AccountType = "property"
	TypeOtherAsset AccountType = "otherAsset"

	TypeCreditCard     AccountType = "creditCard"
	TypeLoan           AccountType = "loan"
	TypeMortgage       AccountType = "mortgage"
	TypePayable        AccountType = "payable"
	TypeOtherLiability AccountType = "otherLiability"

	TypeSalary      AccountType = "salary"
	TypeInterest    AccountType = "interest"
	TypeDividend    AccountType = "dividend"
	TypeGift        AccountType = "gift"
	TypeOtherIncome AccountType = "otherIncome"

	TypeFood          AccountType = "food"
	TypeHousing       AccountType = "housing"
	TypeTransport     AccountType = "transport"
	TypeUtilities     AccountType = "utilities"
	TypeHealth        AccountType = "health"
	TypeEntertainment AccountType = "entertainment"
	TypeShopping      AccountType = "shopping"
	TypeFees          AccountType = "fees"
	TypeOtherExpense  AccountType = "otherExpense"

	TypeOpeningBalance AccountType = "openingBalance"
	TypeRetained       AccountType = "retained"
	TypeOtherEquity    AccountType = "otherEquity"
)

type accountTypeInfo struct {
	class AccountClass
	name  string
}

var accountTypes = map[AccountType]accountTypeInfo{
	TypeBank:           {ClassAsset, "Bank"},
	TypeCash:           {ClassAsset, "Cash"},
	TypeSavings:        {ClassAsset, "Savings"},
	TypeInvestment:     {ClassAsset, "Investment"},
	TypeReceivable:     {ClassAsset, "Receivable"},
	TypeProperty:       {ClassAsset, "Property"},
	TypeOtherAsset:     {ClassAsset, "Other Asset"},
	TypeCreditCard:     {ClassLiability, "Credit Card"},
	TypeLoan:           {ClassLiability, "Loan"},
	TypeMortgage:       {ClassLiability, "Mortgage"},
	TypePayable:        {ClassLiability, "Payable"},
	TypeOtherLiability: {ClassLiability, "Other Liability"},
	TypeSalary:         {ClassIncome, "Salary"},
	TypeInterest:       {ClassIncome, "Interest"},
	TypeDividend:       {ClassIncome, "Dividends"},
	TypeGift:           {ClassIncome, "Gifts"},
	TypeOtherIncome:    {ClassIncome, "Other Income"},
	TypeFood:           {ClassExpense, "Food & Dining"},
	TypeHousing:        {ClassExpense, "Housing"},
	TypeTransport:      {ClassExpense, "Transport"},
	TypeUtilities:      {ClassExpense, "Utilities"},
	TypeHealth:         {ClassExpense, "Health"},
	TypeEntertainment:  {ClassExpense, "Entertainment"},
	TypeShopping:       {ClassExpense, "Shopping"},
	TypeFees:           {ClassExpense, "Fees & Charges"},
	TypeOtherExpense:   {ClassExpense, "Other Expense"},
	TypeOpeningBalance: {ClassEquity, "Opening Balance"},
	TypeRetained:       {ClassEquity, "Retained Earnings"},
	TypeOtherEquity:    {ClassEquity, "Other Equity"},
}

// Class returns the class t belongs to.
func (t AccountType) Class() (AccountClass, bool) {
	info, ok := accountTypes[t]
	return info.class, ok
}

// DisplayName returns a human label, or the raw value for unknown types.
func (t AccountType) DisplayName() string {
	if info, ok := accountTypes[t]; ok {
		return info.name
	}
	return string(t)
}

// DefaultType is the catch-all type of a class.
func DefaultType(c AccountClass) AccountType {
	switch c {
	case ClassAsset:
		return TypeOtherAsset
	case ClassLiability:
		return TypeOtherLiability
	case ClassIncome:
		return TypeOtherIncome
	case ClassExpense:
		return TypeOtherExpense
	default:
		return TypeOtherEquity
	}
}

// Account is a node in the chart of accounts. Its balance is derived from
// entries and is never stored on the record.
type Account struct {
	ID       string
	Name     string
	Number   string // optional grouping code
	Currency string // ISO 4217
	Class    AccountClass
	Type     AccountType
	Active   bool
	System   bool // built-in, cannot be edited or deleted
}

// NormalSide is the entry type that increases this account.
func (a Account) NormalSide() EntryType {
	return a.Class.NormalSide()
}

// Signed returns amount signed for this account: positive when the entry
// type matches the normal side.
func (a Account) Signed(t EntryType, amount decimal.Decimal) decimal.Decimal {
	if t == a.NormalSide() {
		return amount
	}
	return amount.Neg()
}

// Validate checks the fields a ledger relies on.
func (a Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidAccount)
	}
	if a.Name == "" {
		return fmt.Errorf("%w %s: missing name", ErrInvalidAccount, a.ID)
	}
	if !a.Class.Valid() {
		return fmt.Errorf("%w %s: unknown class %q", ErrInvalidAccount, a.ID, a.Class)
	}
	if a.Type != "" {
		class, ok := a.Type.Class()
		if !ok {
			return fmt.Errorf("%w %s: unknown type %q", ErrInvalidAccount, a.ID, a.Type)
		}
		if class != a.Class {
			return fmt.Errorf("%w %s: type %q belongs to %s, not %s", ErrInvalidAccount, a.ID, a.Type, class, a.Class)
		}
	}
	return nil
}
