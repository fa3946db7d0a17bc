// Package currency resolves ISO 4217 minor-unit precision and formats amounts.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Default is the currency assumed when a record carries no code.
const Default = "USD"

// fallbackPrecision applies to codes go-money does not know.
const fallbackPrecision = 2

// Normalize upper-cases and trims a code, substituting Default for blanks.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Default
	}
	return code
}

// Valid reports whether code is a known ISO 4217 currency.
func Valid(code string) bool {
	return money.GetCurrency(Normalize(code)) != nil
}

// Precision returns the number of minor-unit digits for code (2 for USD, 0 for JPY).
func Precision(code string) int32 {
	cur := money.GetCurrency(Normalize(code))
	if cur == nil {
		return fallbackPrecision
	}
	return int32(cur.Fraction)
}

// Round rounds amount half away from zero to the minor unit of code.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(Precision(code))
}

// Exact reports whether amount needs no rounding in code.
func Exact(amount decimal.Decimal, code string) bool {
	return amount.Equal(Round(amount, code))
}

// Format renders amount with the currency's symbol and separators ("$1,234.50").
func Format(amount decimal.Decimal, code string) string {
	code = Normalize(code)
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(fallbackPrecision) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// String renders amount with exactly the minor-unit digits of code, no symbol.
func String(amount decimal.Decimal, code string) string {
	return amount.StringFixed(Precision(code))
}
