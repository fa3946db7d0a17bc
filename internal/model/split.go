package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSplit changes the share count of a holding. It produces no ledger
// entries; cost basis stays where it is.
type StockSplit struct {
	AccountID   string
	Date        time.Time
	Numerator   int64 // new shares
	Denominator int64 // per old shares
}

// Ratio returns Numerator/Denominator.
func (s StockSplit) Ratio() decimal.Decimal {
	return decimal.NewFromInt(s.Numerator).Div(decimal.NewFromInt(s.Denominator))
}

// Apply returns the share count after the split.
func (s StockSplit) Apply(shares decimal.Decimal) decimal.Decimal {
	return shares.Mul(decimal.NewFromInt(s.Numerator)).Div(decimal.NewFromInt(s.Denominator))
}
