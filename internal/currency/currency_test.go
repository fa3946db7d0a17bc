package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestPrecision(t *testing.T) {
	tests := []struct {
		code string
		want int32
	}{
		{"USD", 2},
		{"eur", 2},
		{"JPY", 0},
		{"BHD", 3},
		{"", 2},
		{"XXX-unknown", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Precision(tt.code), "Precision(%q)", tt.code)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"1.005", "USD", "1.01"},
		{"1.004", "USD", "1"},
		{"2.675", "EUR", "2.68"},
		{"1234.5", "JPY", "1235"},
		{"0.0005", "BHD", "0.001"},
	}
	for _, tt := range tests {
		got := Round(dec(tt.amount), tt.code)
		assert.True(t, dec(tt.want).Equal(got), "Round(%s, %s) = %s", tt.amount, tt.code, got)
	}
}

func TestExact(t *testing.T) {
	assert.True(t, Exact(dec("52.30"), "USD"))
	assert.False(t, Exact(dec("52.301"), "USD"))
	assert.False(t, Exact(dec("10.5"), "JPY"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "USD", Normalize(""))
	assert.Equal(t, "GBP", Normalize(" gbp "))
	assert.True(t, Valid("chf"))
	assert.False(t, Valid("ZZZ"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.50", Format(dec("1234.5"), "USD"))
	assert.Equal(t, "52.30 ZZZ", Format(dec("52.3"), "ZZZ"))
	assert.Equal(t, "52.30", String(dec("52.3"), "USD"))
	assert.Equal(t, "1235", String(dec("1234.5"), "JPY"))
}
