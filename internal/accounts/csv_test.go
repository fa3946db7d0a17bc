package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: "checking", Number: "1010", Name: "Checking, Joint", Class: model.ClassAsset, Type: model.TypeBank, Currency: "USD", Active: true},
		{ID: "old-card", Name: "Old Card", Class: model.ClassLiability, Type: model.TypeCreditCard, Currency: "EUR"},
		OpeningBalanceEquity("USD"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadAccounts(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadAccounts_BlankFlags(t *testing.T) {
	in := Header + "\nrent,5020,Rent,expense,housing,USD,,\n"
	got, err := ReadAccounts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Active)
	assert.False(t, got[0].System)
}

func TestReadAccounts_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"short row", Header + "\nrent,5020,Rent\n"},
		{"bad active", Header + "\nrent,5020,Rent,expense,housing,USD,maybe,false\n"},
		{"bad system", Header + "\nrent,5020,Rent,expense,housing,USD,true,sure\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("personal", "eur")
	require.NotEmpty(t, chart)

	ids := make(map[string]bool)
	numbers := make(map[string]bool)
	for _, acct := range chart {
		require.NoError(t, acct.Validate(), acct.ID)
		assert.False(t, ids[acct.ID], "duplicate id %s", acct.ID)
		assert.False(t, numbers[acct.Number], "duplicate number %s", acct.Number)
		ids[acct.ID] = true
		numbers[acct.Number] = true
		assert.Equal(t, "EUR", acct.Currency)
		assert.True(t, acct.Active)
	}
	assert.True(t, ids["checking"])
	assert.True(t, ids["groceries"])
	assert.True(t, ids[OpeningBalanceEquityID])

	last := chart[len(chart)-1]
	assert.True(t, last.System)
	assert.Equal(t, model.ClassEquity, last.Class)
}

func TestDefaultChart_Profiles(t *testing.T) {
	minimal := DefaultChart("minimal", "USD")
	assert.Len(t, minimal, 5)

	// Unknown profiles fall back to personal.
	assert.Equal(t, DefaultChart("personal", "USD"), DefaultChart("whatever", "USD"))
}
