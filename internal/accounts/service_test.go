package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/model"
)

func TestNewChart(t *testing.T) {
	chart := DefaultChart("personal", "USD")
	c := NewChart(chart)

	assert.Len(t, c.All(), len(chart))
}

func TestGetExists(t *testing.T) {
	c := NewChart(DefaultChart("personal", "USD"))

	acct, ok := c.Get("groceries")
	assert.True(t, ok)
	assert.Equal(t, "Groceries", acct.Name)

	_, ok = c.Get("yacht")
	assert.False(t, ok)

	assert.True(t, c.Exists("checking"))
	assert.False(t, c.Exists("yacht"))
}

func TestByClass(t *testing.T) {
	c := NewChart(DefaultChart("personal", "USD"))

	liabilities := c.ByClass(model.ClassLiability)
	assert.Len(t, liabilities, 2, "expected Credit Card + Mortgage")
	for _, a := range liabilities {
		assert.Equal(t, model.ClassLiability, a.Class)
	}

	equity := c.ByClass(model.ClassEquity)
	require.Len(t, equity, 1)
	assert.Equal(t, OpeningBalanceEquityID, equity[0].ID)
}

func TestResolve(t *testing.T) {
	c := NewChart(append(DefaultChart("personal", "USD"),
		model.Account{ID: "fees-2", Name: "Bank Fees", Class: model.ClassExpense},
	))

	tests := []struct {
		ref    string
		wantID string
		err    error
	}{
		{"checking", "checking", nil},
		{"5010", "groceries", nil},
		{"credit card", "credit-card", nil},
		{"  Savings ", "savings", nil},
		{"bank fees", "", ErrAmbiguous},
		{"yacht", "", ErrNotFound},
		{"", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := c.Resolve(tt.ref)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
