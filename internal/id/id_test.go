package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()
	assert.True(t, Valid(a))
	assert.NotEqual(t, a, b)
	assert.False(t, Valid("not-a-uuid"))
}

func TestFormatEntryID(t *testing.T) {
	tests := []struct {
		txn  string
		leg  int
		want string
	}{
		{"0190f5e0-aaaa-7bbb-8ccc-ddddeeeeffff", 0, "0190f5e0-aaaa-7bbb-8ccc-ddddeeeeffff.1"},
		{"t1", 1, "t1.2"},
		{"t1", 10, "t1.11"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEntryID(tt.txn, tt.leg))
	}
}

func TestParseEntryID(t *testing.T) {
	txn, leg, err := ParseEntryID("0190f5e0-aaaa-7bbb-8ccc-ddddeeeeffff.2")
	require.NoError(t, err)
	assert.Equal(t, "0190f5e0-aaaa-7bbb-8ccc-ddddeeeeffff", txn)
	assert.Equal(t, 1, leg)

	txn, leg, err = ParseEntryID(FormatEntryID("abc", 4))
	require.NoError(t, err)
	assert.Equal(t, "abc", txn)
	assert.Equal(t, 4, leg)
}

func TestParseEntryID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"no-leg",
		".1",
		"txn.",
		"txn.x",
		"txn.0",
	}
	for _, input := range badInputs {
		_, _, err := ParseEntryID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}
