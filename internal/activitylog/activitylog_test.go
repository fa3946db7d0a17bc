package activitylog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Command:   "expense",
		Action:    "post_transaction",
		Subject:   "0194a3c2-7f00-7000-8000-000000000001",
		Amount:    "$52.30",
		Details:   "Groceries, paid from Checking",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "expense", entries[0].Command)

	data, err := os.ReadFile(filepath.Join(dir, Path))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header+"\n"))
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := testEntry()
	e2.Command = "loan pay"
	e2.Action = "record_payment"
	require.NoError(t, Append(dir, e2))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "expense", entries[0].Command)
	assert.Equal(t, "loan pay", entries[1].Command)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Path), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestMarshalUnmarshal(t *testing.T) {
	e := testEntry()
	row := MarshalEntry(e)
	require.Len(t, row, numFields)
	assert.Equal(t, "2025-01-15T10:30:00Z", row[colTimestamp])

	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
	got.Timestamp = e.Timestamp
	assert.Equal(t, e, got)
}

func TestMarshalEntry_ConvertsToUTC(t *testing.T) {
	e := testEntry()
	e.Timestamp = time.Date(2025, 1, 15, 12, 30, 0, 0, time.FixedZone("CET", 2*60*60))
	assert.Equal(t, "2025-01-15T10:30:00Z", MarshalEntry(e)[colTimestamp])
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 6 fields")

	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestTail(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		e := testEntry()
		e.Timestamp = testTime.Add(time.Duration(i) * time.Minute)
		e.Details = string(rune('a' + i))
		require.NoError(t, Append(dir, e))
	}

	last, err := Tail(dir, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].Details)
	assert.Equal(t, "e", last[1].Details)

	all, err := Tail(dir, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
