// Package activitylog keeps an append-only CSV audit trail of the changes
// CLI commands make to a project.
package activitylog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time
	Command   string // e.g. "expense", "loan pay"
	Action    string // e.g. "post_transaction"
	Subject   string // transaction, account or loan id
	Amount    string // display amount, may be empty
	Details   string
}

// Header is the CSV header for activity-log.csv.
const Header = "timestamp,command,action,subject,amount,details"

// Path is the log location relative to a project root.
var Path = filepath.Join("logs", "activity-log.csv")

const (
	numFields    = 6
	colTimestamp = 0
	colCommand   = 1
	colAction    = 2
	colSubject   = 3
	colAmount    = 4
	colDetails   = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	return []string{
		colTimestamp: e.Timestamp.UTC().Format(time.RFC3339),
		colCommand:   e.Command,
		colAction:    e.Action,
		colSubject:   e.Subject,
		colAmount:    e.Amount,
		colDetails:   e.Details,
	}
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	return Entry{
		Timestamp: ts,
		Command:   record[colCommand],
		Action:    record[colAction],
		Subject:   record[colSubject],
		Amount:    record[colAmount],
		Details:   record[colDetails],
	}, nil
}

// Append adds entries to the project's log, creating the file and header
// on first use.
func Append(root string, entries ...Entry) error {
	path := filepath.Join(root, Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if fresh {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry in the project's log, nil when there is none.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, Path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

// Tail returns the last n entries, oldest first.
func Tail(root string, n int) ([]Entry, error) {
	entries, err := Read(root)
	if err != nil || n <= 0 || len(entries) <= n {
		return entries, err
	}
	return entries[len(entries)-n:], nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
