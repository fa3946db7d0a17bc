package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/model"
)

// JournalHeader is the CSV header for journal.csv.
const JournalHeader = "entry_id,date,account_id,description,debit,credit,reference,status,recurring,attachments"

const (
	journalFields = 10
	colEntryID    = 0
	colDate       = 1
	colAcctID     = 2
	colDesc       = 3
	colDebit      = 4
	colCredit     = 5
	colRef        = 6
	colStatus     = 7
	colRecurring  = 8
	colAttach     = 9
)

const attachmentSep = "|"

// ReadJournal reads journal.csv and regroups its rows into transactions in
// file order. Transaction columns are taken from each transaction's first row.
func ReadJournal(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = journalFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	index := make(map[string]int)
	for i, rec := range records[1:] {
		txn, entry, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		n, ok := index[txn.ID]
		if !ok {
			n = len(txns)
			index[txn.ID] = n
			txns = append(txns, txn)
		}
		txns[n].Entries = append(txns[n].Entries, entry)
	}
	return txns, nil
}

// WriteJournal writes one row per entry, including the header.
func WriteJournal(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(JournalHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := 2
	for _, txn := range txns {
		for _, e := range txn.Entries {
			if err := cw.Write(marshalRow(txn, e)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	cw.Flush()
	return cw.Error()
}

func marshalRow(txn model.Transaction, e model.Entry) []string {
	row := make([]string, journalFields)
	row[colEntryID] = e.ID
	row[colDate] = calendar.Format(txn.Date)
	row[colAcctID] = e.AccountID
	row[colDesc] = txn.Description
	if e.Type == model.EntryDebit {
		row[colDebit] = formatAmount(e.Amount)
	} else {
		row[colCredit] = formatAmount(e.Amount)
	}
	row[colRef] = txn.Reference
	row[colStatus] = string(txn.Status)
	if txn.Recurring {
		row[colRecurring] = "true"
	}
	row[colAttach] = strings.Join(txn.Attachments, attachmentSep)
	return row
}

func unmarshalRow(record []string) (model.Transaction, model.Entry, error) {
	txnID, _, err := id.ParseEntryID(record[colEntryID])
	if err != nil {
		return model.Transaction{}, model.Entry{}, err
	}
	date, err := calendar.Parse(record[colDate])
	if err != nil {
		return model.Transaction{}, model.Entry{}, err
	}

	entry := model.Entry{ID: record[colEntryID], TransactionID: txnID, AccountID: record[colAcctID]}
	switch {
	case record[colDebit] != "" && record[colCredit] != "":
		return model.Transaction{}, model.Entry{}, fmt.Errorf("entry %s has both debit and credit", entry.ID)
	case record[colDebit] != "":
		entry.Type = model.EntryDebit
		entry.Amount, err = decimal.NewFromString(record[colDebit])
	case record[colCredit] != "":
		entry.Type = model.EntryCredit
		entry.Amount, err = decimal.NewFromString(record[colCredit])
	default:
		return model.Transaction{}, model.Entry{}, fmt.Errorf("entry %s has no amount", entry.ID)
	}
	if err != nil {
		return model.Transaction{}, model.Entry{}, fmt.Errorf("parsing amount of %s: %w", entry.ID, err)
	}

	var recurring bool
	if record[colRecurring] != "" {
		recurring, err = strconv.ParseBool(record[colRecurring])
		if err != nil {
			return model.Transaction{}, model.Entry{}, fmt.Errorf("parsing recurring %q: %w", record[colRecurring], err)
		}
	}

	var attachments []string
	if record[colAttach] != "" {
		attachments = strings.Split(record[colAttach], attachmentSep)
	}

	txn := model.Transaction{
		ID:          txnID,
		Date:        date,
		Description: record[colDesc],
		Reference:   record[colRef],
		Status:      model.Status(record[colStatus]),
		Recurring:   recurring,
		Attachments: attachments,
	}
	return txn, entry, nil
}

// formatAmount writes two decimals unless the amount carries more.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}
