package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a double-entry line.
type EntryType string

const (
	EntryDebit  EntryType = "debit"
	EntryCredit EntryType = "credit"
)

// Valid reports whether t is debit or credit.
func (t EntryType) Valid() bool {
	return t == EntryDebit || t == EntryCredit
}

// Opposite returns the other side.
func (t EntryType) Opposite() EntryType {
	if t == EntryDebit {
		return EntryCredit
	}
	return EntryDebit
}

// Status is the reconciliation state of a transaction.
type Status string

const (
	StatusUnreconciled Status = "unreconciled"
	StatusCleared      Status = "cleared"
	StatusReconciled   Status = "reconciled"
)

// Entry is one line of a transaction.
type Entry struct {
	ID            string
	TransactionID string
	AccountID     string
	Type          EntryType
	Amount        decimal.Decimal // never negative
}

// Transaction groups entries whose debits and credits balance.
type Transaction struct {
	ID          string
	Date        time.Time
	Description string
	Reference   string
	Recurring   bool // template of a recurring series, not a realized occurrence
	Status      Status
	Recurrence  *RecurrenceRule
	Attachments []string
	Entries     []Entry
}

// Totals sums the debit and credit sides.
func (t Transaction) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range t.Entries {
		switch e.Type {
		case EntryDebit:
			debits = debits.Add(e.Amount)
		case EntryCredit:
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// Balanced reports whether debits equal credits exactly.
func (t Transaction) Balanced() bool {
	d, c := t.Totals()
	return d.Equal(c)
}

// Amount is the debit total, the size of the transaction.
func (t Transaction) Amount() decimal.Decimal {
	d, _ := t.Totals()
	return d
}

// References reports whether any entry posts to accountID.
func (t Transaction) References(accountID string) bool {
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate ledger state.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Entries != nil {
		c.Entries = append([]Entry(nil), t.Entries...)
	}
	if t.Attachments != nil {
		c.Attachments = append([]string(nil), t.Attachments...)
	}
	if t.Recurrence != nil {
		r := t.Recurrence.Clone()
		c.Recurrence = &r
	}
	return c
}
