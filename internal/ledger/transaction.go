package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/calendar"
	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/model"
)

// Line is one requested entry: an account, a side and an amount.
type Line struct {
	Account model.Account
	Type    model.EntryType
	Amount  decimal.Decimal
}

// Debit is shorthand for a debit line.
func Debit(acct model.Account, amount decimal.Decimal) Line {
	return Line{Account: acct, Type: model.EntryDebit, Amount: amount}
}

// Credit is shorthand for a credit line.
func Credit(acct model.Account, amount decimal.Decimal) Line {
	return Line{Account: acct, Type: model.EntryCredit, Amount: amount}
}

// TransactionParams holds the non-entry fields of a new transaction.
type TransactionParams struct {
	ID          string // assigned when empty
	Date        time.Time
	Description string
	Reference   string
	Recurring   bool
	Status      model.Status
	Recurrence  *model.RecurrenceRule
	Attachments []string
}

// NewTransaction builds a transaction from lines and rejects it unless the
// lines balance exactly. Ledger membership of the accounts is checked by Post.
func NewTransaction(params TransactionParams, lines []Line) (model.Transaction, error) {
	txn := model.Transaction{
		ID:          params.ID,
		Date:        params.Date,
		Description: params.Description,
		Reference:   params.Reference,
		Recurring:   params.Recurring,
		Status:      params.Status,
		Recurrence:  params.Recurrence,
		Attachments: params.Attachments,
	}
	for _, ln := range lines {
		txn.Entries = append(txn.Entries, model.Entry{
			AccountID: ln.Account.ID,
			Type:      ln.Type,
			Amount:    ln.Amount,
		})
	}
	txn = normalize(txn)
	if err := checkEntries(txn); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// normalize fills ids, status and the date. Entry ids derive from the
// transaction id so they survive storage round trips.
func normalize(txn model.Transaction) model.Transaction {
	if txn.ID == "" {
		txn.ID = id.New()
	}
	if txn.Status == "" {
		txn.Status = model.StatusUnreconciled
	}
	if !txn.Date.IsZero() {
		txn.Date = calendar.Normalize(txn.Date)
	}
	for i := range txn.Entries {
		txn.Entries[i].ID = id.FormatEntryID(txn.ID, i)
		txn.Entries[i].TransactionID = txn.ID
	}
	return txn
}

// checkEntries enforces the structural rules and the balance invariant.
func checkEntries(txn model.Transaction) error {
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: transaction %s has no date", ErrInvalidEntry, txn.ID)
	}
	if len(txn.Entries) < 2 {
		return fmt.Errorf("%w: transaction %s needs at least two entries, got %d", ErrInvalidEntry, txn.ID, len(txn.Entries))
	}
	for _, e := range txn.Entries {
		if e.AccountID == "" {
			return fmt.Errorf("%w: entry %s has no account", ErrInvalidEntry, e.ID)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("%w: entry %s has unknown type %q", ErrInvalidEntry, e.ID, e.Type)
		}
		if !e.Amount.IsPositive() {
			return fmt.Errorf("%w: entry %s amount %s is not positive", ErrInvalidEntry, e.ID, e.Amount)
		}
	}
	if debits, credits := txn.Totals(); !debits.Equal(credits) {
		return &UnbalancedTransactionError{TransactionID: txn.ID, Debits: debits, Credits: credits}
	}
	return nil
}

// Balance sums entries for acct from scratch, signed by its normal side.
// An empty entry set balances to zero.
func Balance(acct model.Account, entries []model.Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.AccountID != acct.ID {
			continue
		}
		total = total.Add(acct.Signed(e.Type, e.Amount))
	}
	return total
}
