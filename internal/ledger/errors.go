package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidEntry is wrapped by structural problems with a transaction's entries.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrAccountNotFound is returned when an id names no account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount is returned when adding an id that already exists.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrSystemAccount protects built-in accounts from edits and deletion.
	ErrSystemAccount = errors.New("system account cannot be modified")
	// ErrAccountInUse blocks deleting an account that entries still reference.
	ErrAccountInUse = errors.New("account is referenced by entries")
	// ErrTransactionNotFound is returned when an id names no transaction.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateTransaction is returned when posting an id twice.
	ErrDuplicateTransaction = errors.New("transaction already exists")
	// ErrCurrencyMismatch is returned when one transaction spans currencies.
	ErrCurrencyMismatch = errors.New("entries use different currencies")
)

// UnbalancedTransactionError reports a transaction whose debits and credits differ.
type UnbalancedTransactionError struct {
	TransactionID string
	Debits        decimal.Decimal
	Credits       decimal.Decimal
}

func (e *UnbalancedTransactionError) Error() string {
	return fmt.Sprintf("transaction %s unbalanced: debits (%s) != credits (%s)",
		e.TransactionID, e.Debits.String(), e.Credits.String())
}

// ValidationError describes a single integrity violation found by Verify.
type ValidationError struct {
	Invariant   string
	ID          string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Invariant, e.ID, e.Description)
}

// Invariant names reported by Verify.
const (
	InvariantBalanced       = "balanced"
	InvariantAccountRef     = "account-ref"
	InvariantPrecision      = "precision"
	InvariantRunningBalance = "running-balance"
)
