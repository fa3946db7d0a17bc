// Package ledger holds accounts and balanced transactions. Account balances
// are kept as running totals updated on every mutation and can be proven
// against a from-scratch recompute with Verify. Recurring templates are
// definitions: their entries reference accounts but never move balances.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/currency"
	"github.com/cleared-dev/fincore/internal/model"
)

// Ledger is safe for concurrent use: one writer at a time, any number of
// readers, and readers never observe a half-applied mutation.
type Ledger struct {
	mu           sync.RWMutex
	accounts     map[string]model.Account
	accountOrder []string
	transactions map[string]model.Transaction
	balances     map[string]decimal.Decimal
	refs         map[string]int // entries referencing each account
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		accounts:     make(map[string]model.Account),
		transactions: make(map[string]model.Transaction),
		balances:     make(map[string]decimal.Decimal),
		refs:         make(map[string]int),
	}
}

// AddAccount registers an account. The currency code is normalized.
func (l *Ledger) AddAccount(acct model.Account) error {
	acct, err := prepareAccount(acct)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[acct.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAccount, acct.ID)
	}
	l.accounts[acct.ID] = acct
	l.accountOrder = append(l.accountOrder, acct.ID)
	l.balances[acct.ID] = decimal.Zero
	return nil
}

// UpdateAccount replaces an account's attributes. System accounts are
// immutable; a referenced account cannot change currency.
func (l *Ledger) UpdateAccount(acct model.Account) error {
	acct, err := prepareAccount(acct)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.accounts[acct.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, acct.ID)
	}
	if old.System {
		return fmt.Errorf("%w: %s", ErrSystemAccount, old.Name)
	}
	if acct.System {
		return fmt.Errorf("%w: cannot promote %s to a system account", ErrSystemAccount, old.Name)
	}
	if old.Currency != acct.Currency && l.refs[acct.ID] > 0 {
		return fmt.Errorf("%w: cannot change currency of %s", ErrAccountInUse, old.Name)
	}
	l.accounts[acct.ID] = acct
	if old.Class != acct.Class {
		l.balances[acct.ID] = l.recompute(acct)
	}
	return nil
}

// DeactivateAccount hides an account without touching its history.
func (l *Ledger) DeactivateAccount(accountID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if acct.System {
		return fmt.Errorf("%w: %s", ErrSystemAccount, acct.Name)
	}
	acct.Active = false
	l.accounts[accountID] = acct
	return nil
}

// DeleteAccount removes an account that no entry references. Referenced
// accounts return ErrAccountInUse; deactivate them instead.
func (l *Ledger) DeleteAccount(accountID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if acct.System {
		return fmt.Errorf("%w: %s", ErrSystemAccount, acct.Name)
	}
	if n := l.refs[accountID]; n > 0 {
		return fmt.Errorf("%w: %s has %d entries", ErrAccountInUse, acct.Name, n)
	}
	delete(l.accounts, accountID)
	delete(l.balances, accountID)
	delete(l.refs, accountID)
	for i, id := range l.accountOrder {
		if id == accountID {
			l.accountOrder = append(l.accountOrder[:i], l.accountOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Account returns an account by id.
func (l *Ledger) Account(accountID string) (model.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acct, ok := l.accounts[accountID]
	return acct, ok
}

// Accounts returns all accounts in the order they were added.
func (l *Ledger) Accounts() []model.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Account, 0, len(l.accountOrder))
	for _, id := range l.accountOrder {
		out = append(out, l.accounts[id])
	}
	return out
}

// CreateBalancedTransaction builds a transaction from lines and posts it.
func (l *Ledger) CreateBalancedTransaction(params TransactionParams, lines []Line) (model.Transaction, error) {
	txn, err := NewTransaction(params, lines)
	if err != nil {
		return model.Transaction{}, err
	}
	return l.Post(txn)
}

// Post validates txn against the ledger and stores a copy of it. The
// returned transaction carries the assigned ids.
func (l *Ledger) Post(txn model.Transaction) (model.Transaction, error) {
	txn = normalize(txn.Clone())

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.transactions[txn.ID]; ok {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrDuplicateTransaction, txn.ID)
	}
	if err := l.check(txn); err != nil {
		return model.Transaction{}, err
	}
	l.transactions[txn.ID] = txn
	l.apply(txn, 1)
	return txn.Clone(), nil
}

// UpdateTransaction replaces a posted transaction wholesale. The new
// version must balance on its own; running balances move by the difference.
func (l *Ledger) UpdateTransaction(txn model.Transaction) error {
	txn = normalize(txn.Clone())

	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.transactions[txn.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, txn.ID)
	}
	if err := l.check(txn); err != nil {
		return err
	}
	l.apply(old, -1)
	l.transactions[txn.ID] = txn
	l.apply(txn, 1)
	return nil
}

// DeleteTransaction removes a transaction together with its entries,
// attachments and recurrence rule.
func (l *Ledger) DeleteTransaction(transactionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn, ok := l.transactions[transactionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	l.apply(txn, -1)
	delete(l.transactions, transactionID)
	return nil
}

// Transaction returns a copy of a posted transaction.
func (l *Ledger) Transaction(transactionID string) (model.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	txn, ok := l.transactions[transactionID]
	if !ok {
		return model.Transaction{}, false
	}
	return txn.Clone(), true
}

// Transactions returns copies of all transactions ordered by date, then id.
func (l *Ledger) Transactions() []model.Transaction {
	l.mu.RLock()
	out := make([]model.Transaction, 0, len(l.transactions))
	for _, txn := range l.transactions {
		out = append(out, txn.Clone())
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AccountBalance returns the running balance of an account.
func (l *Ledger) AccountBalance(accountID string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.accounts[accountID]; !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	return l.balances[accountID], nil
}

// RecalculateBalance sums the account's entries from scratch and refreshes
// the running balance with the result. Calling it twice changes nothing.
func (l *Ledger) RecalculateBalance(accountID string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[accountID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	bal := l.recompute(acct)
	l.balances[accountID] = bal
	return bal, nil
}

// Verify checks every stored invariant and returns the violations found.
func (l *Ledger) Verify() []ValidationError {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var errs []ValidationError
	ids := make([]string, 0, len(l.transactions))
	for id := range l.transactions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		txn := l.transactions[id]
		if debits, credits := txn.Totals(); !debits.Equal(credits) {
			errs = append(errs, ValidationError{
				Invariant:   InvariantBalanced,
				ID:          txn.ID,
				Description: fmt.Sprintf("debits (%s) != credits (%s)", debits, credits),
			})
		}
		for _, e := range txn.Entries {
			acct, ok := l.accounts[e.AccountID]
			if !ok {
				errs = append(errs, ValidationError{
					Invariant:   InvariantAccountRef,
					ID:          e.ID,
					Description: fmt.Sprintf("unknown account %s", e.AccountID),
				})
				continue
			}
			if !currency.Exact(e.Amount, acct.Currency) {
				errs = append(errs, ValidationError{
					Invariant:   InvariantPrecision,
					ID:          e.ID,
					Description: fmt.Sprintf("amount %s exceeds %s precision", e.Amount, acct.Currency),
				})
			}
		}
	}

	for _, accountID := range l.accountOrder {
		acct := l.accounts[accountID]
		want := l.recompute(acct)
		if got := l.balances[accountID]; !got.Equal(want) {
			errs = append(errs, ValidationError{
				Invariant:   InvariantRunningBalance,
				ID:          accountID,
				Description: fmt.Sprintf("running balance %s != recomputed %s", got, want),
			})
		}
	}
	return errs
}

// check validates txn against the accounts held. Callers hold the write lock.
func (l *Ledger) check(txn model.Transaction) error {
	if err := checkEntries(txn); err != nil {
		return err
	}
	var cur string
	for _, e := range txn.Entries {
		acct, ok := l.accounts[e.AccountID]
		if !ok {
			return fmt.Errorf("%w: entry %s references %s", ErrAccountNotFound, e.ID, e.AccountID)
		}
		if !currency.Exact(e.Amount, acct.Currency) {
			return fmt.Errorf("%w: entry %s amount %s has more than %d decimal places",
				ErrInvalidEntry, e.ID, e.Amount, currency.Precision(acct.Currency))
		}
		if cur == "" {
			cur = acct.Currency
		} else if cur != acct.Currency {
			return fmt.Errorf("%w: %s and %s in transaction %s", ErrCurrencyMismatch, cur, acct.Currency, txn.ID)
		}
	}
	return nil
}

// apply adds (sign 1) or removes (sign -1) txn's effect on running balances.
func (l *Ledger) apply(txn model.Transaction, sign int) {
	for _, e := range txn.Entries {
		l.refs[e.AccountID] += sign
		if txn.Recurring {
			continue
		}
		acct := l.accounts[e.AccountID]
		delta := acct.Signed(e.Type, e.Amount)
		if sign < 0 {
			delta = delta.Neg()
		}
		l.balances[e.AccountID] = l.balances[e.AccountID].Add(delta)
	}
}

// recompute sums acct's entries across all posted transactions.
func (l *Ledger) recompute(acct model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range l.transactions {
		if txn.Recurring {
			continue
		}
		total = total.Add(Balance(acct, txn.Entries))
	}
	return total
}

func prepareAccount(acct model.Account) (model.Account, error) {
	if err := acct.Validate(); err != nil {
		return model.Account{}, err
	}
	acct.Currency = currency.Normalize(acct.Currency)
	if !currency.Valid(acct.Currency) {
		return model.Account{}, fmt.Errorf("%w %s: unknown currency %q", model.ErrInvalidAccount, acct.ID, acct.Currency)
	}
	if acct.Type == "" {
		acct.Type = model.DefaultType(acct.Class)
	}
	return acct, nil
}
