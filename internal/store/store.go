// Package store persists a ledger and its loans as CSV files under
// <project>/ledger/.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cleared-dev/fincore/internal/accounts"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
)

// File names under the ledger directory.
const (
	Dir            = "ledger"
	AccountsFile   = "accounts.csv"
	JournalFile    = "journal.csv"
	RecurrenceFile = "recurrence.csv"
	LoansFile      = "loans.csv"
)

// ErrNotInitialized is returned by Load when the project has no accounts file.
var ErrNotInitialized = errors.New("ledger not initialized")

// ErrExists is returned by Init when a ledger is already present.
var ErrExists = errors.New("ledger already exists")

// Book is everything a project stores.
type Book struct {
	Ledger *ledger.Ledger
	Loans  []model.Loan
}

// Loan returns a pointer to the stored loan with id, for in-place updates.
func (b *Book) Loan(loanID string) (*model.Loan, bool) {
	for i := range b.Loans {
		if b.Loans[i].ID == loanID {
			return &b.Loans[i], true
		}
	}
	return nil, false
}

// Store reads and writes the CSV files of one project.
type Store struct {
	root string
}

// New returns a Store for the project at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Path returns the path of a ledger file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, Dir, name)
}

// Init writes a fresh ledger holding only the given chart.
func (s *Store) Init(chart []model.Account) error {
	if _, err := os.Stat(s.Path(AccountsFile)); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, s.Path(AccountsFile))
	}
	l := ledger.New()
	for _, acct := range chart {
		if err := l.AddAccount(acct); err != nil {
			return err
		}
	}
	return s.Save(&Book{Ledger: l})
}

// Load reads the project's files and rebuilds the ledger, re-checking every
// transaction as it is posted. Missing journal, recurrence or loan files
// load as empty.
func (s *Store) Load() (*Book, error) {
	f, err := os.Open(s.Path(AccountsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s missing", ErrNotInitialized, s.Path(AccountsFile))
	}
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	chart, err := accounts.ReadAccounts(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	if err := s.read(JournalFile, func(r io.Reader) (err error) {
		txns, err = ReadJournal(r)
		return err
	}); err != nil {
		return nil, err
	}

	rules := map[string]model.RecurrenceRule{}
	if err := s.read(RecurrenceFile, func(r io.Reader) (err error) {
		rules, err = ReadRecurrences(r)
		return err
	}); err != nil {
		return nil, err
	}

	var loans []model.Loan
	if err := s.read(LoansFile, func(r io.Reader) (err error) {
		loans, err = ReadLoans(r)
		return err
	}); err != nil {
		return nil, err
	}

	l := ledger.New()
	for _, acct := range chart {
		if err := l.AddAccount(acct); err != nil {
			return nil, fmt.Errorf("loading %s: %w", AccountsFile, err)
		}
	}

	matched := 0
	for _, txn := range txns {
		if rule, ok := rules[txn.ID]; ok {
			txn.Recurrence = &rule
			matched++
		}
		if _, err := l.Post(txn); err != nil {
			return nil, fmt.Errorf("loading %s: %w", JournalFile, err)
		}
	}
	if matched != len(rules) {
		return nil, fmt.Errorf("loading %s: %d rules reference no transaction", RecurrenceFile, len(rules)-matched)
	}

	return &Book{Ledger: l, Loans: loans}, nil
}

// Save rewrites every file of the project. Each file is replaced atomically.
func (s *Store) Save(b *Book) error {
	if err := os.MkdirAll(filepath.Join(s.root, Dir), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	txns := b.Ledger.Transactions()
	writes := []struct {
		name  string
		write func(io.Writer) error
	}{
		{AccountsFile, func(w io.Writer) error { return accounts.WriteAccounts(w, b.Ledger.Accounts()) }},
		{JournalFile, func(w io.Writer) error { return WriteJournal(w, txns) }},
		{RecurrenceFile, func(w io.Writer) error { return WriteRecurrences(w, txns) }},
		{LoansFile, func(w io.Writer) error { return WriteLoans(w, b.Loans) }},
	}
	for _, wr := range writes {
		if err := s.write(wr.name, wr.write); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) read(name string, fn func(io.Reader) error) error {
	f, err := os.Open(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

func (s *Store) write(name string, fn func(io.Writer) error) error {
	path := s.Path(name)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+name+".*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
