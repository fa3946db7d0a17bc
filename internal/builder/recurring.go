package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/recurrence"
)

// ErrNotRecurring is returned when a template has no recurrence rule.
var ErrNotRecurring = errors.New("transaction is not a recurring template")

// CreateOccurrence realizes a recurring template on date. The result carries
// the template's lines under a new id, with no rule of its own.
func CreateOccurrence(template model.Transaction, date time.Time) (model.Transaction, error) {
	lines := make([]ledger.Line, 0, len(template.Entries))
	for _, e := range template.Entries {
		lines = append(lines, ledger.Line{
			Account: model.Account{ID: e.AccountID},
			Type:    e.Type,
			Amount:  e.Amount,
		})
	}
	txn, err := ledger.NewTransaction(ledger.TransactionParams{
		Date:        date,
		Description: template.Description,
		Reference:   template.ID,
	}, lines)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("realizing template %s: %w", template.ID, err)
	}
	return txn, nil
}

// DueOccurrences realizes every occurrence of template from from through
// until, both inclusive. Pass the rule's NextOccurrence to realize what a
// template owes.
func DueOccurrences(template model.Transaction, from, until time.Time) ([]model.Transaction, error) {
	if template.Recurrence == nil {
		return nil, fmt.Errorf("template %s: %w", template.ID, ErrNotRecurring)
	}
	rule := *template.Recurrence
	if err := recurrence.Validate(rule); err != nil {
		return nil, fmt.Errorf("template %s: %w", template.ID, err)
	}
	var out []model.Transaction
	for _, d := range recurrence.Occurrences(rule, from, until) {
		txn, err := CreateOccurrence(template, d)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, nil
}
