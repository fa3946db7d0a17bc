package accounts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/fincore/internal/model"
)

// ErrNotFound is returned by Resolve when nothing matches.
var ErrNotFound = errors.New("account not found")

// ErrAmbiguous is returned by Resolve when a name matches several accounts.
var ErrAmbiguous = errors.New("account reference is ambiguous")

// Chart provides lookup over a chart of accounts.
type Chart struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewChart creates a Chart from a slice of accounts.
func NewChart(accounts []model.Account) *Chart {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Chart{accounts: accounts, byID: byID}
}

// All returns all accounts.
func (c *Chart) All() []model.Account {
	return c.accounts
}

// Get returns an account by ID.
func (c *Chart) Get(id string) (model.Account, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (c *Chart) Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ByClass returns all accounts of the given class.
func (c *Chart) ByClass(class model.AccountClass) []model.Account {
	var result []model.Account
	for _, a := range c.accounts {
		if a.Class == class {
			result = append(result, a)
		}
	}
	return result
}

// Resolve finds the account a user typed: an id, a chart number, or a
// case-insensitive name.
func (c *Chart) Resolve(ref string) (model.Account, error) {
	ref = strings.TrimSpace(ref)
	if a, ok := c.byID[ref]; ok {
		return a, nil
	}
	var matches []model.Account
	for _, a := range c.accounts {
		if (a.Number != "" && a.Number == ref) || strings.EqualFold(a.Name, ref) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return model.Account{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Account{}, fmt.Errorf("%w: %q matches %d accounts", ErrAmbiguous, ref, len(matches))
	}
}
