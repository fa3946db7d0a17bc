package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/fincore/internal/model"
)

// Header is the CSV header for accounts.csv.
const Header = "account_id,number,name,class,type,currency,active,system"

const (
	numFields   = 8
	colID       = 0
	colNumber   = 1
	colName     = 2
	colClass    = 3
	colType     = 4
	colCurrency = 5
	colActive   = 6
	colSystem   = 7
)

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colNumber] = acct.Number
	row[colName] = acct.Name
	row[colClass] = string(acct.Class)
	row[colType] = string(acct.Type)
	row[colCurrency] = acct.Currency
	row[colActive] = strconv.FormatBool(acct.Active)
	row[colSystem] = strconv.FormatBool(acct.System)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	active, err := parseBool(record[colActive], true)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
	}
	system, err := parseBool(record[colSystem], false)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing system %q: %w", record[colSystem], err)
	}

	return model.Account{
		ID:       record[colID],
		Number:   record[colNumber],
		Name:     record[colName],
		Class:    model.AccountClass(record[colClass]),
		Type:     model.AccountType(record[colType]),
		Currency: record[colCurrency],
		Active:   active,
		System:   system,
	}, nil
}

func parseBool(s string, blank bool) (bool, error) {
	if s == "" {
		return blank, nil
	}
	return strconv.ParseBool(s)
}
