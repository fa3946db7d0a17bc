package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// New returns a time-ordered UUIDv7, falling back to a random v4.
func New() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// FormatEntryID returns the id of leg n (0-based) of a transaction: "<txn>.1", "<txn>.2", ...
func FormatEntryID(transactionID string, leg int) string {
	return transactionID + "." + strconv.Itoa(leg+1)
}

// ParseEntryID splits "<txn>.N" into the transaction id and the 0-based leg.
func ParseEntryID(entryID string) (transactionID string, leg int, err error) {
	i := strings.LastIndexByte(entryID, '.')
	if i <= 0 || i == len(entryID)-1 {
		return "", 0, fmt.Errorf("invalid entry ID format: %q", entryID)
	}
	n, err := strconv.Atoi(entryID[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid leg in entry ID %q: %w", entryID, err)
	}
	if n < 1 {
		return "", 0, fmt.Errorf("invalid leg in entry ID %q: must be >= 1", entryID)
	}
	return entryID[:i], n - 1, nil
}
