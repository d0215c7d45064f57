package domain

import (
	"fmt"
	"strings"
)

// TransactionType represents the kind of movement a transaction records (BUY, SELL or TRANSFER).
type TransactionType string

const (
	Buy      TransactionType = "BUY"
	Sell     TransactionType = "SELL"
	Transfer TransactionType = "TRANSFER"
)

// TransactionTypes lists every known transaction type in display order.
var TransactionTypes = []TransactionType{Buy, Sell, Transfer}

// ParseTransactionType converts a wire value ("buy", "SELL", ...) to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Buy):
		return Buy, nil
	case string(Sell):
		return Sell, nil
	case string(Transfer):
		return Transfer, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// IsValid reports whether t is one of the closed set of transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Buy, Sell, Transfer:
		return true
	}
	return false
}

// MarshalText encodes the type lower-cased, as stored in transaction files.
func (t TransactionType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("cannot encode transaction type %q", string(t))
	}
	return []byte(strings.ToLower(string(t))), nil
}

// UnmarshalText accepts any casing of buy, sell or transfer.
func (t *TransactionType) UnmarshalText(text []byte) error {
	parsed, err := ParseTransactionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
