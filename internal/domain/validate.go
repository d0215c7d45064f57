package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize returns a copy of t with identifier fields trimmed of surrounding space.
func (t Transaction) Normalize() Transaction {
	t.Source = Entity(strings.TrimSpace(string(t.Source)))
	t.Destination = Entity(strings.TrimSpace(string(t.Destination)))
	t.Ticker = strings.TrimSpace(t.Ticker)
	t.Asset = strings.TrimSpace(t.Asset)
	t.Currency = strings.TrimSpace(t.Currency)
	t.CurrencyFees = strings.TrimSpace(t.CurrencyFees)
	return t
}

// Validate checks the record-level rules loaders enforce before handing
// transactions to the aggregation engine.
func (t Transaction) Validate() error {
	var errs []string
	if !t.TransactionType.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown transactionType %q", string(t.TransactionType)))
	}
	if t.Asset == "" {
		errs = append(errs, "asset is empty")
	}
	if t.Ticker == "" {
		errs = append(errs, "ticker is empty")
	}
	if t.Currency == "" {
		errs = append(errs, "currency is empty")
	}
	if t.AssetQuantity < 0 {
		errs = append(errs, fmt.Sprintf("assetQuantity %v is negative", t.AssetQuantity))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateAll validates every record and reports all failures by index.
func (txs Transactions) ValidateAll() error {
	var errs []error
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("transaction %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Normalized returns a normalized copy of every record.
func (txs Transactions) Normalized() Transactions {
	out := make(Transactions, len(txs))
	for i, tx := range txs {
		out[i] = tx.Normalize()
	}
	return out
}
