// Package jsonfile loads a transaction history from a JSON file holding an array of records.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cryptoWallet/internal/domain"
	"cryptoWallet/internal/ports"
)

// Loader implements ports.TransactionSource for a JSON file.
type Loader struct {
	path   string
	logger ports.Logger
}

// Config holds configuration for the JSON loader.
type Config struct {
	Path   string
	Logger ports.Logger
}

// New creates a loader for cfg.Path.
func New(cfg Config) (*Loader, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for JSON loader")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("transaction file path is required: %w", ports.ErrConfigurationError)
	}
	return &Loader{path: cfg.Path, logger: cfg.Logger}, nil
}

// LoadTransactions reads, decodes and validates the file.
func (l *Loader) LoadTransactions(ctx context.Context) (domain.Transactions, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		err = fmt.Errorf("reading %s: %w: %w", l.path, ports.ErrSourceUnreadable, err)
		l.logger.Error(ctx, err, "Failed to read transaction file")
		return nil, err
	}

	txs, err := Decode(data)
	if err != nil {
		err = fmt.Errorf("%s: %w", l.path, err)
		l.logger.Error(ctx, err, "Failed to decode transaction file")
		return nil, err
	}
	l.logger.Info(ctx, "Transactions loaded", map[string]interface{}{"path": l.path, "count": len(txs)})
	return txs, nil
}

// Decode parses a JSON array of transactions, normalizes identifiers and validates every record.
func Decode(data []byte) (domain.Transactions, error) {
	var txs domain.Transactions
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrMalformedSource, err)
	}
	if txs == nil {
		txs = domain.Transactions{} // "null" or missing array is an empty history
	}
	txs = txs.Normalized()
	if err := txs.ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidTransaction, err)
	}
	return txs, nil
}

// Encode writes txs as an indented JSON array.
func Encode(txs domain.Transactions) ([]byte, error) {
	if txs == nil {
		txs = domain.Transactions{}
	}
	return json.MarshalIndent(txs, "", "  ")
}
