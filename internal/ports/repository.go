package ports

import (
	"context"

	"cryptoWallet/internal/domain"
)

// TransactionSource supplies the full, already validated transaction history.
type TransactionSource interface {
	// LoadTransactions returns every known transaction in source order.
	LoadTransactions(ctx context.Context) (domain.Transactions, error)
}

// TransactionRepository stores transaction records between runs.
// Only source records are stored; aggregated views are always recomputed.
type TransactionRepository interface {
	TransactionSource
	// SaveAll appends txs atomically and returns the number of rows written.
	SaveAll(ctx context.Context, txs domain.Transactions) (int, error)
	// FindAll retrieves all transactions in insertion order.
	FindAll(ctx context.Context) (domain.Transactions, error)
	// FindByAsset retrieves the transactions of one asset in insertion order.
	// An asset with no transaction yields ErrNotFound.
	FindByAsset(ctx context.Context, asset string) (domain.Transactions, error)
	// Count returns the number of stored transactions.
	Count(ctx context.Context) (int, error)
	// DeleteAll removes every stored transaction.
	DeleteAll(ctx context.Context) error
}
