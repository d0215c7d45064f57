package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cryptoWallet/internal/domain"
	"cryptoWallet/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.TransactionRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/wallet.db"
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
			cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
			return nil, err
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		transaction_type TEXT NOT NULL,
		ticker TEXT NOT NULL,
		asset TEXT NOT NULL,
		asset_quantity REAL NOT NULL,
		currency TEXT NOT NULL,
		currency_quantity REAL NOT NULL,
		currency_fees TEXT NOT NULL,
		currency_fees_quantity REAL NOT NULL,
		sent_date TIMESTAMP NOT NULL,
		received_date TIMESTAMP NOT NULL,
		imported_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_asset ON transactions (asset);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveAll appends txs inside one database transaction.
func (r *Repository) SaveAll(ctx context.Context, txs domain.Transactions) (int, error) {
	const query = `
	INSERT INTO transactions (id, source, destination, transaction_type, ticker, asset, asset_quantity,
	                          currency, currency_quantity, currency_fees, currency_fees_quantity,
	                          sent_date, received_date, imported_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer dbTx.Rollback() // no-op after Commit

	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer stmt.Close()

	importedAt := time.Now().UTC()
	for i, tx := range txs {
		_, err := stmt.ExecContext(ctx,
			uuid.NewString(), string(tx.Source), string(tx.Destination), string(tx.TransactionType),
			tx.Ticker, tx.Asset, tx.AssetQuantity,
			tx.Currency, tx.CurrencyQuantity, tx.CurrencyFees, tx.CurrencyFeesQuantity,
			tx.SentDate.UTC(), tx.ReceivedDate.UTC(), importedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transaction %d (%s): %w: %w", i, tx.Asset, ports.ErrUpdateFailed, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %d transactions: %w: %w", len(txs), ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Transactions saved", map[string]interface{}{"count": len(txs)})
	return len(txs), nil
}

const selectColumns = `
	SELECT source, destination, transaction_type, ticker, asset, asset_quantity,
	       currency, currency_quantity, currency_fees, currency_fees_quantity,
	       sent_date, received_date
	FROM transactions`

// FindAll retrieves all transactions in insertion order.
func (r *Repository) FindAll(ctx context.Context) (domain.Transactions, error) {
	return r.query(ctx, "FindAll", selectColumns+` ORDER BY seq`)
}

// FindByAsset retrieves the transactions of one asset in insertion order.
// An asset with no stored transaction yields ports.ErrNotFound.
func (r *Repository) FindByAsset(ctx context.Context, asset string) (domain.Transactions, error) {
	asset = strings.TrimSpace(asset)
	txs, err := r.query(ctx, "FindByAsset", selectColumns+` WHERE asset = ? ORDER BY seq`, asset)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("no transactions for asset %q: %w", asset, ports.ErrNotFound)
	}
	return txs, nil
}

// LoadTransactions makes the repository usable as a ports.TransactionSource.
func (r *Repository) LoadTransactions(ctx context.Context) (domain.Transactions, error) {
	txs, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "Transactions loaded from database", map[string]interface{}{"count": len(txs)})
	return txs, nil
}

// Count returns the number of stored transactions.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w: %w", ports.ErrQueryFailed, err)
	}
	return count, nil
}

// DeleteAll removes every stored transaction.
func (r *Repository) DeleteAll(ctx context.Context) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w: %w", ports.ErrDeleteFailed, err)
	}
	n, _ := result.RowsAffected()
	r.logger.Info(ctx, "Transactions deleted", map[string]interface{}{"count": n})
	return nil
}

func (r *Repository) query(ctx context.Context, op, query string, args ...interface{}) (domain.Transactions, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query transactions: %w: %w", op, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	txs := make(domain.Transactions, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan transaction: %w: %w", op, ports.ErrQueryFailed, err)
		}
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating transaction rows: %w: %w", op, ports.ErrQueryFailed, err)
	}
	return txs, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTransaction scans a row into a domain.Transaction.
func scanTransaction(s scanner) (domain.Transaction, error) {
	var tx domain.Transaction
	var source, destination, txType string
	err := s.Scan(
		&source, &destination, &txType, &tx.Ticker, &tx.Asset, &tx.AssetQuantity,
		&tx.Currency, &tx.CurrencyQuantity, &tx.CurrencyFees, &tx.CurrencyFeesQuantity,
		&tx.SentDate, &tx.ReceivedDate)
	if err != nil {
		return tx, err
	}
	tx.Source = domain.Entity(source)
	tx.Destination = domain.Entity(destination)
	tx.TransactionType, err = domain.ParseTransactionType(txType)
	if err != nil {
		return tx, err
	}
	tx.SentDate = tx.SentDate.UTC()
	tx.ReceivedDate = tx.ReceivedDate.UTC()
	return tx, nil
}
