package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoWallet/internal/domain"
	"cryptoWallet/internal/portfolio"
	"cryptoWallet/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}
func (m *mockLogger) Sync() error { return nil }

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "data", "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTx(txType domain.TransactionType, asset, ticker string, qty, cost float64) domain.Transaction {
	ts := time.Date(2023, 7, 9, 8, 30, 0, 0, time.UTC)
	return domain.Transaction{
		Source:               "exchange",
		Destination:          "wallet",
		TransactionType:      txType,
		Ticker:               ticker,
		Asset:                asset,
		AssetQuantity:        qty,
		Currency:             "USD",
		CurrencyQuantity:     cost,
		CurrencyFees:         "USD",
		CurrencyFeesQuantity: 1.25,
		SentDate:             ts,
		ReceivedDate:         ts.Add(10 * time.Minute),
	}
}

func TestRepository_SaveAndFindAll(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	txs := domain.Transactions{
		newTx(domain.Buy, "bitcoin", "BTC-USD", 0.4, 100),
		newTx(domain.Buy, "ethereum", "ETH-USD", 2, 3000),
		newTx(domain.Sell, "bitcoin", "BTC-USD", 0.1, 40),
		newTx(domain.Transfer, "bitcoin", "BTC-USD", 0.05, 0),
	}

	n, err := repo.SaveAll(ctx, txs)
	require.NoError(t, err)
	assert.Equal(t, len(txs), n)

	found, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, txs, found, "records come back unchanged and in insertion order")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRepository_FindByAsset(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	_, err := repo.SaveAll(ctx, domain.Transactions{
		newTx(domain.Buy, "bitcoin", "BTC-USD", 1, 100),
		newTx(domain.Buy, "ethereum", "ETH-USD", 2, 200),
		newTx(domain.Sell, "bitcoin", "BTC-USD", 0.5, 60),
	})
	require.NoError(t, err)

	tests := []struct {
		asset   string
		want    int
		wantErr error
	}{
		{"bitcoin", 2, nil},
		{" ethereum ", 1, nil},
		{"xrp", 0, ports.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.asset, func(t *testing.T) {
			found, err := repo.FindByAsset(ctx, tt.asset)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, found)
				return
			}
			require.NoError(t, err)
			assert.Len(t, found, tt.want)
			for _, tx := range found {
				assert.Equal(t, strings.TrimSpace(tt.asset), tx.Asset)
			}
		})
	}
}

func TestRepository_SnapshotMatchesSource(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	txs := domain.Transactions{
		newTx(domain.Buy, "bitcoin", "BTC-USD", 1.6, 100),
		newTx(domain.Sell, "bitcoin", "BTC-USD", 0.4, 200),
		newTx(domain.Sell, "ethereum", "ETH-USD", 0.3, 500),
	}
	_, err := repo.SaveAll(ctx, txs)
	require.NoError(t, err)

	loaded, err := repo.LoadTransactions(ctx)
	require.NoError(t, err)

	assert.Equal(t, portfolio.NewWalletSnapshot(txs), portfolio.NewWalletSnapshot(loaded))
}

func TestRepository_DeleteAll(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	_, err := repo.SaveAll(ctx, domain.Transactions{newTx(domain.Buy, "bitcoin", "BTC-USD", 1, 100)})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	found, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRepository_SaveAllIsAtomic(t *testing.T) {
	repo := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.SaveAll(ctx, domain.Transactions{newTx(domain.Buy, "bitcoin", "BTC-USD", 1, 100)})
	require.Error(t, err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: ":memory:"})
	assert.Error(t, err)
}

func TestNewRepository_InMemory(t *testing.T) {
	repo, err := NewRepository(Config{DBPath: ":memory:", Logger: &mockLogger{}})
	require.NoError(t, err)
	defer repo.Close()

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
