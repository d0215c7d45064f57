package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoWallet/internal/domain"
)

func TestCalculateWalletStats(t *testing.T) {
	txs := domain.Transactions{
		{TransactionType: domain.Buy, Asset: "bitcoin", Ticker: "BTC-USD", AssetQuantity: 1, CurrencyQuantity: 100, CurrencyFeesQuantity: 1},
		{TransactionType: domain.Sell, Asset: "bitcoin", Ticker: "BTC-USD", AssetQuantity: 0.5, CurrencyQuantity: 80},
		{TransactionType: domain.Transfer, Asset: "ethereum", Ticker: "ETH-USD", AssetQuantity: 2},
	}

	stats := calculateWalletStats(txs)

	assert.Equal(t, 3, stats.Transactions)
	assert.Equal(t, 2, stats.Assets)
	assert.Equal(t, 1, stats.HeldAssets)
	assert.Equal(t, 2, stats.Tickers)
	assert.InDelta(t, 101.0, stats.BuyCost, 1e-9)
	assert.InDelta(t, 80.0, stats.SellTotal, 1e-9)
}

func TestTypeBreakdown(t *testing.T) {
	txs := domain.Transactions{
		{TransactionType: domain.Sell, Asset: "ethereum"},
		{TransactionType: domain.Buy, Asset: "bitcoin"},
		{TransactionType: domain.Buy, Asset: "bitcoin"},
		{TransactionType: domain.Transfer, Asset: "bitcoin"},
	}

	assert.Equal(t,
		"Asset\tBuy\tSell\tTransfer\n"+
			"bitcoin\t2\t0\t1\n"+
			"ethereum\t0\t1\t0\n",
		typeBreakdown(txs))
}

func TestFindWalletFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.CSV", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	files, err := findWalletFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.json")}, files)

	_, err = findWalletFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
