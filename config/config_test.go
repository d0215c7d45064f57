package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoWallet/internal/adapters/logger"
)

var configKeys = []string{
	"TRANSACTIONS_FILE", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT",
	"BINANCE_API_KEY", "BINANCE_API_SECRET", "IS_TESTNET",
	"QUOTE_CURRENCY", "QUOTE_TIMEOUT_SECONDS", "QUOTE_CONCURRENCY",
	"QUOTE_BREAKER_FAILURES", "QUOTE_BREAKER_TIMEOUT_SECONDS",
}

// clearEnv blanks every key so values from the host environment do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./examples/wallet.json", cfg.TransactionsFile)
	assert.Equal(t, "./data/wallet.db", cfg.DBPath)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "std", cfg.LogFormat)
	assert.False(t, cfg.IsTestnet)
	assert.Equal(t, "USDT", cfg.QuoteCurrency)
	assert.Equal(t, 10*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, 4, cfg.QuoteConcurrency)
	assert.Equal(t, 5, cfg.QuoteBreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.QuoteBreakerTimeout)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSACTIONS_FILE", "/tmp/history.csv")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_API_SECRET", "secret")
	t.Setenv("IS_TESTNET", "true")
	t.Setenv("QUOTE_CURRENCY", " busd ")
	t.Setenv("QUOTE_TIMEOUT_SECONDS", "3")
	t.Setenv("QUOTE_CONCURRENCY", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/history.csv", cfg.TransactionsFile)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.IsTestnet)
	assert.Equal(t, "BUSD", cfg.QuoteCurrency)
	assert.Equal(t, 3*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, 8, cfg.QuoteConcurrency)
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("BINANCE_API_KEY", "only-key")
	t.Setenv("QUOTE_TIMEOUT_SECONDS", "soon")
	t.Setenv("QUOTE_CONCURRENCY", "0")
	t.Setenv("QUOTE_BREAKER_FAILURES", "-1")

	_, err := LoadConfig()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "LOG_FORMAT")
	assert.Contains(t, msg, "BINANCE_API_KEY and BINANCE_API_SECRET")
	assert.Contains(t, msg, "invalid QUOTE_TIMEOUT_SECONDS")
	assert.Contains(t, msg, "QUOTE_CONCURRENCY must be positive")
	assert.Contains(t, msg, "QUOTE_BREAKER_FAILURES must be positive")
}
