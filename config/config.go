package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cryptoWallet/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Transaction sources
	TransactionsFile string // JSON or CSV history read by the default command
	DBPath           string // SQLite store used by import and --db

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string          // std, json or console

	// Binance API (ticker prices are public, keys are optional)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Quote lookup
	QuoteCurrency        string        // replaces a USD quote in wallet tickers, e.g. USDT
	QuoteTimeout         time.Duration // per-request timeout
	QuoteConcurrency     int           // max requests in flight
	QuoteBreakerFailures int           // consecutive failures that open the circuit
	QuoteBreakerTimeout  time.Duration // how long the circuit stays open
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Transaction sources
	cfg.TransactionsFile = getEnv("TRANSACTIONS_FILE", "./examples/wallet.json")
	cfg.DBPath = getEnv("DB_PATH", "./data/wallet.db")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "std"))
	switch cfg.LogFormat {
	case "std", "text", "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of std, json, console (got '%s')", cfg.LogFormat))
	}

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	if (cfg.APIKey == "") != (cfg.SecretKey == "") {
		errs = append(errs, "BINANCE_API_KEY and BINANCE_API_SECRET must be set together")
	}

	// Quote lookup
	cfg.QuoteCurrency = strings.ToUpper(strings.TrimSpace(getEnv("QUOTE_CURRENCY", "USDT")))

	quoteTimeoutSeconds, err := getEnvAsIntRequired("QUOTE_TIMEOUT_SECONDS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid QUOTE_TIMEOUT_SECONDS: %v", err))
	} else if quoteTimeoutSeconds <= 0 {
		errs = append(errs, "QUOTE_TIMEOUT_SECONDS must be positive")
	}
	cfg.QuoteTimeout = time.Duration(quoteTimeoutSeconds) * time.Second

	cfg.QuoteConcurrency, err = getEnvAsIntRequired("QUOTE_CONCURRENCY", 4)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid QUOTE_CONCURRENCY: %v", err))
	} else if cfg.QuoteConcurrency <= 0 {
		errs = append(errs, "QUOTE_CONCURRENCY must be positive")
	}

	cfg.QuoteBreakerFailures, err = getEnvAsIntRequired("QUOTE_BREAKER_FAILURES", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid QUOTE_BREAKER_FAILURES: %v", err))
	} else if cfg.QuoteBreakerFailures <= 0 {
		errs = append(errs, "QUOTE_BREAKER_FAILURES must be positive")
	}

	breakerTimeoutSeconds := getEnvAsInt("QUOTE_BREAKER_TIMEOUT_SECONDS", 30)
	if breakerTimeoutSeconds <= 0 {
		errs = append(errs, "QUOTE_BREAKER_TIMEOUT_SECONDS must be positive")
	}
	cfg.QuoteBreakerTimeout = time.Duration(breakerTimeoutSeconds) * time.Second

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
