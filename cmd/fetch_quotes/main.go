package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"cryptoWallet/config"
	"cryptoWallet/internal/adapters/binanceclient"
	"cryptoWallet/internal/adapters/csvfile"
	"cryptoWallet/internal/adapters/logger"
	"cryptoWallet/internal/adapters/quotes"
	"cryptoWallet/internal/app"
	"cryptoWallet/internal/portfolio"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Quote Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:        cfg.APIKey,
		SecretKey:     cfg.SecretKey,
		UseTestnet:    cfg.IsTestnet,
		QuoteCurrency: cfg.QuoteCurrency,
		Logger:        appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	serverTime, err := binanceClient.GetServerTime(ctx)
	if err != nil {
		log.Fatalf("Error reaching Binance: %v", err)
	}
	appLogger.Info(ctx, "Binance client initialized", map[string]interface{}{"serverTime": serverTime})

	// 4. Tickers from the command line, or every ticker of the configured history
	tickers := os.Args[1:]
	if len(tickers) == 0 {
		src, err := app.OpenFile(cfg.TransactionsFile, appLogger)
		if err != nil {
			log.Fatalf("Error opening %s: %v", cfg.TransactionsFile, err)
		}
		txs, err := src.LoadTransactions(ctx)
		if err != nil {
			log.Fatalf("Error reading %s: %v", cfg.TransactionsFile, err)
		}
		tickers = portfolio.Tickers(txs).Sorted()
	}

	breaker, err := quotes.NewBreaker(binanceClient, quotes.BreakerConfig{
		Name:        "binance",
		Timeout:     cfg.QuoteTimeout,
		MaxFailures: uint32(cfg.QuoteBreakerFailures),
		OpenTimeout: cfg.QuoteBreakerTimeout,
		Logger:      appLogger,
	})
	if err != nil {
		log.Fatalf("Error creating quote breaker: %v", err)
	}

	fmt.Printf("Fetching %d quotes...\n", len(tickers))
	res, err := quotes.FetchAll(ctx, breaker, tickers, cfg.QuoteConcurrency)
	if err != nil {
		log.Fatalf("Error fetching quotes: %v", err)
	}
	for _, ticker := range res.FailedTickers() {
		appLogger.Warn(ctx, "Quote unavailable", map[string]interface{}{"ticker": ticker, "error": res.Failures[ticker].Error()})
	}
	appLogger.Info(ctx, "Fetched quotes", map[string]interface{}{"count": len(res.Prices), "failed": len(res.Failures)})

	filename := filepath.Join("data", fmt.Sprintf("quotes_%s.csv", serverTime.UTC().Format("20060102_150405")))
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}
	err = csvfile.WriteQuotesToCSV(res.Prices, serverTime, filename)
	if err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
