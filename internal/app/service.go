package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cryptoWallet/internal/adapters/quotes"
	"cryptoWallet/internal/domain"
	"cryptoWallet/internal/portfolio"
	"cryptoWallet/internal/ports"
)

// WalletService orchestrates loading a transaction history, summarizing it and pricing it.
type WalletService struct {
	logger           ports.Logger
	source           ports.TransactionSource
	store            ports.TransactionRepository // optional, needed by Import
	quotes           ports.QuoteProvider         // optional, needed by Report
	quoteConcurrency int
	quoteCurrencies  []string
}

// Config holds the dependencies of a WalletService.
type Config struct {
	Logger           ports.Logger
	Source           ports.TransactionSource
	Store            ports.TransactionRepository
	Quotes           ports.QuoteProvider
	QuoteConcurrency int
	// QuoteCurrencies are the currencies report totals are expressed in.
	// Assets priced in any other currency are reported apart. Empty accepts every ticker.
	QuoteCurrencies []string
}

// Report is a snapshot together with its market valuation.
type Report struct {
	Wallet    *portfolio.WalletSnapshot `json:"wallet"`
	Valuation *portfolio.Valuation      `json:"valuation"`
	// QuoteErrors maps a ticker to the reason its price could not be fetched.
	QuoteErrors map[string]string `json:"quoteErrors,omitempty"`
}

// NewWalletService creates a new application service instance.
func NewWalletService(cfg Config) (*WalletService, error) {
	if cfg.Logger == nil || cfg.Source == nil {
		return nil, fmt.Errorf("missing required dependencies for WalletService")
	}
	if cfg.QuoteConcurrency < 0 {
		return nil, fmt.Errorf("configuration QuoteConcurrency cannot be negative")
	}
	return &WalletService{
		logger:           cfg.Logger,
		source:           cfg.Source,
		store:            cfg.Store,
		quotes:           cfg.Quotes,
		quoteConcurrency: cfg.QuoteConcurrency,
		quoteCurrencies:  cfg.QuoteCurrencies,
	}, nil
}

// Snapshot loads the full history from the source and summarizes it.
func (s *WalletService) Snapshot(ctx context.Context) (*portfolio.WalletSnapshot, error) {
	txs, err := s.source.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	snapshot := portfolio.NewWalletSnapshot(txs)
	s.logger.Debug(ctx, "Wallet snapshot built", map[string]interface{}{
		"transactions": len(txs),
		"assets":       len(snapshot.CurrentQuantityByAsset),
		"held":         len(snapshot.HeldAssets),
		"tickers":      len(snapshot.Tickers),
	})
	return snapshot, nil
}

// Import copies every record of from into the store. With replace set the store is
// emptied first, otherwise the records are appended.
func (s *WalletService) Import(ctx context.Context, from ports.TransactionSource, replace bool) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("import requires a transaction store: %w", ports.ErrConfigurationError)
	}
	if from == nil {
		return 0, fmt.Errorf("import requires a transaction source: %w", ports.ErrInvalidRequest)
	}

	txs, err := from.LoadTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions for import: %w", err)
	}

	if replace {
		if err := s.store.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("failed to clear transaction store: %w", err)
		}
	}

	n, err := s.store.SaveAll(ctx, txs)
	if err != nil {
		s.logger.Error(ctx, err, "Import failed", map[string]interface{}{"records": len(txs)})
		return 0, fmt.Errorf("failed to save transactions: %w", err)
	}
	s.logger.Info(ctx, "Transactions imported", map[string]interface{}{"count": n, "replace": replace})
	return n, nil
}

// Report builds the snapshot and values every held asset at the current market price.
// Tickers whose price cannot be fetched are reported, not fatal.
func (s *WalletService) Report(ctx context.Context) (*Report, error) {
	if s.quotes == nil {
		return nil, fmt.Errorf("report requires a quote provider: %w", ports.ErrConfigurationError)
	}

	txs, err := s.source.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	snapshot := portfolio.NewWalletSnapshot(txs)
	assetTickers := portfolio.AssetTickers(txs, s.quoteCurrencies...)

	tickers := heldTickers(snapshot, assetTickers)
	s.logger.Info(ctx, "Fetching quotes", map[string]interface{}{"tickers": len(tickers)})

	res, err := quotes.FetchAll(ctx, s.quotes, tickers, s.quoteConcurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	report := &Report{
		Wallet: snapshot,
		Valuation: portfolio.Value(snapshot, portfolio.SaleProceeds(txs), portfolio.Pricing{
			Prices:       res.Prices,
			AssetTickers: assetTickers,
			Quotes:       s.quoteCurrencies,
		}),
	}
	for _, a := range report.Valuation.OtherCurrency {
		s.logger.Warn(ctx, "Asset priced outside the valuation currency, left out of totals", map[string]interface{}{
			"asset":  a.Asset,
			"ticker": a.Ticker,
		})
	}
	if len(res.Failures) > 0 {
		report.QuoteErrors = make(map[string]string, len(res.Failures))
		for _, ticker := range res.FailedTickers() {
			qErr := res.Failures[ticker]
			report.QuoteErrors[ticker] = qErr.Error()
			s.logger.Warn(ctx, "Quote unavailable", map[string]interface{}{
				"ticker": ticker,
				"error":  qErr.Error(),
				"open":   errors.Is(qErr, ports.ErrCircuitOpen),
			})
		}
	}
	return report, nil
}

// History returns the transactions of one asset in source order. A transaction store
// answers the lookup itself; any other source is loaded and filtered.
func (s *WalletService) History(ctx context.Context, asset string) (domain.Transactions, error) {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, fmt.Errorf("history requires an asset: %w", ports.ErrInvalidRequest)
	}
	if repo, ok := s.source.(ports.TransactionRepository); ok {
		return repo.FindByAsset(ctx, asset)
	}

	txs, err := s.source.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	var out domain.Transactions
	for _, tx := range txs {
		if tx.Asset == asset {
			out = append(out, tx)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no transactions for asset %q: %w", asset, ports.ErrNotFound)
	}
	return out, nil
}

// PingQuotes checks that the quote provider is reachable.
func (s *WalletService) PingQuotes(ctx context.Context) error {
	if s.quotes == nil {
		return fmt.Errorf("no quote provider configured: %w", ports.ErrConfigurationError)
	}
	return s.quotes.Ping(ctx)
}

// heldTickers returns the sorted, distinct tickers of the held assets.
func heldTickers(snapshot *portfolio.WalletSnapshot, assetTickers map[string]string) []string {
	set := make(map[string]struct{}, len(snapshot.HeldAssets))
	for _, asset := range snapshot.HeldAssets {
		if t := assetTickers[asset]; t != "" {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
