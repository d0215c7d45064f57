package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptoWallet/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"
)

const (
	// Base URLs
	baseURLProduction = "https://api.binance.com"
	baseURLTestnet    = "https://testnet.binance.vision"

	defaultQuoteCurrency = "USDT"
)

// Client implements the ports.QuoteProvider interface using the go-binance spot API.
type Client struct {
	spotClient    *binance.Client
	logger        ports.Logger
	quoteCurrency string
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	// BaseURL overrides the production/testnet endpoint when set.
	BaseURL string
	// QuoteCurrency replaces a plain USD quote in wallet tickers (e.g. BTC-USD -> BTCUSDT).
	QuoteCurrency string
	Logger        ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		// Ticker prices are public, so missing keys only matter for signed endpoints.
		cfg.Logger.Debug(context.Background(), "APIKey or SecretKey is empty, using public endpoints only")
	}

	client := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{
		"baseURL": client.BaseURL,
		"testnet": cfg.UseTestnet,
	})

	quote := strings.ToUpper(strings.TrimSpace(cfg.QuoteCurrency))
	if quote == "" {
		quote = defaultQuoteCurrency
	}

	return &Client{
		spotClient:    client,
		logger:        cfg.Logger,
		quoteCurrency: quote,
	}, nil
}

// QuoteCurrencies lists the wallet quotes this client prices in its quote currency:
// the quote currency itself and USD, which NormalizeSymbol maps onto it.
func (c *Client) QuoteCurrencies() []string {
	if c.quoteCurrency == "USD" {
		return []string{"USD"}
	}
	return []string{c.quoteCurrency, "USD"}
}

// NormalizeSymbol turns a wallet ticker into a Binance spot symbol.
// "BTC-USD", "btc/usd" and "BTC_USD" become "BTCUSDT" when the quote currency is USDT;
// an explicit quote such as "ETH/BTC" is kept; unseparated symbols are only upper-cased.
func NormalizeSymbol(ticker, quoteCurrency string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	sep := strings.IndexAny(s, "-/_")
	if sep < 0 {
		return s
	}
	base, quote := s[:sep], s[sep+1:]
	if quote == "USD" && quoteCurrency != "" {
		quote = strings.ToUpper(quoteCurrency)
	}
	return base + quote
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature, malformed key, key without permission
			mappedErr = ports.ErrAuthenticationFailed
		case -1121: // Invalid symbol
			mappedErr = ports.ErrUnknownTicker
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120:
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrQuoteUnavailable
		}
		c.logger.Warn(ctx, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrQuoteUnavailable, err)
	}

	c.logger.Warn(ctx, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// GetTickerPrice retrieves the last traded price for a wallet ticker.
func (c *Client) GetTickerPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	op := "GetTickerPrice"
	symbol := NormalizeSymbol(ticker, c.quoteCurrency)
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("%s failed: %w: empty ticker", op, ports.ErrInvalidRequest)
	}

	prices, err := c.spotClient.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, c.handleError(ctx, err, op)
	}
	for _, p := range prices {
		if p == nil || p.Symbol != symbol {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			parseErr := fmt.Errorf("could not parse price '%s' for %s: %w", p.Price, symbol, err)
			return decimal.Zero, c.handleError(ctx, parseErr, op)
		}
		c.logger.Debug(ctx, "Ticker price fetched", map[string]interface{}{
			"ticker": ticker,
			"symbol": symbol,
			"price":  price.String(),
		})
		return price, nil
	}

	return decimal.Zero, fmt.Errorf("%s failed: %w: no price returned for %s", op, ports.ErrUnknownTicker, symbol)
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	err := c.spotClient.NewPingService().Do(ctx)
	if err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// GetServerTime retrieves the current server time from the exchange.
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	op := "GetServerTime"
	serverTimeMs, err := c.spotClient.NewServerTimeService().Do(ctx)
	if err != nil {
		return time.Time{}, c.handleError(ctx, err, op)
	}
	return time.UnixMilli(serverTimeMs), nil
}
