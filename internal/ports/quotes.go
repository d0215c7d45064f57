package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// QuoteProvider looks up live market prices.
// This abstraction keeps the valuation logic independent of any specific price service.
type QuoteProvider interface {
	// GetTickerPrice retrieves the last traded price for a ticker (e.g. "BTC-USD").
	GetTickerPrice(ctx context.Context, ticker string) (decimal.Decimal, error)

	// Ping checks the connectivity to the provider.
	Ping(ctx context.Context) error
}
