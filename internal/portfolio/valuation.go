package portfolio

import (
	"math"

	"github.com/shopspring/decimal"

	"cryptoWallet/internal/domain"
)

// AssetValuation is the market view of one held asset.
type AssetValuation struct {
	Asset         string          `json:"asset"`
	Ticker        string          `json:"ticker"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	MarketValue   decimal.Decimal `json:"marketValue"`
	NetInvested   decimal.Decimal `json:"netInvested"`   // BUY cost plus fees minus SELL proceeds net of fees
	UnrealizedPNL decimal.Decimal `json:"unrealizedPnl"` // MarketValue - NetInvested
}

// Valuation prices every held asset of a snapshot.
type Valuation struct {
	Assets             []AssetValuation `json:"assets"`
	TotalMarketValue   decimal.Decimal  `json:"totalMarketValue"`
	TotalNetInvested   decimal.Decimal  `json:"totalNetInvested"`
	TotalUnrealizedPNL decimal.Decimal  `json:"totalUnrealizedPnl"`
	// Unpriced lists held assets with no ticker or no quote.
	Unpriced []string `json:"unpriced"`
	// NonFinite lists held assets whose quantity or cost is NaN or infinite.
	NonFinite []string `json:"nonFinite"`
	// OtherCurrency holds assets priced through a ticker outside the valuation
	// currencies. They are valued but left out of the totals.
	OtherCurrency []AssetValuation `json:"otherCurrency"`
}

// Pricing is the market input of a valuation.
type Pricing struct {
	Prices       map[string]decimal.Decimal // keyed by ticker
	AssetTickers map[string]string          // asset to ticker, see AssetTickers
	// Quotes are the currencies the totals are expressed in. Empty accepts every ticker.
	Quotes []string
}

// Value prices the held assets of w. proceeds holds the net SELL proceeds per asset
// (see SaleProceeds). Assets keep the order of w.HeldAssets, so the result is
// deterministic.
func Value(w *WalletSnapshot, proceeds map[string]float64, p Pricing) *Valuation {
	v := &Valuation{
		Assets:        make([]AssetValuation, 0, len(w.HeldAssets)),
		Unpriced:      make([]string, 0),
		NonFinite:     make([]string, 0),
		OtherCurrency: make([]AssetValuation, 0),
	}

	for _, asset := range w.HeldAssets {
		qty := w.CurrentQuantityByAsset[asset]
		invested := w.TotalCostByTypeByAsset.Get(asset, domain.Buy) - proceeds[asset]
		if !isFinite(qty) || !isFinite(invested) {
			v.NonFinite = append(v.NonFinite, asset)
			continue
		}

		ticker := p.AssetTickers[asset]
		price, ok := p.Prices[ticker]
		if ticker == "" || !ok {
			v.Unpriced = append(v.Unpriced, asset)
			continue
		}

		quantity := decimal.NewFromFloat(qty)
		netInvested := decimal.NewFromFloat(invested)
		marketValue := quantity.Mul(price)
		pnl := marketValue.Sub(netInvested)

		av := AssetValuation{
			Asset:         asset,
			Ticker:        ticker,
			Quantity:      quantity,
			Price:         price,
			MarketValue:   marketValue,
			NetInvested:   netInvested,
			UnrealizedPNL: pnl,
		}
		if !QuotedIn(ticker, p.Quotes) {
			v.OtherCurrency = append(v.OtherCurrency, av)
			continue
		}
		v.Assets = append(v.Assets, av)
		v.TotalMarketValue = v.TotalMarketValue.Add(marketValue)
		v.TotalNetInvested = v.TotalNetInvested.Add(netInvested)
		v.TotalUnrealizedPNL = v.TotalUnrealizedPNL.Add(pnl)
	}
	return v
}

// decimal.NewFromFloat panics on NaN and infinities.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
