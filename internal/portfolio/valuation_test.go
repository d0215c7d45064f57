package portfolio

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoWallet/internal/domain"
)

func TestValue(t *testing.T) {
	txs := domain.Transactions{
		newTx(domain.Buy, "bitcoin", "BTC-USD", 2, 20000, 20),
		newTx(domain.Sell, "bitcoin", "BTC-USD", 0.5, 6000, 10),
		newTx(domain.Buy, "ethereum", "ETH-USD", 4, 4000, 4),
		newTx(domain.Buy, "dogecoin", "", 1000, 50, 1),
		newTx(domain.Sell, "litecoin", "LTC-USD", 1, 80, 1),
	}
	w := NewWalletSnapshot(txs)
	prices := map[string]decimal.Decimal{
		"BTC-USD": decimal.RequireFromString("30000"),
		"LTC-USD": decimal.RequireFromString("75"),
	}

	v := Value(w, SaleProceeds(txs), Pricing{Prices: prices, AssetTickers: AssetTickers(txs)})

	require.Len(t, v.Assets, 1)
	btc := v.Assets[0]
	assert.Equal(t, "bitcoin", btc.Asset)
	assert.Equal(t, "BTC-USD", btc.Ticker)
	assert.True(t, btc.Quantity.Equal(decimal.RequireFromString("1.5")), btc.Quantity.String())
	assert.True(t, btc.MarketValue.Equal(decimal.RequireFromString("45000")), btc.MarketValue.String())
	// 20020 paid - (6000 - 10) received
	assert.True(t, btc.NetInvested.Equal(decimal.RequireFromString("14030")), btc.NetInvested.String())
	assert.True(t, btc.UnrealizedPNL.Equal(decimal.RequireFromString("30970")), btc.UnrealizedPNL.String())

	assert.True(t, v.TotalMarketValue.Equal(btc.MarketValue))
	assert.True(t, v.TotalUnrealizedPNL.Equal(btc.UnrealizedPNL))
	// litecoin is not held, so it is neither valued nor reported as unpriced
	assert.Equal(t, []string{"dogecoin", "ethereum"}, v.Unpriced)
	assert.Empty(t, v.NonFinite)
	assert.Empty(t, v.OtherCurrency)
}

func TestValue_SellFeesReduceProceeds(t *testing.T) {
	txs := domain.Transactions{
		newBitcoinBuy(1, 100, 0),
		newTx(domain.Sell, "bitcoin", "BTC-USD", 0.5, 100, 10),
	}
	prices := map[string]decimal.Decimal{"BTC-USD": decimal.NewFromInt(200)}

	v := Value(NewWalletSnapshot(txs), SaleProceeds(txs), Pricing{Prices: prices, AssetTickers: AssetTickers(txs)})

	require.Len(t, v.Assets, 1)
	btc := v.Assets[0]
	assert.True(t, btc.MarketValue.Equal(decimal.NewFromInt(100)), btc.MarketValue.String())
	assert.True(t, btc.NetInvested.Equal(decimal.NewFromInt(10)), btc.NetInvested.String())
	assert.True(t, btc.UnrealizedPNL.Equal(decimal.NewFromInt(90)), btc.UnrealizedPNL.String())
}

func TestValue_OtherCurrencyLeftOutOfTotals(t *testing.T) {
	txs := domain.Transactions{
		newBitcoinBuy(1, 100, 0),
		newTx(domain.Buy, "ethereum", "ETH-EUR", 2, 300, 0),
	}
	prices := map[string]decimal.Decimal{
		"BTC-USD": decimal.NewFromInt(200),
		"ETH-EUR": decimal.NewFromInt(150),
	}
	quotes := []string{"USDT", "USD"}

	v := Value(NewWalletSnapshot(txs), SaleProceeds(txs), Pricing{
		Prices:       prices,
		AssetTickers: AssetTickers(txs, quotes...),
		Quotes:       quotes,
	})

	require.Len(t, v.Assets, 1)
	assert.Equal(t, "bitcoin", v.Assets[0].Asset)
	require.Len(t, v.OtherCurrency, 1)
	eth := v.OtherCurrency[0]
	assert.Equal(t, "ETH-EUR", eth.Ticker)
	assert.True(t, eth.MarketValue.Equal(decimal.NewFromInt(300)), eth.MarketValue.String())
	assert.True(t, v.TotalMarketValue.Equal(decimal.NewFromInt(200)), v.TotalMarketValue.String())
	assert.True(t, v.TotalNetInvested.Equal(decimal.NewFromInt(100)), v.TotalNetInvested.String())
	assert.Empty(t, v.Unpriced)
}

func TestValue_NonFiniteQuantity(t *testing.T) {
	txs := domain.Transactions{
		newTx(domain.Buy, "bitcoin", "BTC-USD", math.Inf(1), 100, 1),
		newTx(domain.Buy, "ethereum", "ETH-USD", 1, 100, math.NaN()),
	}
	w := NewWalletSnapshot(txs)
	prices := map[string]decimal.Decimal{
		"BTC-USD": decimal.NewFromInt(1),
		"ETH-USD": decimal.NewFromInt(1),
	}

	v := Value(w, SaleProceeds(txs), Pricing{Prices: prices, AssetTickers: AssetTickers(txs)})

	assert.Empty(t, v.Assets)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, v.NonFinite)
	assert.True(t, v.TotalMarketValue.IsZero())
}
