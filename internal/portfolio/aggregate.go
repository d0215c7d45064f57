// Package portfolio aggregates a transaction history into wallet views.
//
// Every function here is pure: it reads the transactions it is given and returns
// freshly allocated maps and slices. Nothing is cached between calls.
package portfolio

import (
	"encoding/json"
	"sort"
	"strings"

	"cryptoWallet/internal/domain"
)

// AmountByType holds one summed amount per transaction type.
// A type with no contributing transaction is absent, never zero-filled.
type AmountByType map[domain.TransactionType]float64

// MarshalJSON writes the type keys lower-cased ("buy", "sell", "transfer").
// encoding/json would otherwise use the raw string value of the key.
func (m AmountByType) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(m))
	for txType, v := range m {
		out[strings.ToLower(string(txType))] = v
	}
	return json.Marshal(out)
}

// AmountByTypeByAsset maps an asset to its per-type sums.
type AmountByTypeByAsset map[string]AmountByType

// Get returns the sum for asset and type, or 0 when either bucket is missing.
func (m AmountByTypeByAsset) Get(asset string, txType domain.TransactionType) float64 {
	return m[asset][txType] // nil inner map reads as zero
}

// groupBy accumulates value(tx) into the (asset, type) bucket of every transaction.
// Grouping is keyed, so the result does not depend on input order or adjacency.
func groupBy(txs domain.Transactions, value func(domain.Transaction) float64) AmountByTypeByAsset {
	grouped := make(AmountByTypeByAsset)
	for _, tx := range txs {
		byType, ok := grouped[tx.Asset]
		if !ok {
			byType = make(AmountByType)
			grouped[tx.Asset] = byType
		}
		byType[tx.TransactionType] += value(tx)
	}
	return grouped
}

// GroupedQuantity sums AssetQuantity per asset and transaction type.
func GroupedQuantity(txs domain.Transactions) AmountByTypeByAsset {
	return groupBy(txs, func(tx domain.Transaction) float64 { return tx.AssetQuantity })
}

// GroupedCost sums CurrencyQuantity + CurrencyFeesQuantity per asset and transaction type.
func GroupedCost(txs domain.Transactions) AmountByTypeByAsset {
	return groupBy(txs, domain.Transaction.TotalCost)
}

// NetQuantity returns BUY minus SELL quantity for every asset seen in txs.
// Transfers are asset-neutral and ignored. A missing BUY or SELL bucket counts as zero,
// so an asset that was only transferred appears with a net of 0.
func NetQuantity(txs domain.Transactions) map[string]float64 {
	return netFromGrouped(GroupedQuantity(txs))
}

func netFromGrouped(grouped AmountByTypeByAsset) map[string]float64 {
	net := make(map[string]float64, len(grouped))
	for asset := range grouped {
		net[asset] = grouped.Get(asset, domain.Buy) - grouped.Get(asset, domain.Sell)
	}
	return net
}

// HeldAssets returns the assets whose net quantity is strictly positive, sorted by identifier.
func HeldAssets(txs domain.Transactions) []string {
	return heldFromNet(NetQuantity(txs))
}

func heldFromNet(net map[string]float64) []string {
	held := make([]string, 0, len(net))
	for asset, qty := range net {
		if qty > 0 {
			held = append(held, asset)
		}
	}
	sort.Strings(held)
	return held
}

// TickerSet is a deduplicated set of market ticker identifiers.
type TickerSet map[string]struct{}

// Contains reports whether ticker is in the set.
func (s TickerSet) Contains(ticker string) bool {
	_, ok := s[ticker]
	return ok
}

// Sorted returns the tickers in lexical order.
func (s TickerSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s TickerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of tickers, collapsing duplicates.
func (s *TickerSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	set := make(TickerSet, len(list))
	for _, t := range list {
		set[t] = struct{}{}
	}
	*s = set
	return nil
}

// Tickers collects the ticker of every transaction. Empty input yields an empty set.
func Tickers(txs domain.Transactions) TickerSet {
	set := make(TickerSet)
	for _, tx := range txs {
		set[tx.Ticker] = struct{}{}
	}
	return set
}

// AssetTickers maps each asset to the ticker its quote should be looked up with.
// Tickers quoted in one of quotes are preferred over the others; an empty quotes list
// accepts every ticker. Remaining ties go to the lexically smallest ticker, which keeps
// the mapping independent of transaction order.
func AssetTickers(txs domain.Transactions, quotes ...string) map[string]string {
	out := make(map[string]string)
	for _, tx := range txs {
		if tx.Ticker == "" {
			continue
		}
		cur, ok := out[tx.Asset]
		if !ok {
			out[tx.Asset] = tx.Ticker
			continue
		}
		curMatches, newMatches := QuotedIn(cur, quotes), QuotedIn(tx.Ticker, quotes)
		preferred := newMatches && !curMatches
		if preferred || (newMatches == curMatches && tx.Ticker < cur) {
			out[tx.Asset] = tx.Ticker
		}
	}
	return out
}

// QuotedIn reports whether ticker is quoted in one of quotes. A separated ticker
// (BTC-USD, ETH/EUR, DOT_USDT) is matched on the part after the separator, an
// unseparated one (BTCUSDT) on its suffix. An empty quotes list matches everything.
func QuotedIn(ticker string, quotes []string) bool {
	if len(quotes) == 0 {
		return true
	}
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if i := strings.IndexAny(t, "-/_"); i >= 0 {
		q := t[i+1:]
		for _, quote := range quotes {
			if strings.EqualFold(q, quote) {
				return true
			}
		}
		return false
	}
	for _, quote := range quotes {
		if quote != "" && strings.HasSuffix(t, strings.ToUpper(quote)) {
			return true
		}
	}
	return false
}

// SaleProceeds sums, per asset, what the SELL transactions actually returned:
// the currency received minus the fees paid on the sale.
func SaleProceeds(txs domain.Transactions) map[string]float64 {
	out := make(map[string]float64)
	for _, tx := range txs {
		if tx.TransactionType == domain.Sell {
			out[tx.Asset] += tx.CurrencyQuantity - tx.CurrencyFeesQuantity
		}
	}
	return out
}
