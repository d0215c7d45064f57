package portfolio

import "cryptoWallet/internal/domain"

// WalletSnapshot is the aggregated view of a transaction history.
// It is built once by NewWalletSnapshot and must be treated as read-only.
type WalletSnapshot struct {
	QuantityByTypeByAsset  AmountByTypeByAsset `json:"quantityByTypeByAsset"`
	TotalCostByTypeByAsset AmountByTypeByAsset `json:"totalCostByTypeByAsset"`
	CurrentQuantityByAsset map[string]float64  `json:"currentQuantityByAsset"`
	HeldAssets             []string            `json:"heldAssets"`
	Tickers                TickerSet           `json:"tickers"`
}

// NewWalletSnapshot runs every aggregation over txs and assembles the result.
// The same input always yields a structurally identical snapshot.
func NewWalletSnapshot(txs domain.Transactions) *WalletSnapshot {
	quantities := GroupedQuantity(txs)
	net := netFromGrouped(quantities)
	return &WalletSnapshot{
		QuantityByTypeByAsset:  quantities,
		TotalCostByTypeByAsset: GroupedCost(txs),
		CurrentQuantityByAsset: net,
		HeldAssets:             heldFromNet(net),
		Tickers:                Tickers(txs),
	}
}

// IsHeld reports whether asset has a strictly positive net quantity.
func (w *WalletSnapshot) IsHeld(asset string) bool {
	return w.CurrentQuantityByAsset[asset] > 0
}
