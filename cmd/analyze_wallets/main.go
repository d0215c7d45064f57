package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"cryptoWallet/internal/adapters/logger"
	"cryptoWallet/internal/app"
	"cryptoWallet/internal/domain"
	"cryptoWallet/internal/portfolio"
)

func main() {
	dir := "examples"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	// Find all wallet files
	files, err := findWalletFiles(dir)
	if err != nil {
		log.Fatalf("Error finding wallet files: %v", err)
	}

	if len(files) == 0 {
		log.Printf("No wallet files (.json or .csv) found in %s.", dir)
		return
	}

	appLogger := logger.NewStdLogger(logger.LevelWarn)
	ctx := context.Background()

	// Create a tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTxs\tAssets\tHeld\tTickers\tBuyCost\tSellTotal\tNetInvested\t")

	histories := make(map[string]domain.Transactions, len(files))
	for _, file := range files {
		src, err := app.OpenFile(file, appLogger)
		if err != nil {
			log.Printf("Error opening %s: %v", file, err)
			continue
		}
		txs, err := src.LoadTransactions(ctx)
		if err != nil {
			log.Printf("Error reading transactions from %s: %v", file, err)
			continue
		}
		histories[file] = txs

		stats := calculateWalletStats(txs)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t\n",
			filepath.Base(file),
			stats.Transactions,
			stats.Assets,
			stats.HeldAssets,
			stats.Tickers,
			stats.BuyCost,
			stats.SellTotal,
			stats.BuyCost-stats.SellTotal,
		)
	}
	w.Flush()

	fmt.Println("\n## Transaction Type Breakdown")
	for _, file := range files {
		txs, ok := histories[file]
		if !ok {
			continue
		}
		fmt.Printf("\nFile: %s\n", filepath.Base(file))
		fmt.Print(typeBreakdown(txs))
	}
}

// WalletStats holds summary figures for one transaction history
type WalletStats struct {
	Transactions int
	Assets       int
	HeldAssets   int
	Tickers      int
	BuyCost      float64
	SellTotal    float64
}

// calculateWalletStats summarizes a history through the wallet snapshot
func calculateWalletStats(txs domain.Transactions) WalletStats {
	snapshot := portfolio.NewWalletSnapshot(txs)
	stats := WalletStats{
		Transactions: len(txs),
		Assets:       len(snapshot.CurrentQuantityByAsset),
		HeldAssets:   len(snapshot.HeldAssets),
		Tickers:      len(snapshot.Tickers),
	}
	for asset := range snapshot.TotalCostByTypeByAsset {
		stats.BuyCost += snapshot.TotalCostByTypeByAsset.Get(asset, domain.Buy)
		stats.SellTotal += snapshot.TotalCostByTypeByAsset.Get(asset, domain.Sell)
	}
	return stats
}

// typeBreakdown lists, per asset, how many records of each type the history holds
func typeBreakdown(txs domain.Transactions) string {
	counts := make(map[string]map[domain.TransactionType]int)
	for _, tx := range txs {
		if counts[tx.Asset] == nil {
			counts[tx.Asset] = make(map[domain.TransactionType]int)
		}
		counts[tx.Asset][tx.TransactionType]++
	}

	assets := make([]string, 0, len(counts))
	for asset := range counts {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	var b strings.Builder
	b.WriteString("Asset\tBuy\tSell\tTransfer\n")
	for _, asset := range assets {
		c := counts[asset]
		fmt.Fprintf(&b, "%s\t%d\t%d\t%d\n", asset, c[domain.Buy], c[domain.Sell], c[domain.Transfer])
	}
	return b.String()
}

// findWalletFiles finds all JSON and CSV files in the specified directory, sorted by name
func findWalletFiles(dir string) ([]string, error) {
	var files []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !entry.IsDir() && (ext == ".json" || ext == ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}
