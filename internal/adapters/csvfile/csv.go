// Package csvfile reads transaction histories from CSV and writes wallet views to CSV.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptoWallet/internal/domain"
	"cryptoWallet/internal/portfolio"
	"cryptoWallet/internal/ports"
)

// transactionHeader uses the JSON field names so both formats stay interchangeable.
var transactionHeader = []string{
	"source", "destination", "transactionType", "ticker", "asset", "assetQuantity",
	"currency", "currencyQuantity", "currencyFees", "currencyFeesQuantity", "sentDate", "receivedDate",
}

// Loader implements ports.TransactionSource for a CSV file.
type Loader struct {
	path   string
	logger ports.Logger
}

// Config holds configuration for the CSV loader.
type Config struct {
	Path   string
	Logger ports.Logger
}

// NewLoader creates a loader for cfg.Path.
func NewLoader(cfg Config) (*Loader, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for CSV loader")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("transaction file path is required: %w", ports.ErrConfigurationError)
	}
	return &Loader{path: cfg.Path, logger: cfg.Logger}, nil
}

// LoadTransactions reads and validates the CSV file.
func (l *Loader) LoadTransactions(ctx context.Context) (domain.Transactions, error) {
	txs, err := ReadTransactionsFromCSV(l.path)
	if err != nil {
		l.logger.Error(ctx, err, "Failed to load transaction CSV")
		return nil, err
	}
	l.logger.Info(ctx, "Transactions loaded", map[string]interface{}{"path": l.path, "count": len(txs)})
	return txs, nil
}

// ReadTransactionsFromCSV loads and validates a transaction CSV file.
func ReadTransactionsFromCSV(filename string) (domain.Transactions, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", filename, ports.ErrSourceUnreadable, err)
	}
	defer file.Close()

	txs, err := ReadTransactions(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return txs, nil
}

// ReadTransactions decodes transactions from r. The header row may list the columns in any order.
func ReadTransactions(r io.Reader) (domain.Transactions, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.Transactions{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ports.ErrMalformedSource, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range transactionHeader {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ports.ErrMalformedSource, name)
		}
	}

	txs := make(domain.Transactions, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ports.ErrMalformedSource, line, err)
		}
		tx, err := parseTransaction(record, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ports.ErrMalformedSource, line, err)
		}
		txs = append(txs, tx)
	}

	txs = txs.Normalized()
	if err := txs.ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidTransaction, err)
	}
	return txs, nil
}

func parseTransaction(record []string, index map[string]int) (domain.Transaction, error) {
	field := func(name string) string { return record[index[name]] }
	var tx domain.Transaction
	var err error

	tx.Source = domain.Entity(field("source"))
	tx.Destination = domain.Entity(field("destination"))
	tx.Ticker = field("ticker")
	tx.Asset = field("asset")
	tx.Currency = field("currency")
	tx.CurrencyFees = field("currencyFees")

	if tx.TransactionType, err = domain.ParseTransactionType(field("transactionType")); err != nil {
		return tx, err
	}
	if tx.AssetQuantity, err = parseFloat("assetQuantity", field("assetQuantity")); err != nil {
		return tx, err
	}
	if tx.CurrencyQuantity, err = parseFloat("currencyQuantity", field("currencyQuantity")); err != nil {
		return tx, err
	}
	if tx.CurrencyFeesQuantity, err = parseFloat("currencyFeesQuantity", field("currencyFeesQuantity")); err != nil {
		return tx, err
	}
	if tx.SentDate, err = parseTime("sentDate", field("sentDate")); err != nil {
		return tx, err
	}
	if tx.ReceivedDate, err = parseTime("receivedDate", field("receivedDate")); err != nil {
		return tx, err
	}
	return tx, nil
}

func parseFloat(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s '%s': %w", name, s, err)
	}
	return v, nil
}

func parseTime(name, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s '%s': %w", name, s, err)
	}
	return v, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteTransactionsToCSV writes txs with the same header ReadTransactions expects.
func WriteTransactionsToCSV(txs domain.Transactions, filename string) error {
	return writeFile(filename, func(w io.Writer) error { return WriteTransactions(w, txs) })
}

// WriteTransactions encodes txs to w.
func WriteTransactions(w io.Writer, txs domain.Transactions) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(transactionHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		err := writer.Write([]string{
			string(tx.Source),
			string(tx.Destination),
			strings.ToLower(string(tx.TransactionType)),
			tx.Ticker,
			tx.Asset,
			formatFloat(tx.AssetQuantity),
			tx.Currency,
			formatFloat(tx.CurrencyQuantity),
			tx.CurrencyFees,
			formatFloat(tx.CurrencyFeesQuantity),
			tx.SentDate.Format(time.RFC3339),
			tx.ReceivedDate.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSnapshot writes one row per asset: the per-type quantity and cost sums, the net
// quantity and whether the asset is held. Rows are sorted by asset.
func WriteSnapshot(w io.Writer, snapshot *portfolio.WalletSnapshot) error {
	writer := csv.NewWriter(w)

	header := []string{"asset"}
	for _, t := range domain.TransactionTypes {
		header = append(header, strings.ToLower(string(t))+"_quantity")
	}
	for _, t := range domain.TransactionTypes {
		header = append(header, strings.ToLower(string(t))+"_cost")
	}
	header = append(header, "net_quantity", "held")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, asset := range sortedAssets(snapshot) {
		row := []string{asset}
		for _, t := range domain.TransactionTypes {
			row = append(row, formatFloat(snapshot.QuantityByTypeByAsset.Get(asset, t)))
		}
		for _, t := range domain.TransactionTypes {
			row = append(row, formatFloat(snapshot.TotalCostByTypeByAsset.Get(asset, t)))
		}
		row = append(row,
			formatFloat(snapshot.CurrentQuantityByAsset[asset]),
			strconv.FormatBool(snapshot.IsHeld(asset)),
		)
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSnapshotToCSV writes the snapshot rows to filename.
func WriteSnapshotToCSV(snapshot *portfolio.WalletSnapshot, filename string) error {
	return writeFile(filename, func(w io.Writer) error { return WriteSnapshot(w, snapshot) })
}

// WriteValuation writes one row per priced asset followed by a total row. Assets priced
// in another currency come after the total, which does not include them.
func WriteValuation(w io.Writer, v *portfolio.Valuation) error {
	writer := csv.NewWriter(w)
	writer.Write([]string{"asset", "ticker", "quantity", "price", "market_value", "net_invested", "unrealized_pnl"})
	for _, a := range v.Assets {
		writer.Write(valuationRow(a))
	}
	writer.Write([]string{
		"TOTAL", "", "", "",
		v.TotalMarketValue.StringFixed(2),
		v.TotalNetInvested.StringFixed(2),
		v.TotalUnrealizedPNL.StringFixed(2),
	})
	for _, a := range v.OtherCurrency {
		writer.Write(valuationRow(a))
	}
	writer.Flush()
	return writer.Error()
}

func valuationRow(a portfolio.AssetValuation) []string {
	return []string{
		a.Asset,
		a.Ticker,
		a.Quantity.String(),
		a.Price.String(),
		a.MarketValue.StringFixed(2),
		a.NetInvested.StringFixed(2),
		a.UnrealizedPNL.StringFixed(2),
	}
}

// WriteQuotes writes one "ticker,price,fetched_at" row per price, sorted by ticker.
func WriteQuotes(w io.Writer, prices map[string]decimal.Decimal, fetchedAt time.Time) error {
	tickers := make([]string, 0, len(prices))
	for t := range prices {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	writer := csv.NewWriter(w)
	writer.Write([]string{"ticker", "price", "fetched_at"})
	for _, t := range tickers {
		writer.Write([]string{t, prices[t].String(), fetchedAt.UTC().Format(time.RFC3339)})
	}
	writer.Flush()
	return writer.Error()
}

// WriteQuotesToCSV writes the quote rows to filename.
func WriteQuotesToCSV(prices map[string]decimal.Decimal, fetchedAt time.Time, filename string) error {
	return writeFile(filename, func(w io.Writer) error { return WriteQuotes(w, prices, fetchedAt) })
}

// writeFile creates filename and runs write on it. A failed Close is reported
// when the write itself succeeded.
func writeFile(filename string, write func(io.Writer) error) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", filename, cerr)
		}
	}()
	if err := write(file); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

func sortedAssets(snapshot *portfolio.WalletSnapshot) []string {
	assets := make([]string, 0, len(snapshot.CurrentQuantityByAsset))
	for asset := range snapshot.CurrentQuantityByAsset {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}
