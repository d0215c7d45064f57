package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"cryptoWallet/config"
	"cryptoWallet/internal/adapters/binanceclient"
	"cryptoWallet/internal/adapters/csvfile"
	"cryptoWallet/internal/adapters/logger"
	"cryptoWallet/internal/adapters/quotes"
	"cryptoWallet/internal/adapters/sqlite"
	"cryptoWallet/internal/app"
	"cryptoWallet/internal/domain"
	"cryptoWallet/internal/ports"
)

// options are the global flags. Unset flags fall back to the loaded configuration.
type options struct {
	file      string
	dbPath    string
	fromDB    bool
	logLevel  string
	logFormat string
	quoteURL  string
}

// configLoader is called by every command that does work. Help and usage output never
// load the configuration, so a bad environment cannot hide them.
type configLoader func() (*config.Config, error)

func newApp(load configLoader) *cli.App {
	opts := &options{}

	a := cli.NewApp()
	a.Name = "wallet"
	a.Usage = "summarize a crypto transaction history and value the held assets"
	a.HideVersion = true
	a.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "transaction history to read, .json or .csv (default $TRANSACTIONS_FILE)",
			Destination: &opts.file,
		},
		&cli.StringFlag{
			Name:        "db",
			Usage:       "SQLite transaction store (default $DB_PATH)",
			Destination: &opts.dbPath,
		},
		&cli.BoolFlag{
			Name:        "from-db",
			Usage:       "read the history from the store instead of --file",
			Destination: &opts.fromDB,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "debug, info, warn or error (default $LOG_LEVEL)",
			Destination: &opts.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "std, json or console (default $LOG_FORMAT)",
			Destination: &opts.logFormat,
		},
		&cli.StringFlag{
			Name:        "quote-url",
			Usage:       "override the Binance API endpoint",
			EnvVars:     []string{"BINANCE_BASE_URL"},
			Destination: &opts.quoteURL,
		},
	}
	a.Action = func(c *cli.Context) error {
		s, err := newSession(load, opts)
		if err != nil {
			return err
		}
		defer s.close()
		return snapshotAction(c, s)
	}
	a.Commands = []*cli.Command{
		importCommand(load, opts),
		valueCommand(load, opts),
		exportCommand(load, opts),
		pingCommand(load, opts),
	}
	return a
}

// session holds what a single command run needs; the store is opened on first use.
type session struct {
	cfg    *config.Config
	opts   options
	logger ports.Logger
	store  *sqlite.Repository
}

func newSession(load configLoader, flags *options) (*session, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	opts := *flags
	if opts.file == "" {
		opts.file = cfg.TransactionsFile
	}
	if opts.dbPath == "" {
		opts.dbPath = cfg.DBPath
	}
	if opts.logLevel == "" {
		opts.logLevel = cfg.LogLevel.String()
	}
	if opts.logFormat == "" {
		opts.logFormat = cfg.LogFormat
	}

	l, err := logger.New(opts.logFormat, logger.ParseLevel(opts.logLevel))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, opts: opts, logger: l}, nil
}

func (s *session) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing store: %v\n", err)
		}
	}
	_ = s.logger.Sync()
}

func (s *session) openStore() (*sqlite.Repository, error) {
	if s.store != nil {
		return s.store, nil
	}
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: s.opts.dbPath, Logger: s.logger})
	if err != nil {
		return nil, err
	}
	s.store = repo
	return repo, nil
}

func (s *session) source() (ports.TransactionSource, error) {
	if s.opts.fromDB {
		return s.openStore()
	}
	return app.OpenFile(s.opts.file, s.logger)
}

func (s *session) binance() (*binanceclient.Client, error) {
	return binanceclient.New(binanceclient.Config{
		APIKey:        s.cfg.APIKey,
		SecretKey:     s.cfg.SecretKey,
		UseTestnet:    s.cfg.IsTestnet,
		BaseURL:       s.opts.quoteURL,
		QuoteCurrency: s.cfg.QuoteCurrency,
		Logger:        s.logger,
	})
}

// service wires a WalletService; withQuotes adds the circuit-broken Binance provider.
func (s *session) service(withQuotes bool) (*app.WalletService, *binanceclient.Client, error) {
	src, err := s.source()
	if err != nil {
		return nil, nil, err
	}
	svcCfg := app.Config{
		Logger:           s.logger,
		Source:           src,
		QuoteConcurrency: s.cfg.QuoteConcurrency,
	}

	var client *binanceclient.Client
	if withQuotes {
		client, err = s.binance()
		if err != nil {
			return nil, nil, err
		}
		breaker, err := quotes.NewBreaker(client, quotes.BreakerConfig{
			Name:        "binance",
			Timeout:     s.cfg.QuoteTimeout,
			MaxFailures: uint32(s.cfg.QuoteBreakerFailures),
			OpenTimeout: s.cfg.QuoteBreakerTimeout,
			Logger:      s.logger,
		})
		if err != nil {
			return nil, nil, err
		}
		svcCfg.Quotes = breaker
		svcCfg.QuoteCurrencies = client.QuoteCurrencies()
	}

	svc, err := app.NewWalletService(svcCfg)
	return svc, client, err
}

func snapshotAction(c *cli.Context, s *session) error {
	svc, _, err := s.service(false)
	if err != nil {
		return err
	}
	snapshot, err := svc.Snapshot(c.Context)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, snapshot)
}

func importCommand(load configLoader, opts *options) *cli.Command {
	var replace bool
	return &cli.Command{
		Name:      "import",
		Usage:     "copy transaction files into the store",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "replace",
				Usage:       "empty the store before importing",
				Destination: &replace,
			},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(load, opts)
			if err != nil {
				return err
			}
			defer s.close()

			store, err := s.openStore()
			if err != nil {
				return err
			}
			svc, err := app.NewWalletService(app.Config{Logger: s.logger, Source: store, Store: store})
			if err != nil {
				return err
			}

			files := c.Args().Slice()
			if len(files) == 0 {
				files = []string{s.opts.file}
			}
			total := 0
			for i, path := range files {
				from, err := app.OpenFile(path, s.logger)
				if err != nil {
					return err
				}
				n, err := svc.Import(c.Context, from, replace && i == 0)
				if err != nil {
					return fmt.Errorf("importing %s: %w", path, err)
				}
				total += n
			}

			count, err := store.Count(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d transactions into %s (%d stored)\n", total, s.opts.dbPath, count)
			return nil
		},
	}
}

func valueCommand(load configLoader, opts *options) *cli.Command {
	var format string
	return &cli.Command{
		Name:  "value",
		Usage: "value the held assets at current Binance prices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Value:       "table",
				Usage:       "table, csv or json",
				Destination: &format,
			},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(load, opts)
			if err != nil {
				return err
			}
			defer s.close()

			svc, _, err := s.service(true)
			if err != nil {
				return err
			}
			report, err := svc.Report(c.Context)
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "json":
				return writeJSON(c.App.Writer, report)
			case "csv":
				return csvfile.WriteValuation(c.App.Writer, report.Valuation)
			case "table":
				return writeReportTable(c.App.Writer, report)
			default:
				return fmt.Errorf("unknown format %q: %w", format, ports.ErrInvalidRequest)
			}
		},
	}
}

func exportCommand(load configLoader, opts *options) *cli.Command {
	var out, asset string
	var transactions bool
	return &cli.Command{
		Name:  "export",
		Usage: "write the per-asset summary (or the raw transactions) as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file, stdout when empty",
				Destination: &out,
			},
			&cli.BoolFlag{
				Name:        "transactions",
				Usage:       "export the transactions instead of the summary",
				Destination: &transactions,
			},
			&cli.StringFlag{
				Name:        "asset",
				Usage:       "with --transactions, export only the history of this asset",
				Destination: &asset,
			},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(load, opts)
			if err != nil {
				return err
			}
			defer s.close()

			svc, _, err := s.service(false)
			if err != nil {
				return err
			}

			if transactions {
				txs, err := exportedTransactions(c, svc, s, asset)
				if err != nil {
					return err
				}
				if out != "" {
					return csvfile.WriteTransactionsToCSV(txs, out)
				}
				return csvfile.WriteTransactions(c.App.Writer, txs)
			}

			snapshot, err := svc.Snapshot(c.Context)
			if err != nil {
				return err
			}
			if out != "" {
				return csvfile.WriteSnapshotToCSV(snapshot, out)
			}
			return csvfile.WriteSnapshot(c.App.Writer, snapshot)
		},
	}
}

func exportedTransactions(c *cli.Context, svc *app.WalletService, s *session, asset string) (domain.Transactions, error) {
	if asset != "" {
		return svc.History(c.Context, asset)
	}
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	return src.LoadTransactions(c.Context)
}

func pingCommand(load configLoader, opts *options) *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "check that Binance is reachable",
		Action: func(c *cli.Context) error {
			s, err := newSession(load, opts)
			if err != nil {
				return err
			}
			defer s.close()

			svc, client, err := s.service(true)
			if err != nil {
				return err
			}
			if err := svc.PingQuotes(c.Context); err != nil {
				return err
			}
			serverTime, err := client.GetServerTime(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "ok, server time %s\n", serverTime.UTC().Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeReportTable(w io.Writer, report *app.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ASSET\tTICKER\tQUANTITY\tPRICE\tVALUE\tNET INVESTED\tUNREALIZED P/L\t")
	v := report.Valuation
	for _, a := range v.Assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			a.Asset, a.Ticker, a.Quantity.String(), a.Price.String(),
			a.MarketValue.StringFixed(2), a.NetInvested.StringFixed(2), a.UnrealizedPNL.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t%s\t%s\t\n",
		v.TotalMarketValue.StringFixed(2), v.TotalNetInvested.StringFixed(2), v.TotalUnrealizedPNL.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Unpriced) > 0 {
		fmt.Fprintf(w, "\nunpriced: %s\n", strings.Join(v.Unpriced, ", "))
	}
	for _, a := range v.OtherCurrency {
		fmt.Fprintf(w, "not in totals: %s priced via %s, value %s, unrealized P/L %s\n",
			a.Asset, a.Ticker, a.MarketValue.StringFixed(2), a.UnrealizedPNL.StringFixed(2))
	}
	if len(v.NonFinite) > 0 {
		fmt.Fprintf(w, "not a finite quantity: %s\n", strings.Join(v.NonFinite, ", "))
	}
	for _, ticker := range sortedKeys(report.QuoteErrors) {
		fmt.Fprintf(w, "%s: %s\n", ticker, report.QuoteErrors[ticker])
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
