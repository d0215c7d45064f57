package quotes

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cryptoWallet/internal/ports"
)

// DefaultConcurrency is used when FetchAll is given a non-positive limit.
const DefaultConcurrency = 4

// Result holds the prices that were fetched and the reason each missing one failed.
type Result struct {
	Prices   map[string]decimal.Decimal
	Failures map[string]error
}

// FailedTickers returns the tickers without a price, sorted.
func (r *Result) FailedTickers() []string {
	out := make([]string, 0, len(r.Failures))
	for t := range r.Failures {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FetchAll looks up every ticker with at most concurrency calls in flight.
// A failing ticker is recorded in Result.Failures and does not stop the others;
// only cancellation of ctx aborts the fan-out.
func FetchAll(ctx context.Context, provider ports.QuoteProvider, tickers []string, concurrency int) (*Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	res := &Result{
		Prices:   make(map[string]decimal.Decimal, len(tickers)),
		Failures: make(map[string]error),
	}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	seen := make(map[string]struct{}, len(tickers))
	for _, ticker := range tickers {
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			price, err := provider.GetTickerPrice(ctx, ticker)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures[ticker] = err
				return nil
			}
			res.Prices[ticker] = price
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, ctx.Err()
}
