// Package quotes adds circuit breaking and concurrent fan-out on top of a ports.QuoteProvider.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"cryptoWallet/internal/ports"
)

// BreakerConfig configures the circuit breaker and per-call timeout around a provider.
type BreakerConfig struct {
	Name string
	// Timeout bounds every provider call. Zero disables it.
	Timeout time.Duration
	// MaxFailures is the number of consecutive failures that opens the circuit. Default: 5
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before probing again. Default: 30s
	OpenTimeout time.Duration
	// MaxRequests is the number of probes allowed while half-open. Default: 1
	MaxRequests uint32
	Logger      ports.Logger
}

// Breaker decorates a ports.QuoteProvider with timeout and circuit breaker protection.
type Breaker struct {
	provider ports.QuoteProvider
	cb       *gobreaker.CircuitBreaker
	timeout  time.Duration
	logger   ports.Logger
}

// NewBreaker wraps provider. Unknown tickers and bad requests do not count as provider failures.
func NewBreaker(provider ports.QuoteProvider, cfg BreakerConfig) (*Breaker, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: quote provider is required", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for quote breaker")
	}
	if cfg.Name == "" {
		cfg.Name = "quotes"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	b := &Breaker{
		provider: provider,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}

	maxFailures := cfg.MaxFailures
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ports.ErrUnknownTicker) ||
				errors.Is(err, ports.ErrInvalidRequest)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Warn(context.Background(), "Quote circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	cfg.Logger.Debug(context.Background(), "Quote breaker initialized", map[string]interface{}{
		"name":        cfg.Name,
		"timeout":     cfg.Timeout.String(),
		"maxFailures": cfg.MaxFailures,
		"openTimeout": cfg.OpenTimeout.String(),
	})
	return b, nil
}

// State reports the breaker state ("closed", "half-open" or "open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// GetTickerPrice forwards to the wrapped provider unless the circuit is open.
func (b *Breaker) GetTickerPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	result, err := b.execute(ctx, "GetTickerPrice", func(ctx context.Context) (interface{}, error) {
		return b.provider.GetTickerPrice(ctx, ticker)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.(decimal.Decimal), nil
}

// Ping forwards to the wrapped provider unless the circuit is open.
func (b *Breaker) Ping(ctx context.Context) error {
	_, err := b.execute(ctx, "Ping", func(ctx context.Context) (interface{}, error) {
		return nil, b.provider.Ping(ctx)
	})
	return err
}

func (b *Breaker) execute(ctx context.Context, op string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Debug(ctx, "Circuit breaker open, request rejected", map[string]interface{}{"operation": op})
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrCircuitOpen, err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ports.ErrTimeout) {
		return nil, fmt.Errorf("%s failed after %s: %w: %w", op, b.timeout, ports.ErrTimeout, err)
	}
	return nil, err
}
