package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpillora/backoff"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/ports"
)

// RetryConfig configures a RetryingProvider.
type RetryConfig struct {
	MaxRetries int           // Attempts after the first, e.g., 3
	MinDelay   time.Duration // First backoff delay
	MaxDelay   time.Duration // Backoff ceiling
	Logger     ports.Logger
}

// RetryingProvider repeats failed provider calls with exponential backoff.
// Invalid requests, unknown symbols and cancellation are not retried.
type RetryingProvider struct {
	inner      ports.MarketDataProvider
	maxRetries int
	minDelay   time.Duration
	maxDelay   time.Duration
	logger     ports.Logger
}

var _ ports.MarketDataProvider = (*RetryingProvider)(nil)

// NewRetryingProvider wraps inner.
func NewRetryingProvider(inner ports.MarketDataProvider, cfg RetryConfig) (*RetryingProvider, error) {
	if inner == nil {
		return nil, fmt.Errorf("provider is required for retrying provider")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for retrying provider")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", cfg.MaxRetries)
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &RetryingProvider{
		inner:      inner,
		maxRetries: cfg.MaxRetries,
		minDelay:   cfg.MinDelay,
		maxDelay:   cfg.MaxDelay,
		logger:     cfg.Logger,
	}, nil
}

// Name reports the wrapped provider's name.
func (p *RetryingProvider) Name() string {
	return p.inner.Name()
}

// GetSnapshot calls the wrapped provider until it succeeds or retries run out.
func (p *RetryingProvider) GetSnapshot(ctx context.Context) ([]*domain.MarketQuote, error) {
	var quotes []*domain.MarketQuote
	err := p.do(ctx, "GetSnapshot", nil, func() error {
		var err error
		quotes, err = p.inner.GetSnapshot(ctx)
		return err
	})
	return quotes, err
}

// GetHistory calls the wrapped provider until it succeeds or retries run out.
func (p *RetryingProvider) GetHistory(ctx context.Context, symbol string, days int) ([]*domain.PriceBar, error) {
	var bars []*domain.PriceBar
	err := p.do(ctx, "GetHistory", map[string]interface{}{"symbol": symbol}, func() error {
		var err error
		bars, err = p.inner.GetHistory(ctx, symbol, days)
		return err
	})
	return bars, err
}

func (p *RetryingProvider) do(ctx context.Context, op string, fields map[string]interface{}, call func() error) error {
	b := &backoff.Backoff{Min: p.minDelay, Max: p.maxDelay, Factor: 2, Jitter: true}

	for {
		err := call()
		if err == nil || !retryable(err) {
			return err
		}
		if int(b.Attempt()) >= p.maxRetries {
			return err
		}

		delay := b.Duration()
		logFields := map[string]interface{}{"operation": op, "attempt": int(b.Attempt()), "delay": delay.String()}
		for k, v := range fields {
			logFields[k] = v
		}
		p.logger.Warn(ctx, "Provider call failed, retrying", logFields)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s retry aborted: %w: %w", op, ports.ErrContextCanceled, ctx.Err())
		}
	}
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, ports.ErrContextCanceled),
		errors.Is(err, ports.ErrInvalidRequest),
		errors.Is(err, ports.ErrNotFound):
		return false
	default:
		return true
	}
}
