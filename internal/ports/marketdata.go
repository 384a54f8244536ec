package ports

import (
	"context"
	"time"

	"aShareScanner/internal/domain"
)

// MarketDataProvider supplies quotes and daily history for the scanner.
// Implementations normalise every quote so all numeric fields are populated (0 when unknown).
type MarketDataProvider interface {
	// Name identifies the provider in logs.
	Name() string

	// GetSnapshot returns the current quote of every instrument the provider covers.
	GetSnapshot(ctx context.Context) ([]*domain.MarketQuote, error)

	// GetHistory returns forward-adjusted daily bars for the trailing number of days,
	// ascending by date. An unknown symbol yields an empty slice, not an error.
	GetHistory(ctx context.Context, symbol string, days int) ([]*domain.PriceBar, error)
}

// BarCache stores provider responses for a bounded time.
// Lookups return ErrCacheMiss when nothing younger than maxAge exists.
type BarCache interface {
	// SaveSnapshot replaces the cached market snapshot.
	SaveSnapshot(ctx context.Context, quotes []*domain.MarketQuote) error
	// LoadSnapshot returns the cached snapshot if it is younger than maxAge.
	LoadSnapshot(ctx context.Context, maxAge time.Duration) ([]*domain.MarketQuote, error)
	// SaveHistory replaces the cached history of one symbol/window.
	SaveHistory(ctx context.Context, symbol string, days int, bars []*domain.PriceBar) error
	// LoadHistory returns cached bars for one symbol/window if younger than maxAge.
	LoadHistory(ctx context.Context, symbol string, days int, maxAge time.Duration) ([]*domain.PriceBar, error)
}
