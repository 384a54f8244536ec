package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/ports"
)

// Default cache lifetimes.
const (
	DefaultQuoteTTL   = 5 * time.Minute
	DefaultHistoryTTL = 10 * time.Minute
)

// CacheConfig configures a CachingProvider.
type CacheConfig struct {
	Cache      ports.BarCache
	QuoteTTL   time.Duration
	HistoryTTL time.Duration
	Logger     ports.Logger
}

// CachingProvider serves recent responses from a BarCache before asking the
// wrapped provider. Cache failures are logged and bypassed.
type CachingProvider struct {
	inner      ports.MarketDataProvider
	cache      ports.BarCache
	quoteTTL   time.Duration
	historyTTL time.Duration
	logger     ports.Logger
}

var _ ports.MarketDataProvider = (*CachingProvider)(nil)

// NewCachingProvider wraps inner with cfg.Cache.
func NewCachingProvider(inner ports.MarketDataProvider, cfg CacheConfig) (*CachingProvider, error) {
	if inner == nil {
		return nil, fmt.Errorf("provider is required for caching provider")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required for caching provider")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for caching provider")
	}
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = DefaultQuoteTTL
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = DefaultHistoryTTL
	}
	return &CachingProvider{
		inner:      inner,
		cache:      cfg.Cache,
		quoteTTL:   cfg.QuoteTTL,
		historyTTL: cfg.HistoryTTL,
		logger:     cfg.Logger,
	}, nil
}

// Name reports the wrapped provider's name.
func (p *CachingProvider) Name() string {
	return p.inner.Name()
}

// GetSnapshot returns the cached snapshot while it is younger than the quote TTL.
func (p *CachingProvider) GetSnapshot(ctx context.Context) ([]*domain.MarketQuote, error) {
	quotes, err := p.cache.LoadSnapshot(ctx, p.quoteTTL)
	if err == nil && len(quotes) > 0 {
		p.logger.Debug(ctx, "Snapshot served from cache", map[string]interface{}{"count": len(quotes)})
		return quotes, nil
	}
	p.logCacheError(ctx, err, "LoadSnapshot", nil)

	quotes, err = p.inner.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(quotes) > 0 {
		if err := p.cache.SaveSnapshot(ctx, quotes); err != nil {
			p.logCacheError(ctx, err, "SaveSnapshot", nil)
		}
	}
	return quotes, nil
}

// GetHistory returns cached bars for symbol/days while they are younger than the history TTL.
func (p *CachingProvider) GetHistory(ctx context.Context, symbol string, days int) ([]*domain.PriceBar, error) {
	fields := map[string]interface{}{"symbol": symbol, "days": days}

	bars, err := p.cache.LoadHistory(ctx, symbol, days, p.historyTTL)
	if err == nil && len(bars) > 0 {
		p.logger.Debug(ctx, "History served from cache", fields)
		return bars, nil
	}
	p.logCacheError(ctx, err, "LoadHistory", fields)

	bars, err = p.inner.GetHistory(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		if err := p.cache.SaveHistory(ctx, symbol, days, bars); err != nil {
			p.logCacheError(ctx, err, "SaveHistory", fields)
		}
	}
	return bars, nil
}

// logCacheError ignores plain misses.
func (p *CachingProvider) logCacheError(ctx context.Context, err error, op string, fields map[string]interface{}) {
	if err == nil || errors.Is(err, ports.ErrCacheMiss) {
		return
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["operation"] = op
	p.logger.Warn(ctx, "Cache unavailable, bypassing", fields)
}
