package marketdata

import (
	"context"
	"sync"
	"time"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/ports"
)

type mockLogger struct {
	mu       sync.Mutex
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// mockProvider fails with errs in order, then succeeds.
type mockProvider struct {
	quotes        []*domain.MarketQuote
	bars          []*domain.PriceBar
	errs          []error
	snapshotCalls int
	historyCalls  int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) nextErr() error {
	if len(m.errs) == 0 {
		return nil
	}
	err := m.errs[0]
	m.errs = m.errs[1:]
	return err
}

func (m *mockProvider) GetSnapshot(ctx context.Context) ([]*domain.MarketQuote, error) {
	m.snapshotCalls++
	if err := m.nextErr(); err != nil {
		return nil, err
	}
	return m.quotes, nil
}

func (m *mockProvider) GetHistory(ctx context.Context, symbol string, days int) ([]*domain.PriceBar, error) {
	m.historyCalls++
	if err := m.nextErr(); err != nil {
		return nil, err
	}
	return m.bars, nil
}

// mockCache is an in-memory BarCache that ignores maxAge unless expired is set.
type mockCache struct {
	quotes   []*domain.MarketQuote
	bars     map[string][]*domain.PriceBar
	expired  bool
	loadErr  error
	saveErr  error
	lastTTL  time.Duration
	saveHits int
}

func newMockCache() *mockCache {
	return &mockCache{bars: make(map[string][]*domain.PriceBar)}
}

func (c *mockCache) SaveSnapshot(ctx context.Context, quotes []*domain.MarketQuote) error {
	c.saveHits++
	if c.saveErr != nil {
		return c.saveErr
	}
	c.quotes = quotes
	return nil
}

func (c *mockCache) LoadSnapshot(ctx context.Context, maxAge time.Duration) ([]*domain.MarketQuote, error) {
	c.lastTTL = maxAge
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	if c.expired || c.quotes == nil {
		return nil, ports.ErrCacheMiss
	}
	return c.quotes, nil
}

func (c *mockCache) SaveHistory(ctx context.Context, symbol string, days int, bars []*domain.PriceBar) error {
	c.saveHits++
	if c.saveErr != nil {
		return c.saveErr
	}
	c.bars[symbol] = bars
	return nil
}

func (c *mockCache) LoadHistory(ctx context.Context, symbol string, days int, maxAge time.Duration) ([]*domain.PriceBar, error) {
	c.lastTTL = maxAge
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	bars, ok := c.bars[symbol]
	if c.expired || !ok {
		return nil, ports.ErrCacheMiss
	}
	return bars, nil
}
