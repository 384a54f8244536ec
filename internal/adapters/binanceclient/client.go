package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/marketdata"
	"aShareScanner/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	dailyInterval = "1d"
	maxKlineLimit = 1500
)

// Client implements ports.MarketDataProvider over Binance USDⓈ-M futures market data.
// Quotes carry price and daily change only; valuation fields stay 0.
type Client struct {
	futuresClient *futures.Client
	symbols       []string
	logger        ports.Logger
}

var _ ports.MarketDataProvider = (*Client)(nil)

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Symbols    []string // Snapshot universe; empty means every listed contract
	BaseURL    string   // Optional override, mainly for tests
	Logger     ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	// Market data endpoints are public; keys are optional.
	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL, "symbols": len(cfg.Symbols)})

	symbols := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}

	return &Client{
		futuresClient: client,
		symbols:       symbols,
		logger:        cfg.Logger,
	}, nil
}

// Name identifies the provider.
func (c *Client) Name() string {
	return "binance"
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1121: // Invalid symbol
			mappedErr = ports.ErrNotFound
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if errors.Is(err, ports.ErrMalformedResponse) {
		finalErr = fmt.Errorf("%s failed: %w", operation, err)
	} else if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrProviderUnavailable, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// GetSnapshot returns 24h ticker stats for the configured symbols, in configured order.
func (c *Client) GetSnapshot(ctx context.Context) ([]*domain.MarketQuote, error) {
	op := "GetSnapshot"
	stats, err := c.futuresClient.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	bySymbol := make(map[string]*futures.PriceChangeStats, len(stats))
	for _, s := range stats {
		if s != nil {
			bySymbol[s.Symbol] = s
		}
	}

	wanted := c.symbols
	if len(wanted) == 0 {
		for _, s := range stats {
			if s != nil {
				wanted = append(wanted, s.Symbol)
			}
		}
	}

	quotes := make([]*domain.MarketQuote, 0, len(wanted))
	for _, symbol := range wanted {
		s, ok := bySymbol[symbol]
		if !ok {
			c.logger.Warn(ctx, "Configured symbol missing from ticker stats", map[string]interface{}{"symbol": symbol})
			continue
		}
		quotes = append(quotes, translateStats(s))
	}
	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"count": len(quotes)})
	return quotes, nil
}

// GetHistory fetches the trailing daily klines of symbol.
func (c *Client) GetHistory(ctx context.Context, symbol string, days int) ([]*domain.PriceBar, error) {
	op := "GetHistory"
	if symbol == "" || days <= 0 {
		return nil, fmt.Errorf("%s failed: %w: symbol %q days %d", op, ports.ErrInvalidRequest, symbol, days)
	}
	limit := days
	if limit > maxKlineLimit {
		limit = maxKlineLimit
	}

	klines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(dailyInterval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	bars := make([]*domain.PriceBar, 0, len(klines))
	for _, bk := range klines {
		bar, err := translateBinanceKline(bk, symbol)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("%w: %w", ports.ErrMalformedResponse, err), op)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func translateStats(s *futures.PriceChangeStats) *domain.MarketQuote {
	return marketdata.NormalizeQuote(map[string]any{
		marketdata.FieldSymbol:    s.Symbol,
		marketdata.FieldName:      s.Symbol,
		marketdata.FieldPrice:     s.LastPrice,
		marketdata.FieldChangePct: s.PriceChangePercent,
	})
}

func translateBinanceKline(bk *futures.Kline, symbol string) (*domain.PriceBar, error) {
	if bk == nil {
		return nil, errors.New("received nil historical kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return &domain.PriceBar{
		Date:   time.UnixMilli(bk.OpenTime).UTC(),
		Symbol: symbol,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Volume: vol,
	}, nil
}
