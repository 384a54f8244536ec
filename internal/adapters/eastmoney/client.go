// Package eastmoney is the default A-share market data provider, backed by the
// public Eastmoney quote and kline endpoints.
package eastmoney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/marketdata"
	"aShareScanner/internal/ports"
)

const (
	// Base URLs
	DefaultBaseURL    = "https://82.push2.eastmoney.com"
	DefaultHistoryURL = "https://push2his.eastmoney.com"

	listPath    = "/api/qt/clist/get"
	historyPath = "/api/qt/stock/kline/get"

	// All Shanghai and Shenzhen A-share boards.
	marketFilter = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23,m:0+t:81+s:2048"
	quoteFields  = "f2,f3,f8,f9,f10,f12,f14,f20,f23,f100"
)

// snapshot column -> quote field
var columnMap = map[string]string{
	"f12":  marketdata.FieldSymbol,
	"f14":  marketdata.FieldName,
	"f2":   marketdata.FieldPrice,
	"f3":   marketdata.FieldChangePct,
	"f9":   marketdata.FieldPE,
	"f23":  marketdata.FieldPB,
	"f8":   marketdata.FieldTurnover,
	"f20":  marketdata.FieldMarketCap,
	"f10":  marketdata.FieldVolumeRatio,
	"f100": marketdata.FieldIndustry,
}

// Config holds configuration for the Eastmoney client.
type Config struct {
	BaseURL           string
	HistoryURL        string
	RequestsPerSecond float64       // Outbound pacing, e.g., 5
	Timeout           time.Duration // Per request, e.g., 10 * time.Second
	PageSize          int           // Snapshot page size, e.g., 100
	HTTPClient        *http.Client  // Optional; overrides Timeout
	Logger            ports.Logger
}

// Client implements ports.MarketDataProvider.
type Client struct {
	baseURL    string
	historyURL string
	pageSize   int
	http       *http.Client
	limiter    *rate.Limiter
	logger     ports.Logger
	now        func() time.Time
}

var _ ports.MarketDataProvider = (*Client)(nil)

// New creates a new Eastmoney client.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Eastmoney client")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HistoryURL == "" {
		cfg.HistoryURL = DefaultHistoryURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		historyURL: strings.TrimRight(cfg.HistoryURL, "/"),
		pageSize:   cfg.PageSize,
		http:       httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     cfg.Logger,
		now:        time.Now,
	}, nil
}

// Name identifies the provider.
func (c *Client) Name() string {
	return "eastmoney"
}

type listResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Total int              `json:"total"`
		Diff  []map[string]any `json:"diff"`
	} `json:"data"`
}

// GetSnapshot pages through the full A-share list.
func (c *Client) GetSnapshot(ctx context.Context) ([]*domain.MarketQuote, error) {
	op := "GetSnapshot"
	var quotes []*domain.MarketQuote

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("pn", strconv.Itoa(page))
		q.Set("pz", strconv.Itoa(c.pageSize))
		q.Set("po", "1")
		q.Set("np", "1")
		q.Set("fltt", "2")
		q.Set("invt", "2")
		q.Set("fid", "f3")
		q.Set("fs", marketFilter)
		q.Set("fields", quoteFields)

		var resp listResponse
		if err := c.getJSON(ctx, c.baseURL+listPath, q, &resp); err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if resp.Data == nil || len(resp.Data.Diff) == 0 {
			break
		}

		for _, row := range resp.Data.Diff {
			quotes = append(quotes, marketdata.NormalizeQuote(renameColumns(row)))
		}
		if len(quotes) >= resp.Data.Total {
			break
		}
	}

	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"count": len(quotes)})
	return quotes, nil
}

func renameColumns(row map[string]any) map[string]any {
	out := make(map[string]any, len(columnMap))
	for col, field := range columnMap {
		if v, ok := row[col]; ok {
			out[field] = v
		}
	}
	return out
}

type klineResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// GetHistory fetches forward-adjusted daily bars covering the trailing days.
// An unknown symbol yields an empty slice.
func (c *Client) GetHistory(ctx context.Context, symbol string, days int) ([]*domain.PriceBar, error) {
	op := "GetHistory"
	if symbol == "" || days <= 0 {
		return nil, fmt.Errorf("%s failed: %w: symbol %q days %d", op, ports.ErrInvalidRequest, symbol, days)
	}

	end := c.now()
	start := end.AddDate(0, 0, -days)

	q := url.Values{}
	q.Set("secid", SecID(symbol))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56")
	q.Set("klt", "101") // daily
	q.Set("fqt", "1")   // forward-adjusted
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))

	var resp klineResponse
	if err := c.getJSON(ctx, c.historyURL+historyPath, q, &resp); err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	if resp.Data == nil {
		c.logger.Debug(ctx, "No history returned for symbol", map[string]interface{}{"symbol": symbol})
		return []*domain.PriceBar{}, nil
	}

	bars := make([]*domain.PriceBar, 0, len(resp.Data.Klines))
	for _, line := range resp.Data.Klines {
		bar, err := parseKline(symbol, line)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("%w: %w", ports.ErrMalformedResponse, err), op)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// SecID prefixes a code with its exchange: 1 for Shanghai, 0 for Shenzhen and Beijing.
func SecID(symbol string) string {
	if strings.HasPrefix(symbol, "6") || strings.HasPrefix(symbol, "9") || strings.HasPrefix(symbol, "5") {
		return "1." + symbol
	}
	return "0." + symbol
}

// parseKline reads "date,open,close,high,low,volume".
func parseKline(symbol, line string) (*domain.PriceBar, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 6 {
		return nil, fmt.Errorf("kline %q has %d fields, want 6", line, len(parts))
	}
	date, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return nil, fmt.Errorf("parsing date '%s': %w", parts[0], err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		vals[i], err = strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing field %d '%s': %w", i+1, parts[i+1], err)
		}
	}
	return &domain.PriceBar{
		Date:   date,
		Symbol: symbol,
		Open:   vals[0],
		Close:  vals[1],
		High:   vals[2],
		Low:    vals[3],
		Volume: vals[4],
	}, nil
}

// statusError carries a non-200 response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrInvalidRequest, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://quote.eastmoney.com/")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrMalformedResponse, err)
	}
	return nil
}

// handleError translates transport and HTTP failures into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var mappedErr error
	var statusErr *statusError
	var netErr net.Error
	switch {
	case errors.Is(err, ports.ErrMalformedResponse), errors.Is(err, ports.ErrInvalidRequest):
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
		return fmt.Errorf("%s failed: %w", operation, err)
	case errors.As(err, &statusErr):
		fields["status"] = statusErr.code
		switch {
		case statusErr.code == http.StatusTooManyRequests:
			mappedErr = ports.ErrRateLimited
		case statusErr.code == http.StatusNotFound:
			mappedErr = ports.ErrNotFound
		case statusErr.code >= 500:
			mappedErr = ports.ErrProviderUnavailable
		default:
			mappedErr = ports.ErrInvalidRequest
		}
	case errors.Is(err, context.DeadlineExceeded):
		mappedErr = ports.ErrTimeout
	case errors.Is(err, context.Canceled):
		mappedErr = ports.ErrContextCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		mappedErr = ports.ErrTimeout
	case errors.As(err, &netErr):
		mappedErr = ports.ErrConnectionFailed
	default:
		mappedErr = ports.ErrUnknown
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
}
