package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aShareScanner/internal/ports"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

const tickerBody = `[
	{"symbol":"BTCUSDT","priceChange":"1200.5","priceChangePercent":"1.850","weightedAvgPrice":"65000","lastPrice":"66100.10","lastQty":"0.01","openPrice":"64899.6","highPrice":"66500","lowPrice":"64500","volume":"150000","quoteVolume":"9750000000","openTime":1719446400000,"closeTime":1719532799999,"firstId":1,"lastId":2,"count":2},
	{"symbol":"ETHUSDT","priceChange":"-20","priceChangePercent":"-0.570","weightedAvgPrice":"3450","lastPrice":"3430.25","lastQty":"0.1","openPrice":"3450.25","highPrice":"3500","lowPrice":"3400","volume":"900000","quoteVolume":"3100000000","openTime":1719446400000,"closeTime":1719532799999,"firstId":1,"lastId":2,"count":2}
]`

func newTestClient(t *testing.T, symbols []string, handler http.HandlerFunc) (*Client, *mockLogger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := &mockLogger{}
	c, err := New(Config{BaseURL: srv.URL, Symbols: symbols, Logger: logger})
	require.NoError(t, err)
	return c, logger
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestClient_GetSnapshot(t *testing.T) {
	c, logger := newTestClient(t, []string{"ethusdt", " BTCUSDT ", "DOGEUSDT"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/ticker/24hr", r.URL.Path)
		fmt.Fprint(w, tickerBody)
	})

	quotes, err := c.GetSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "ETHUSDT", quotes[0].Symbol)
	assert.InDelta(t, 3430.25, quotes[0].Price, 1e-9)
	assert.InDelta(t, -0.57, quotes[0].ChangePct, 1e-9)
	assert.Equal(t, "BTCUSDT", quotes[1].Symbol)
	assert.Equal(t, 0.0, quotes[1].PE)
	assert.Len(t, logger.warnMsgs, 1)
}

func TestClient_GetSnapshot_AllSymbols(t *testing.T) {
	c, _ := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tickerBody)
	})
	quotes, err := c.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func TestClient_GetHistory(t *testing.T) {
	c, _ := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", q.Get("symbol"))
		assert.Equal(t, "1d", q.Get("interval"))
		assert.Equal(t, "1500", q.Get("limit"))
		fmt.Fprint(w, `[
			[1719360000000,"61000.0","62000.0","60500.0","61500.5","12000.1",1719446399999,"0",100,"0","0","0"],
			[1719446400000,"61500.5","66500.0","61000.0","66100.1","15000.2",1719532799999,"0",100,"0","0","0"]
		]`)
	})

	bars, err := c.GetHistory(context.Background(), "BTCUSDT", 4000)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.InDelta(t, 61500.5, bars[0].Close, 1e-9)
	assert.InDelta(t, 66500.0, bars[1].High, 1e-9)
	assert.Equal(t, "BTCUSDT", bars[1].Symbol)
}

func TestClient_GetHistory_APIError(t *testing.T) {
	c, _ := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	})

	_, err := c.GetHistory(context.Background(), "NOPE", 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrNotFound), err.Error())
}

func TestClient_GetHistory_InvalidArgs(t *testing.T) {
	c, _ := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.GetHistory(context.Background(), "BTCUSDT", 0)
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}

func TestTranslateBinanceKline(t *testing.T) {
	_, err := translateBinanceKline(nil, "X")
	assert.Error(t, err)

	_, err = translateBinanceKline(&futures.Kline{Open: "x"}, "X")
	assert.Error(t, err)

	bar, err := translateBinanceKline(&futures.Kline{
		OpenTime: 1719446400000, Open: "1", High: "2", Low: "0.5", Close: "1.5", Volume: "10",
	}, "X")
	require.NoError(t, err)
	assert.Equal(t, 1.5, bar.Close)
	assert.Equal(t, time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC), bar.Date)
}
