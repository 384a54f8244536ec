package eastmoney

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:           srv.URL,
		HistoryURL:        srv.URL,
		RequestsPerSecond: 1000,
		PageSize:          2,
		Logger:            &mockLogger{},
	})
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2024, 6, 28, 15, 0, 0, 0, time.UTC) }
	return c
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestClient_GetSnapshot_Pages(t *testing.T) {
	pages := map[string]string{
		"1": `{"rc":0,"data":{"total":3,"diff":[
			{"f12":"600519","f14":"贵州茅台","f2":1700.5,"f3":1.25,"f9":28.1,"f23":8.2,"f8":0.31,"f20":2136000000000,"f10":1.1,"f100":"酿酒行业"},
			{"f12":"000001","f14":"平安银行","f2":10.2,"f3":-0.5,"f9":"-","f23":0.6,"f8":"-","f20":198000000000,"f10":0.9}
		]}}`,
		"2": `{"rc":0,"data":{"total":3,"diff":[
			{"f12":"688981","f14":"中芯国际","f2":"-","f3":"-","f9":"-","f23":"-","f8":"-","f20":"-","f10":"-","f100":"-"}
		]}}`,
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, listPath, r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("pz"))
		fmt.Fprint(w, pages[r.URL.Query().Get("pn")])
	})

	quotes, err := c.GetSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, &domain.MarketQuote{
		Symbol: "600519", Name: "贵州茅台", Price: 1700.5, ChangePct: 1.25, PE: 28.1, PB: 8.2,
		Turnover: 0.31, MarketCap: 2136000000000, VolumeRatio: 1.1, Industry: "酿酒行业",
	}, quotes[0])
	assert.Equal(t, 0.0, quotes[1].PE)
	assert.Equal(t, "", quotes[1].Industry)
	assert.Equal(t, &domain.MarketQuote{Symbol: "688981", Name: "中芯国际"}, quotes[2])
}

func TestClient_GetSnapshot_EmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rc":0,"data":null}`)
	})
	quotes, err := c.GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestClient_GetHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, historyPath, r.URL.Path)
		assert.Equal(t, "1.600519", q.Get("secid"))
		assert.Equal(t, "1", q.Get("fqt"))
		assert.Equal(t, "101", q.Get("klt"))
		assert.Equal(t, "20240101", q.Get("beg"))
		assert.Equal(t, "20240628", q.Get("end"))
		fmt.Fprint(w, `{"rc":0,"data":{"code":"600519","klines":[
			"2024-06-27,1450.00,1460.50,1470.00,1440.00,30211,4.4E9,2.06",
			"2024-06-28,1460.50,1469.00,1480.00,1455.10,28123,4.1E9,1.7"
		]}}`)
	})

	bars, err := c.GetHistory(context.Background(), "600519", 179)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, &domain.PriceBar{
		Date: time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC), Symbol: "600519",
		Open: 1450, Close: 1460.5, High: 1470, Low: 1440, Volume: 30211,
	}, bars[0])
	assert.Equal(t, 1469.0, bars[1].Close)
}

func TestClient_GetHistory_UnknownSymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rc":0,"data":null}`)
	})
	bars, err := c.GetHistory(context.Background(), "999999", 180)
	require.NoError(t, err)
	assert.NotNil(t, bars)
	assert.Empty(t, bars)
}

func TestClient_GetHistory_InvalidArgs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.GetHistory(context.Background(), "", 180)
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
	_, err = c.GetHistory(context.Background(), "600519", 0)
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			want:    ports.ErrRateLimited,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			want:    ports.ErrProviderUnavailable,
		},
		{
			name:    "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) },
			want:    ports.ErrInvalidRequest,
		},
		{
			name:    "not json",
			handler: func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html>") },
			want:    ports.ErrMalformedResponse,
		},
		{
			name: "bad kline",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"data":{"klines":["2024-06-28,abc,1,1,1,1"]}}`)
			},
			want: ports.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.GetHistory(context.Background(), "000001", 30)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestClient_ConnectionFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: addr, HistoryURL: addr, Logger: &mockLogger{}})
	require.NoError(t, err)

	_, err = c.GetSnapshot(context.Background())
	assert.True(t, errors.Is(err, ports.ErrConnectionFailed), err.Error())
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":null}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetSnapshot(ctx)
	assert.True(t, errors.Is(err, ports.ErrContextCanceled), err.Error())
}

func TestSecID(t *testing.T) {
	tests := map[string]string{
		"600519": "1.600519",
		"688981": "1.688981",
		"000001": "0.000001",
		"300750": "0.300750",
		"830799": "0.830799",
	}
	for symbol, want := range tests {
		assert.Equal(t, want, SecID(symbol), symbol)
	}
}

func TestParseKline(t *testing.T) {
	_, err := parseKline("1", "2024-06-28,1,2")
	assert.Error(t, err)
	_, err = parseKline("1", "28/06/2024,1,2,3,4,5")
	assert.Error(t, err)

	bar, err := parseKline("1", "2024-06-28,1,2,3,0.5,"+strconv.Itoa(100))
	require.NoError(t, err)
	assert.Equal(t, 2.0, bar.Close)
	assert.Equal(t, 3.0, bar.High)
	assert.Equal(t, 0.5, bar.Low)
}
