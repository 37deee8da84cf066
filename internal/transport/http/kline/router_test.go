package klinehttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"unidata/internal/gateway"
	"unidata/internal/kline"
	"unidata/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPuller struct {
	mock.Mock
}

func (m *MockPuller) Pull(ctx context.Context, req kline.Request) (market.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(market.Result), args.Error(1)
}

func (m *MockPuller) PullBatch(ctx context.Context, reqs []kline.Request) []market.Result {
	args := m.Called(ctx, reqs)
	return args.Get(0).([]market.Result)
}

func okResult() market.Result {
	rows := []market.Row{
		{Candle: market.Candle{Timestamp: 1704153600000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}, Symbol: "AAPL", Exchange: market.ExchangeGlobalEquities},
		{Candle: market.Candle{Timestamp: 1704240000000, Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 12}, Symbol: "AAPL", Exchange: market.ExchangeGlobalEquities},
	}
	return market.OK(market.Table{Columns: market.CanonicalColumns, Rows: rows})
}

func newTestServer(t *testing.T, p Puller) http.Handler {
	t.Helper()
	srv, err := NewServer(ServerConfig{Puller: p})
	require.NoError(t, err)
	return srv.Handler()
}

func TestHandlePull(t *testing.T) {
	p := &MockPuller{}
	p.On("Pull", mock.Anything, kline.Request{
		Ticker:     "AAPL",
		MarketType: market.MarketStock,
		Period:     "1d",
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Limit:      5,
	}).Return(okResult(), nil).Once()

	h := newTestServer(t, p)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kline?ticker=AAPL&market_type=STOCK&period=1d&start=2024-01-01&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	var body struct {
		Status string           `json:"status"`
		Data   []map[string]any `json:"data"`
		Error  string           `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "AAPL", body.Data[0]["symbol"])
	assert.Equal(t, 1704153600000.0, body.Data[0]["timestamp"])
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"status":"OK","data":[{"timestamp":`))
	p.AssertExpectations(t)
}

func TestHandlePullErrors(t *testing.T) {
	p := &MockPuller{}
	p.On("Pull", mock.Anything, mock.MatchedBy(func(r kline.Request) bool { return r.MarketType == "bond" })).
		Return(market.Result{}, &gateway.ConfigError{MarketType: "bond", Reason: "unsupported market type"}).Once()
	p.On("Pull", mock.Anything, mock.MatchedBy(func(r kline.Request) bool { return r.Ticker == "INVALID_XYZ" })).
		Return(market.Failed("unexpected status 404"), nil).Once()
	h := newTestServer(t, p)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kline?ticker=TEST&market_type=bond", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported market type")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kline?ticker=INVALID_XYZ&market_type=stock", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"FAILED"`)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kline?ticker=AAPL&market_type=stock&end=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p.AssertExpectations(t)
}

func TestHandleChart(t *testing.T) {
	p := &MockPuller{}
	p.On("Pull", mock.Anything, mock.MatchedBy(func(r kline.Request) bool { return r.Ticker == "AAPL" })).Return(okResult(), nil).Once()
	p.On("Pull", mock.Anything, mock.MatchedBy(func(r kline.Request) bool { return r.Ticker == "NONE" })).Return(market.Failed(""), nil).Once()
	h := newTestServer(t, p)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kline/chart?ticker=AAPL&market_type=stock", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "AAPL")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kline/chart?ticker=NONE&market_type=stock", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), market.NoDataMessage)
}

func TestHandleBatch(t *testing.T) {
	p := &MockPuller{}
	p.On("PullBatch", mock.Anything, mock.MatchedBy(func(reqs []kline.Request) bool {
		return len(reqs) == 2 && reqs[0].Ticker == "AAPL" && reqs[1].Exchange == "china-equities"
	})).Return([]market.Result{okResult(), market.Failed("")}).Once()
	h := newTestServer(t, p)

	body := `[{"ticker":"AAPL","market_type":"stock","limit":2},{"ticker":"600519","market_type":"stock","exchange":"china-equities"}]`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/kline/batch", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Results []struct {
			Status string `json:"status"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "OK", out.Results[0].Status)
	assert.Equal(t, "FAILED", out.Results[1].Status)
	p.AssertExpectations(t)
}

func TestHealthzAndRequestID(t *testing.T) {
	h := newTestServer(t, &MockPuller{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestParseTime(t *testing.T) {
	ts, err := ParseTime("1704153600000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ts)

	ts, err = ParseTime("2024-01-02T08:00:00+08:00")
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	ts, err = ParseTime("")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}
