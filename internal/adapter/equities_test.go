package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"unidata/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func yahooRows(start time.Time, n int) []market.Record {
	out := make([]market.Record, 0, n)
	for i := 0; i < n; i++ {
		p := 180 + float64(i)
		out = append(out, market.Record{
			"Date": start.AddDate(0, 0, i).Format("2006-01-02"),
			"Open": p, "High": p + 1, "Low": p - 1, "Close": p + 0.5, "Adj Close": p + 0.4, "Volume": 5e7,
		})
	}
	return out
}

func TestEquitiesVenueSymbol(t *testing.T) {
	a := NewEquities(historyClient(&MockHistoryClient{}))
	ctx := context.Background()
	assert.Equal(t, "AAPL", a.VenueSymbol(ctx, "aapl", market.MarketStock))
	assert.Equal(t, "600519.SS", a.VenueSymbol(ctx, "600519", market.MarketStock))
	assert.Equal(t, "000001.SZ", a.VenueSymbol(ctx, "000001", market.MarketStock))
	assert.Equal(t, "0700.HK", a.VenueSymbol(ctx, "700", market.MarketStock))
	assert.Equal(t, "GC=F", a.VenueSymbol(ctx, "gc=f", market.MarketFutures))
}

func TestEquitiesGetKline(t *testing.T) {
	now := time.Date(2024, 2, 1, 21, 0, 0, 0, time.UTC)
	client := &MockHistoryClient{}
	client.On("History", mock.Anything, "AAPL", "1d", now.Add(-2*5*24*time.Hour), now).
		Return(yahooRows(now.AddDate(0, 0, -9), 8), nil).Once()

	a := NewEquities(historyClient(client), WithClock(func() time.Time { return now }))
	table, err := a.GetKline(context.Background(), Request{
		Ticker: "AAPL", MarketType: market.MarketStock, Period: "1d", Limit: 5,
	})
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())
	assert.Equal(t, market.CanonicalColumns, table.Columns)
	for _, row := range table.Rows {
		assert.Equal(t, "AAPL", row.Symbol)
		assert.Equal(t, market.ExchangeGlobalEquities, row.Exchange)
	}
	client.AssertExpectations(t)
}

func TestEquitiesGetKlineErrors(t *testing.T) {
	client := &MockHistoryClient{}
	client.On("History", mock.Anything, "INVALID_XYZ", "1d", mock.Anything, mock.Anything).
		Return(nil, errors.New("unexpected status 404 Not Found")).Once()
	client.On("History", mock.Anything, "EMPTY", "1d", mock.Anything, mock.Anything).
		Return(nil, nil).Once()

	a := NewEquities(historyClient(client))
	table, err := a.GetKline(context.Background(), Request{Ticker: "INVALID_XYZ", Period: "1d", Limit: 200})
	require.Error(t, err)
	assert.True(t, table.IsEmpty())

	table, err = a.GetKline(context.Background(), Request{Ticker: "EMPTY", Period: "1d"})
	require.NoError(t, err)
	assert.True(t, table.IsEmpty())
}
