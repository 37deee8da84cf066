package adapter

import (
	"context"
	"time"

	"unidata/internal/market"

	"github.com/stretchr/testify/mock"
)

type MockBarClient struct {
	mock.Mock
}

func (m *MockBarClient) FetchBars(ctx context.Context, pair, timeframe string, since int64, limit int) ([]market.Candle, error) {
	args := m.Called(ctx, pair, timeframe, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]market.Candle), args.Error(1)
}

func (m *MockBarClient) LoadPairs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockHistoryClient struct {
	mock.Mock
}

func (m *MockHistoryClient) History(ctx context.Context, symbol, interval string, start, end time.Time) ([]market.Record, error) {
	args := m.Called(ctx, symbol, interval, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]market.Record), args.Error(1)
}

func barClient(c market.BarClient) ClientFunc {
	return func() (market.BarClient, error) { return c, nil }
}

func historyClient(c market.HistoryClient) HistoryFunc {
	return func() (market.HistoryClient, error) { return c, nil }
}

func dailyCandles(start time.Time, n int) []market.Candle {
	out := make([]market.Candle, 0, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i)
		out = append(out, market.Candle{
			Timestamp: start.AddDate(0, 0, i).UnixMilli(),
			Open:      p,
			High:      p + 2,
			Low:       p - 1,
			Close:     p + 1,
			Volume:    1000 + float64(i),
		})
	}
	return out
}
