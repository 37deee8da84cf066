// Package adapter 把各数据源的原始 K 线统一成标准表结构。
package adapter

import (
	"context"
	"time"

	"unidata/internal/market"
	"unidata/internal/pkg/timeframe"
)

// Request is one kline query as seen by an adapter. Zero Start/End mean "absent".
type Request struct {
	Ticker     string
	MarketType market.MarketType
	Period     string
	Start      time.Time
	End        time.Time
	// Limit > 0 keeps the newest Limit rows; anything else keeps every row.
	Limit int
}

// Adapter is the capability set every venue adapter offers.
//
// GetKline returns an empty table with a nil error when the venue has no rows, and an empty
// table with the underlying error when the fetch or the raw payload fails. It never panics on
// venue data.
type Adapter interface {
	GetKline(ctx context.Context, req Request) (market.Table, error)
	VenueSymbol(ctx context.Context, ticker string, mt market.MarketType) string
	VenuePeriod(period string) string
	Exchange() string
}

// DefaultLimit is used for look-back estimation when the request carries no positive limit.
const DefaultLimit = 200

type Option func(*settings)

type settings struct {
	estimator    timeframe.Estimator
	defaultLimit int
	now          func() time.Time
}

func defaultSettings() settings {
	return settings{
		estimator:    timeframe.DefaultEstimator,
		defaultLimit: DefaultLimit,
		now:          time.Now,
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// WithEstimator overrides the look-back buffers.
func WithEstimator(e timeframe.Estimator) Option {
	return func(s *settings) { s.estimator = e }
}

// WithDefaultLimit sets the row count assumed for estimation when a request has no limit.
func WithDefaultLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// window resolves an absent end to now and an absent start through the estimator.
func (s settings) window(req Request) (time.Time, time.Time) {
	end := req.End
	if end.IsZero() {
		end = s.now()
	}
	end = end.UTC()
	start := req.Start
	if start.IsZero() {
		limit := req.Limit
		if limit <= 0 {
			limit = s.defaultLimit
		}
		start = s.estimator.EstimateStart(end, limit, req.Period)
	}
	return start.UTC(), end
}
