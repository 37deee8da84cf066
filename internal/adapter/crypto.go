package adapter

import (
	"context"
	"fmt"
	"time"

	"unidata/internal/logger"
	"unidata/internal/market"
	"unidata/internal/pkg/timeframe"
)

// Crypto reads bars from one crypto venue through its Strategy.
type Crypto struct {
	strategy *Strategy
	settings settings
}

var _ Adapter = (*Crypto)(nil)

func NewCrypto(strategy *Strategy, opts ...Option) *Crypto {
	return &Crypto{strategy: strategy, settings: applyOptions(opts)}
}

func (a *Crypto) Exchange() string {
	return a.strategy.Name()
}

func (a *Crypto) VenueSymbol(ctx context.Context, ticker string, mt market.MarketType) string {
	return a.strategy.VenueSymbol(ctx, ticker, mt)
}

func (a *Crypto) VenuePeriod(period string) string {
	return a.strategy.VenuePeriod(period)
}

func (a *Crypto) GetKline(ctx context.Context, req Request) (market.Table, error) {
	if !a.strategy.Supports(req.Period) {
		err := fmt.Errorf("%s: period %q not supported", a.Exchange(), req.Period)
		logger.Warnf("[%s] %v", a.Exchange(), err)
		return market.Table{}, err
	}
	start, end := a.settings.window(req)
	pair := a.VenueSymbol(ctx, req.Ticker, req.MarketType)
	tf := a.VenuePeriod(req.Period)

	client, err := a.strategy.Client()
	if err != nil {
		logger.Errorf("[%s] client unavailable: %v", a.Exchange(), err)
		return market.Table{}, err
	}
	since, count := fetchWindow(start, end, req, tf, a.strategy.MaxBars())
	bars, err := client.FetchBars(ctx, pair, tf, since.UnixMilli(), count)
	if err != nil {
		logger.Errorf("[%s] fetch %s %s failed: %v", a.Exchange(), pair, tf, err)
		return market.Table{}, err
	}
	table := normalize(candleRecords(bars), req.Ticker, a.Exchange(), end, req.Limit)
	if table.IsEmpty() {
		logger.Warnf("[%s] no bars for %s %s", a.Exchange(), pair, tf)
	}
	return table, nil
}

// fetchWindow picks since and the bar count so that the venue, which returns the oldest bars
// after since, hands back the newest bars up to end. The bar open at end is counted too.
// An explicit start is never crossed.
func fetchWindow(start, end time.Time, req Request, tf string, maxBars int) (time.Time, int) {
	n := req.Limit
	if !req.Start.IsZero() || n <= 0 {
		if span := timeframe.BarsBetween(start, end, tf); span > n {
			n = span
		}
	}
	n++
	if maxBars > 0 && n > maxBars {
		n = maxBars
	}
	since := end.Add(-time.Duration(n-1) * timeframe.BarDuration(tf))
	if !req.Start.IsZero() && since.Before(start) {
		since = start
	}
	return since, n
}
