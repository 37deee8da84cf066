package adapter

import (
	"context"
	"fmt"
	"sync"

	"unidata/internal/logger"
	"unidata/internal/market"
	symbolpkg "unidata/internal/pkg/symbol"
)

// HistoryFunc builds a history client on first use.
type HistoryFunc func() (market.HistoryClient, error)

// Equities serves global equities through a Yahoo-style history client. A-share and HK digit
// tickers are rewritten to their listing-suffixed form.
type Equities struct {
	client   func() (market.HistoryClient, error)
	settings settings
}

var _ Adapter = (*Equities)(nil)

func NewEquities(newClient HistoryFunc, opts ...Option) *Equities {
	return &Equities{
		client:   lazyHistory(market.ExchangeGlobalEquities, newClient),
		settings: applyOptions(opts),
	}
}

func (a *Equities) Exchange() string {
	return market.ExchangeGlobalEquities
}

func (a *Equities) VenueSymbol(_ context.Context, ticker string, _ market.MarketType) string {
	return symbolpkg.YahooEquity(ticker)
}

func (a *Equities) VenuePeriod(period string) string {
	return yahooPeriods.Translate(period)
}

func (a *Equities) GetKline(ctx context.Context, req Request) (market.Table, error) {
	start, end := a.settings.window(req)
	symbol := a.VenueSymbol(ctx, req.Ticker, req.MarketType)
	interval := a.VenuePeriod(req.Period)

	client, err := a.client()
	if err != nil {
		logger.Errorf("[%s] client unavailable: %v", a.Exchange(), err)
		return market.Table{}, err
	}
	records, err := client.History(ctx, symbol, interval, start, end)
	if err != nil {
		logger.Errorf("[%s] history %s %s failed: %v", a.Exchange(), symbol, interval, err)
		return market.Table{}, err
	}
	table := normalize(records, req.Ticker, a.Exchange(), end, req.Limit)
	if table.IsEmpty() {
		logger.Warnf("[%s] no rows for %s %s", a.Exchange(), symbol, interval)
	}
	return table, nil
}

func lazyHistory(name string, newClient HistoryFunc) func() (market.HistoryClient, error) {
	return sync.OnceValues(func() (market.HistoryClient, error) {
		if newClient == nil {
			return nil, fmt.Errorf("%s: no client configured", name)
		}
		return newClient()
	})
}
