package adapter

import (
	"context"
	"fmt"

	"unidata/internal/logger"
	"unidata/internal/market"
	symbolpkg "unidata/internal/pkg/symbol"
)

// China serves A-share/HK stocks and China futures. Digit tickers go to the stock client, all
// other tickers are treated as futures contracts.
type China struct {
	stocks   func() (market.HistoryClient, error)
	futures  func() (market.HistoryClient, error)
	settings settings
}

var _ Adapter = (*China)(nil)

func NewChina(newStocks, newFutures HistoryFunc, opts ...Option) *China {
	return &China{
		stocks:   lazyHistory("china stocks", newStocks),
		futures:  lazyHistory("china futures", newFutures),
		settings: applyOptions(opts),
	}
}

func (a *China) Exchange() string {
	return market.ExchangeChinaEquities
}

// VenueSymbol pads HK codes, keeps A-share codes, and rewrites "X=F" to the front-month "X0".
func (a *China) VenueSymbol(_ context.Context, ticker string, _ market.MarketType) string {
	mkt, sym := symbolpkg.DetectMarket(ticker)
	if mkt == market.MarketUnknown {
		return symbolpkg.FrontMonth(sym)
	}
	return sym
}

func (a *China) VenuePeriod(period string) string {
	return chinaPeriods.Translate(period)
}

func (a *China) GetKline(ctx context.Context, req Request) (market.Table, error) {
	start, end := a.settings.window(req)
	symbol := a.VenueSymbol(ctx, req.Ticker, req.MarketType)
	interval := a.VenuePeriod(req.Period)

	source := a.stocks
	if mkt, _ := symbolpkg.DetectMarket(req.Ticker); mkt == market.MarketUnknown {
		if !futuresPeriods.Supports(req.Period) {
			err := fmt.Errorf("china futures: period %q not supported, daily only", req.Period)
			logger.Warnf("[%s] %v", a.Exchange(), err)
			return market.Table{}, err
		}
		source = a.futures
		interval = futuresPeriods.Translate(req.Period)
	}
	client, err := source()
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
