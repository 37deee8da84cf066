package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"unidata/internal/logger"
	"unidata/internal/market"
	symbolpkg "unidata/internal/pkg/symbol"
)

// ClientFunc builds a venue client on first use.
type ClientFunc func() (market.BarClient, error)

// Strategy bundles one crypto venue's symbol rules, period table and lazily built client.
//
// The tradable-pair set used for quote fallback is loaded at most once per Strategy, on the first
// VenueSymbol call that needs it; concurrent first callers share that single load.
type Strategy struct {
	name          string
	periods       PeriodTable
	quoteFallback map[string]string
	// maxBars is the most bars the venue returns for one request.
	maxBars int

	client func() (market.BarClient, error)

	pairsOnce sync.Once
	pairs     map[string]struct{}
	pairsErr  error
}

// 单次请求的 K 线上限，与各交易所 REST 接口一致。
const (
	binanceMaxBars  = 1000
	coinbaseMaxBars = 300
	gateMaxBars     = 1000
)

func newStrategy(name string, periods PeriodTable, maxBars int, fallback map[string]string, newClient ClientFunc) *Strategy {
	s := &Strategy{name: name, periods: periods, maxBars: maxBars, quoteFallback: fallback}
	s.client = sync.OnceValues(func() (market.BarClient, error) {
		if newClient == nil {
			return nil, fmt.Errorf("%s: no client configured", name)
		}
		return newClient()
	})
	return s
}

func NewBinanceStrategy(newClient ClientFunc) *Strategy {
	return newStrategy(market.ExchangeBinance, binancePeriods, binanceMaxBars, nil, newClient)
}

// NewCoinbaseStrategy 在 Coinbase 缺少 USDT 交易对时回退到 USD 报价。
func NewCoinbaseStrategy(newClient ClientFunc) *Strategy {
	return newStrategy(market.ExchangeCoinbase, coinbasePeriods, coinbaseMaxBars, map[string]string{"USDT": "USD"}, newClient)
}

func NewGateStrategy(newClient ClientFunc) *Strategy {
	return newStrategy(market.ExchangeGate, gatePeriods, gateMaxBars, nil, newClient)
}

func (s *Strategy) Name() string {
	return s.name
}

// Client returns the venue client, building it on the first call.
func (s *Strategy) Client() (market.BarClient, error) {
	return s.client()
}

func (s *Strategy) VenuePeriod(period string) string {
	return s.periods.Translate(period)
}

// MaxBars is the venue's per-request bar cap.
func (s *Strategy) MaxBars() int {
	return s.maxBars
}

// Supports is false for a standard period the venue has no native timeframe for.
func (s *Strategy) Supports(period string) bool {
	return s.periods.Supports(period)
}

// VenueSymbol upper-cases the ticker and writes it as BASE/QUOTE. When the quote has a configured
// fallback and the venue lists only the fallback pair, the fallback pair is returned.
func (s *Strategy) VenueSymbol(ctx context.Context, ticker string, _ market.MarketType) string {
	pair := symbolpkg.ToPair(ticker)
	parsed := symbolpkg.Parse(pair)
	if normalized := parsed.Internal(); normalized != "" {
		pair = normalized
	}
	alt, ok := s.quoteFallback[parsed.Quote]
	if !ok || parsed.Base == "" {
		return pair
	}
	pairs, err := s.loadPairs(ctx)
	if err != nil {
		return pair
	}
	if _, listed := pairs[parsed.Internal()]; listed {
		return pair
	}
	candidate := parsed.WithQuote(alt).Internal()
	if _, listed := pairs[candidate]; listed {
		logger.Debugf("[%s] %s not listed, using %s", s.name, pair, candidate)
		return candidate
	}
	return pair
}

func (s *Strategy) loadPairs(ctx context.Context) (map[string]struct{}, error) {
	s.pairsOnce.Do(func() {
		client, err := s.Client()
		if err != nil {
			s.pairsErr = err
			return
		}
		// the set outlives this request, so its cancellation must not decide the load
		list, err := client.LoadPairs(context.WithoutCancel(ctx))
		if err != nil {
			logger.Warnf("[%s] load tradable pairs failed: %v", s.name, err)
			s.pairsErr = err
			return
		}
		set := make(map[string]struct{}, len(list))
		for _, p := range list {
			set[strings.ToUpper(p)] = struct{}{}
		}
		s.pairs = set
	})
	return s.pairs, s.pairsErr
}
