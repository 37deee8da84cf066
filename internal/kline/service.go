// Package kline 是对外的统一 K 线拉取入口。
package kline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unidata/internal/adapter"
	"unidata/internal/logger"
	"unidata/internal/market"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit       = 200
	DefaultPeriod      = string(market.Period1d)
	defaultConcurrency = 4
)

// Request is one pull. Zero Start/End are absent; Limit 0 means DefaultLimit and a negative
// Limit disables truncation.
type Request struct {
	Ticker     string            `json:"ticker" yaml:"ticker"`
	MarketType market.MarketType `json:"market_type" yaml:"market_type"`
	Period     string            `json:"period" yaml:"period"`
	Start      time.Time         `json:"start,omitempty" yaml:"start,omitempty"`
	End        time.Time         `json:"end,omitempty" yaml:"end,omitempty"`
	Limit      int               `json:"limit" yaml:"limit"`
	Exchange   string            `json:"exchange,omitempty" yaml:"exchange,omitempty"`
}

// Resolver picks the adapter for a market type and optional exchange. Errors are configuration
// errors.
type Resolver interface {
	Resolve(mt market.MarketType, exchange string) (adapter.Adapter, string, error)
}

type Service struct {
	resolver     Resolver
	defaultLimit int
	concurrency  int
}

type Option func(*Service)

func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithConcurrency bounds how many requests PullBatch runs at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewService(resolver Resolver, opts ...Option) *Service {
	s := &Service{resolver: resolver, defaultLimit: DefaultLimit, concurrency: defaultConcurrency}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Pull fetches one kline table. The only error it returns is the resolver's configuration error;
// every data or transport problem ends as a FAILED Result.
func (s *Service) Pull(ctx context.Context, req Request) (market.Result, error) {
	a, exchange, err := s.resolver.Resolve(req.MarketType, req.Exchange)
	if err != nil {
		return market.Result{}, err
	}
	if strings.TrimSpace(req.Ticker) == "" {
		return market.Failed("ticker is required"), nil
	}
	if !req.Start.IsZero() && !req.End.IsZero() && req.Start.After(req.End) {
		return market.Failed("start is after end"), nil
	}
	res := s.fetch(ctx, a, exchange, req)
	if res.IsOK() {
		logger.Infof("[kline] %s %s %s rows=%d", exchange, req.Ticker, req.Period, res.Data.Len())
	} else {
		logger.Warnf("[kline] %s %s %s failed: %s", exchange, req.Ticker, req.Period, res.Error)
	}
	return res, nil
}

func (s *Service) fetch(ctx context.Context, a adapter.Adapter, exchange string, req Request) (res market.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[kline] adapter %s panic: %v", exchange, r)
			res = market.Failed(fmt.Sprint(r))
		}
	}()
	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	period := strings.TrimSpace(req.Period)
	if period == "" {
		period = DefaultPeriod
	}
	table, err := a.GetKline(ctx, adapter.Request{
		Ticker:     req.Ticker,
		MarketType: req.MarketType,
		Period:     period,
		Start:      req.Start,
		End:        req.End,
		Limit:      limit,
	})
	if err != nil {
		return market.Failed(err.Error())
	}
	if table.IsEmpty() {
		return market.Failed(market.NoDataMessage)
	}
	return market.OK(table.WithExchange(exchange).WithSymbol(req.Ticker))
}

// PullBatch runs independent pulls concurrently and returns results in request order.
// Configuration errors become FAILED results carrying the error text.
func (s *Service) PullBatch(ctx context.Context, reqs []Request) []market.Result {
	results := make([]market.Result, len(reqs))
	var eg errgroup.Group
	eg.SetLimit(s.concurrency)
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			res, err := s.Pull(ctx, req)
			if err != nil {
				res = market.Failed(err.Error())
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
