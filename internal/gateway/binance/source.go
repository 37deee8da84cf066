package binance

import (
	"context"
	"fmt"
	"strings"

	"unidata/internal/logger"
	"unidata/internal/market"
	"unidata/internal/pkg/convert"
	"unidata/internal/pkg/httpx"
	symbolpkg "unidata/internal/pkg/symbol"

	"github.com/adshao/go-binance/v2"
)

const maxHistoryLimit = 1000

// Client 基于 go-binance 现货 SDK 实现 market.BarClient。
type Client struct {
	cfg    Config
	client *binance.Client
}

var _ market.BarClient = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	httpClient, err := httpx.NewClient(final.HTTPTimeout, final.proxy())
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}
	client := binance.NewClient("", "")
	client.BaseURL = strings.TrimRight(final.RESTBaseURL, "/")
	client.HTTPClient = httpClient
	return &Client{cfg: final, client: client}, nil
}

func (c *Client) FetchBars(ctx context.Context, pair, timeframe string, since int64, limit int) ([]market.Candle, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	// Binance requires symbols without slashes (e.g., ETHUSDT)
	clean := symbolpkg.Binance.ToExchange(pair)
	if clean == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	timeframe = strings.TrimSpace(timeframe)
	if timeframe == "" {
		return nil, fmt.Errorf("interval is required")
	}
	svc := c.client.NewKlinesService().Symbol(clean).Interval(timeframe).Limit(limit)
	if since > 0 {
		svc = svc.StartTime(since)
	}
	kls, err := svc.Do(ctx)
	if err != nil {
		logger.Errorf("[binance] fetch klines failed %s %s limit=%d: %v", clean, timeframe, limit, err)
		return nil, err
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			Timestamp: kl.OpenTime,
			Open:      convert.MustDecimal(kl.Open),
			High:      convert.MustDecimal(kl.High),
			Low:       convert.MustDecimal(kl.Low),
			Close:     convert.MustDecimal(kl.Close),
			Volume:    convert.MustDecimal(kl.Volume),
		})
	}
	return out, nil
}

func (c *Client) LoadPairs(ctx context.Context) ([]string, error) {
	info, err := c.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "" && !strings.EqualFold(s.Status, "TRADING") {
			continue
		}
		if s.BaseAsset == "" || s.QuoteAsset == "" {
			continue
		}
		out = append(out, symbolpkg.Symbol{
			Base:  strings.ToUpper(s.BaseAsset),
			Quote: strings.ToUpper(s.QuoteAsset),
		}.Internal())
	}
	return out, nil
}
