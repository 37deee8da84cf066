// Package coinbase reads candles and products from the Coinbase Exchange public REST API.
package coinbase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"unidata/internal/logger"
	"unidata/internal/market"
	"unidata/internal/pkg/httpx"
	symbolpkg "unidata/internal/pkg/symbol"

	"github.com/tidwall/gjson"
)

const (
	defaultRESTBaseURL = "https://api.exchange.coinbase.com"
	maxCandles         = 300
)

// granularities are the only bar sizes the candles endpoint serves, in seconds.
var granularities = map[string]int64{
	"1m":  60,
	"5m":  300,
	"15m": 900,
	"1h":  3600,
	"6h":  21600,
	"1d":  86400,
}

type Config struct {
	RESTBaseURL  string
	HTTPTimeout  time.Duration
	ProxyEnabled bool
	RESTProxyURL string
}

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

var _ market.BarClient = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.RESTBaseURL)
	if base == "" {
		base = defaultRESTBaseURL
	}
	proxy := ""
	if cfg.ProxyEnabled {
		proxy = cfg.RESTProxyURL
	}
	httpClient, err := httpx.NewClient(cfg.HTTPTimeout, proxy)
	if err != nil {
		return nil, fmt.Errorf("coinbase: %w", err)
	}
	return &Client{baseURL: base, http: httpClient, now: time.Now}, nil
}

func (c *Client) FetchBars(ctx context.Context, pair, timeframe string, since int64, limit int) ([]market.Candle, error) {
	gran, ok := granularities[strings.TrimSpace(timeframe)]
	if !ok {
		return nil, fmt.Errorf("coinbase: unsupported timeframe %q", timeframe)
	}
	product := symbolpkg.Coinbase.ToExchange(pair)
	if product == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if limit <= 0 || limit > maxCandles {
		limit = maxCandles
	}
	q := url.Values{"granularity": {strconv.FormatInt(gran, 10)}}
	if since > 0 {
		start := time.UnixMilli(since).UTC()
		end := start.Add(time.Duration(int64(limit)*gran) * time.Second)
		if now := c.now().UTC(); end.After(now) {
			end = now
		}
		q.Set("start", start.Format(time.RFC3339))
		q.Set("end", end.Format(time.RFC3339))
	}
	endpoint, err := httpx.JoinURL(c.baseURL, "/products/"+url.PathEscape(product)+"/candles", q)
	if err != nil {
		return nil, err
	}
	body, err := httpx.Get(ctx, c.http, endpoint, nil)
	if err != nil {
		logger.Errorf("[coinbase] fetch candles failed %s %s: %v", product, timeframe, err)
		return nil, err
	}
	return parseCandles(body, limit)
}

// parseCandles reads [[time, low, high, open, close, volume], ...] (newest first) and returns
// the newest limit bars oldest first.
func parseCandles(body []byte, limit int) ([]market.Candle, error) {
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		if msg := res.Get("message").String(); msg != "" {
			return nil, fmt.Errorf("coinbase: %s", msg)
		}
		return nil, fmt.Errorf("coinbase: unexpected candles payload")
	}
	out := make([]market.Candle, 0, len(res.Array()))
	for _, row := range res.Array() {
		cells := row.Array()
		if len(cells) < 6 {
			continue
		}
		out = append(out, market.Candle{
			Timestamp: cells[0].Int() * 1000,
			Low:       cells[1].Float(),
			High:      cells[2].Float(),
			Open:      cells[3].Float(),
			Close:     cells[4].Float(),
			Volume:    cells[5].Float(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (c *Client) LoadPairs(ctx context.Context) ([]string, error) {
	endpoint, err := httpx.JoinURL(c.baseURL, "/products", nil)
	if err != nil {
		return nil, err
	}
	body, err := httpx.Get(ctx, c.http, endpoint, nil)
	if err != nil {
		return nil, err
	}
	products := gjson.ParseBytes(body)
	if !products.IsArray() {
		return nil, fmt.Errorf("coinbase: unexpected products payload")
	}
	out := make([]string, 0, len(products.Array()))
	products.ForEach(func(_, p gjson.Result) bool {
		if p.Get("trading_disabled").Bool() {
			return true
		}
		if status := p.Get("status").String(); status != "" && status != "online" {
			return true
		}
		base := p.Get("base_currency").String()
		quote := p.Get("quote_currency").String()
		if base == "" || quote == "" {
			if internal := symbolpkg.Coinbase.FromExchange(p.Get("id").String()); internal != "" {
				out = append(out, internal)
			}
			return true
		}
		out = append(out, symbolpkg.Symbol{Base: strings.ToUpper(base), Quote: strings.ToUpper(quote)}.Internal())
		return true
	})
	return out, nil
}
