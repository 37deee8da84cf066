// Package yahoo reads bar history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"unidata/internal/logger"
	"unidata/internal/market"
	"unidata/internal/pkg/httpx"

	"github.com/tidwall/gjson"
)

const defaultRESTBaseURL = "https://query1.finance.yahoo.com"

// intradayIntervals are answered with a Datetime column, everything else with Date.
var intradayIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true, "30m": true,
	"60m": true, "90m": true, "1h": true,
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
}

var _ market.HistoryClient = (*Client)(nil)

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
		return nil, fmt.Errorf("yahoo: %w", err)
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

// History returns one record per bar with Yahoo's column names: Date or Datetime, Open, High,
// Low, Close, Adj Close, Volume. Bars without a close are skipped.
func (c *Client) History(ctx context.Context, symbol, interval string, start, end time.Time) ([]market.Record, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	q := url.Values{
		"interval":       {interval},
		"period1":        {strconv.FormatInt(start.Unix(), 10)},
		"period2":        {strconv.FormatInt(end.Unix(), 10)},
		"includePrePost": {"false"},
		"events":         {"div,splits"},
	}
	endpoint, err := httpx.JoinURL(c.baseURL, "/v8/finance/chart/"+url.PathEscape(symbol), q)
	if err != nil {
		return nil, err
	}
	body, err := httpx.Get(ctx, c.http, endpoint, nil)
	if err != nil {
		logger.Errorf("[yahoo] fetch chart failed %s %s: %v", symbol, interval, err)
		return nil, err
	}
	return parseChart(body, intradayIntervals[interval])
}

func parseChart(body []byte, intraday bool) ([]market.Record, error) {
	root := gjson.ParseBytes(body)
	if desc := root.Get("chart.error.description").String(); desc != "" {
		return nil, fmt.Errorf("yahoo: %s", desc)
	}
	res := root.Get("chart.result.0")
	if !res.Exists() {
		return nil, nil
	}
	stamps := res.Get("timestamp").Array()
	quote := res.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	adj := res.Get("indicators.adjclose.0.adjclose").Array()

	loc := time.UTC
	if tz := res.Get("meta.exchangeTimezoneName").String(); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	out := make([]market.Record, 0, len(stamps))
	for i, ts := range stamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		rec := market.Record{
			"Open":   cell(opens, i),
			"High":   cell(highs, i),
			"Low":    cell(lows, i),
			"Close":  closes[i].Float(),
			"Volume": cell(volumes, i),
		}
		if i < len(adj) {
			rec["Adj Close"] = adj[i].Float()
		}
		at := time.Unix(ts.Int(), 0)
		if intraday {
			rec["Datetime"] = at.UTC()
		} else {
			rec["Date"] = at.In(loc).Format("2006-01-02")
		}
		out = append(out, rec)
	}
	return out, nil
}

func cell(values []gjson.Result, i int) any {
	if i >= len(values) || values[i].Type == gjson.Null {
		return nil
	}
	return values[i].Float()
}
