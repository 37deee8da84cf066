// Package sina reads China futures daily bars from Sina's JSONP kline service.
package sina

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"unidata/internal/logger"
	"unidata/internal/market"
	"unidata/internal/pkg/convert"
	"unidata/internal/pkg/httpx"

	"github.com/tidwall/gjson"
)

const (
	defaultRESTBaseURL = "https://stock2.finance.sina.com.cn"
	dailyPath          = "/futures/api/jsonp.php/var%20_{SYMBOL}=/InnerFuturesNewService.getDailyKLine"
	// IntervalDaily is the only interval the service serves.
	IntervalDaily = "daily"
)

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
		return nil, fmt.Errorf("sina: %w", err)
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

// History returns the full daily series for a contract (RB0, RB2410) filtered to [start, end].
// Records use the keys date, open, high, low, close, volume, hold.
func (c *Client) History(ctx context.Context, symbol, interval string, start, end time.Time) ([]market.Record, error) {
	if interval != IntervalDaily {
		return nil, fmt.Errorf("sina: unsupported interval %q", interval)
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	path := strings.ReplaceAll(dailyPath, "{SYMBOL}", url.PathEscape(symbol))
	endpoint, err := httpx.JoinURL(c.baseURL, path, url.Values{"symbol": {symbol}})
	if err != nil {
		return nil, err
	}
	body, err := httpx.Get(ctx, c.http, endpoint, map[string]string{"Referer": "https://finance.sina.com.cn/"})
	if err != nil {
		logger.Errorf("[sina] fetch daily kline failed %s: %v", symbol, err)
		return nil, err
	}
	rows, err := parseJSONP(body)
	if err != nil {
		return nil, err
	}
	return filterDates(rows, start, end), nil
}

// parseJSONP strips the "var _X=(...);" wrapper and reads [{d,o,h,l,c,v,p}, ...].
func parseJSONP(body []byte) ([]market.Record, error) {
	open := bytes.IndexByte(body, '(')
	closeIdx := bytes.LastIndexByte(body, ')')
	if open < 0 || closeIdx <= open {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("sina: unexpected payload")
	}
	inner := bytes.TrimSpace(body[open+1 : closeIdx])
	if len(inner) == 0 || string(inner) == "null" {
		return nil, nil
	}
	res := gjson.ParseBytes(inner)
	if !res.IsArray() {
		return nil, fmt.Errorf("sina: unexpected payload")
	}
	out := make([]market.Record, 0, len(res.Array()))
	for _, item := range res.Array() {
		d := item.Get("d").String()
		if d == "" {
			continue
		}
		rec := market.Record{"date": d}
		for src, dst := range map[string]string{"o": "open", "h": "high", "l": "low", "c": "close", "v": "volume", "p": "hold"} {
			if v, ok := convert.ParseDecimal(item.Get(src).String()); ok {
				rec[dst] = v
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func filterDates(rows []market.Record, start, end time.Time) []market.Record {
	from := start.UTC().Format("2006-01-02")
	to := end.UTC().Format("2006-01-02")
	out := rows[:0]
	for _, r := range rows {
		d, _ := r["date"].(string)
		if (!start.IsZero() && d < from) || (!end.IsZero() && d > to) {
			continue
		}
		out = append(out, r)
	}
	return out
}
