// Package eastmoney 读取东方财富行情接口的 A 股 / 港股 K 线。
package eastmoney

import (
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
	symbolpkg "unidata/internal/pkg/symbol"

	"github.com/tidwall/gjson"
)

const (
	defaultRESTBaseURL = "https://push2his.eastmoney.com"
	klinePath          = "/api/qt/stock/kline/get"
	// 前复权
	adjustForward = "1"
)

// Field names as the provider labels them.
const (
	FieldDate   = "日期"
	FieldOpen   = "开盘"
	FieldClose  = "收盘"
	FieldHigh   = "最高"
	FieldLow    = "最低"
	FieldVolume = "成交量"
	FieldAmount = "成交额"
)

// klineTypes maps the interval words accepted by History to the klt query value.
var klineTypes = map[string]string{
	"daily":   "101",
	"weekly":  "102",
	"monthly": "103",
	"1":       "1",
	"5":       "5",
	"15":      "15",
	"30":      "30",
	"60":      "60",
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
		return nil, fmt.Errorf("eastmoney: %w", err)
	}
	return &Client{baseURL: base, http: httpClient}, nil
}

// SecID returns the provider's market-prefixed security id: 1.xxxxxx for Shanghai, 0.xxxxxx
// for Shenzhen, 116.xxxxx for Hong Kong.
func SecID(ticker string) (string, error) {
	mkt, sym := symbolpkg.DetectMarket(ticker)
	switch mkt {
	case market.MarketAShare:
		switch sym[0] {
		case '5', '6', '9':
			return "1." + sym, nil
		default:
			return "0." + sym, nil
		}
	case market.MarketHK:
		return "116." + sym, nil
	default:
		return "", fmt.Errorf("eastmoney: unsupported ticker %q", ticker)
	}
}

// History returns records keyed with the provider's Chinese field names.
func (c *Client) History(ctx context.Context, symbol, interval string, start, end time.Time) ([]market.Record, error) {
	klt, ok := klineTypes[interval]
	if !ok {
		return nil, fmt.Errorf("eastmoney: unsupported interval %q", interval)
	}
	secid, err := SecID(symbol)
	if err != nil {
		return nil, err
	}
	q := url.Values{
		"secid":   {secid},
		"klt":     {klt},
		"fqt":     {adjustForward},
		"beg":     {start.Format("20060102")},
		"end":     {end.Format("20060102")},
		"fields1": {"f1,f2,f3,f4,f5,f6"},
		"fields2": {"f51,f52,f53,f54,f55,f56,f57"},
	}
	endpoint, err := httpx.JoinURL(c.baseURL, klinePath, q)
	if err != nil {
		return nil, err
	}
	body, err := httpx.Get(ctx, c.http, endpoint, map[string]string{"Referer": "https://quote.eastmoney.com/"})
	if err != nil {
		logger.Errorf("[eastmoney] fetch kline failed %s klt=%s: %v", secid, klt, err)
		return nil, err
	}
	return parseKlines(body)
}

// parseKlines reads data.klines, each "date,open,close,high,low,volume,amount".
func parseKlines(body []byte) ([]market.Record, error) {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("eastmoney: unexpected payload")
	}
	lines := root.Get("data.klines")
	if !lines.Exists() {
		return nil, nil
	}
	out := make([]market.Record, 0, len(lines.Array()))
	for _, line := range lines.Array() {
		parts := strings.Split(line.String(), ",")
		if len(parts) < 6 {
			return nil, fmt.Errorf("eastmoney: malformed kline %q", line.String())
		}
		rec := market.Record{FieldDate: parts[0]}
		for i, key := range []string{FieldOpen, FieldClose, FieldHigh, FieldLow, FieldVolume, FieldAmount} {
			if i+1 >= len(parts) {
				break
			}
			if v, ok := convert.ParseDecimal(parts[i+1]); ok {
				rec[key] = v
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
