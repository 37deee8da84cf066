package gate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"unidata/internal/logger"
	"unidata/internal/market"
	"unidata/internal/pkg/convert"
	"unidata/internal/pkg/httpx"
	symbolpkg "unidata/internal/pkg/symbol"
	"unidata/internal/pkg/timeframe"

	"github.com/antihax/optional"
	gateapi "github.com/gateio/gateapi-go/v7"
)

const gateMaxHistoryLimit = 1000

// Client 通过 gateapi-go 的现货接口拉取 K 线。
type Client struct {
	cfg  Config
	rest *gateapi.APIClient
}

var _ market.BarClient = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	httpClient, err := httpx.NewClient(final.HTTPTimeout, final.RESTProxyURL)
	if err != nil {
		return nil, fmt.Errorf("gate: %w", err)
	}
	conf := gateapi.NewConfiguration()
	conf.BasePath = final.RESTBaseURL
	conf.HTTPClient = httpClient
	return &Client{cfg: final, rest: gateapi.NewAPIClient(conf)}, nil
}

func (c *Client) FetchBars(ctx context.Context, pair, interval string, since int64, limit int) ([]market.Candle, error) {
	if limit <= 0 || limit > gateMaxHistoryLimit {
		limit = gateMaxHistoryLimit
	}
	exchangeSymbol := symbolpkg.Gate.ToExchange(pair)
	if exchangeSymbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.TrimSpace(interval)
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}

	opts := &gateapi.ListCandlesticksOpts{
		Interval: optional.NewString(interval),
	}
	// limit conflicts with from/to on this endpoint
	if since > 0 {
		from := since / 1000
		to := from + int64(limit)*int64(timeframe.BarDuration(interval)/time.Second)
		if now := time.Now().Unix(); to > now {
			to = now
		}
		opts.From = optional.NewInt64(from)
		opts.To = optional.NewInt64(to)
	} else {
		opts.Limit = optional.NewInt32(int32(limit))
	}

	rows, _, err := c.rest.SpotApi.ListCandlesticks(ctx, exchangeSymbol, opts)
	if err != nil {
		logger.Errorf("[gate] fetch candles failed %s %s limit=%d: %v", exchangeSymbol, interval, limit, err)
		return nil, err
	}
	out := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		c, ok := parseCandleRow(row)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// parseCandleRow reads [t, quote volume, close, high, low, open, base volume, closed].
func parseCandleRow(row []string) (market.Candle, bool) {
	if len(row) < 7 {
		return market.Candle{}, false
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return market.Candle{}, false
	}
	return market.Candle{
		Timestamp: sec * 1000,
		Close:     convert.MustDecimal(row[2]),
		High:      convert.MustDecimal(row[3]),
		Low:       convert.MustDecimal(row[4]),
		Open:      convert.MustDecimal(row[5]),
		Volume:    convert.MustDecimal(row[6]),
	}, true
}

func (c *Client) LoadPairs(ctx context.Context) ([]string, error) {
	pairs, _, err := c.rest.SpotApi.ListCurrencyPairs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.TradeStatus != "" && p.TradeStatus != "tradable" {
			continue
		}
		internal := symbolpkg.Gate.FromExchange(p.Id)
		if internal == "" {
			continue
		}
		out = append(out, internal)
	}
	return out, nil
}
