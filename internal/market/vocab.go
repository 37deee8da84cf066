package market

import "strings"

// MarketType 决定默认的数据源路由。
type MarketType string

const (
	MarketCrypto  MarketType = "crypto"
	MarketStock   MarketType = "stock"
	MarketFutures MarketType = "futures"
)

// ParseMarketType normalizes a caller supplied market type. ok is false for anything outside the
// closed set.
func ParseMarketType(raw string) (MarketType, bool) {
	mt := MarketType(strings.ToLower(strings.TrimSpace(raw)))
	switch mt {
	case MarketCrypto, MarketStock, MarketFutures:
		return mt, true
	default:
		return mt, false
	}
}

// Market is the equities sub-classification derived from a ticker's shape.
type Market string

const (
	MarketAShare  Market = "A_SHARE"
	MarketHK      Market = "HK"
	MarketUnknown Market = "UNKNOWN"
)

// Column 是标准输出表的列名。
type Column string

const (
	ColTimestamp Column = "timestamp"
	ColOpen      Column = "open"
	ColHigh      Column = "high"
	ColLow       Column = "low"
	ColClose     Column = "close"
	ColVolume    Column = "volume"
	ColSymbol    Column = "symbol"
	ColExchange  Column = "exchange"
)

// CanonicalColumns is the fixed output order.
var CanonicalColumns = []Column{
	ColTimestamp, ColOpen, ColHigh, ColLow, ColClose, ColVolume, ColSymbol, ColExchange,
}

// priceColumns must all be present for a table to count as data.
var priceColumns = []Column{ColOpen, ColHigh, ColLow, ColClose}

// Period is a standard bar-size code. Venue specific strings never leave an adapter.
type Period = string

const (
	Period1m  Period = "1m"
	Period5m  Period = "5m"
	Period15m Period = "15m"
	Period30m Period = "30m"
	Period1h  Period = "1h"
	Period1d  Period = "1d"
	Period1w  Period = "1w"
	Period1M  Period = "1M"
)

// StandardPeriods lists the closed period vocabulary.
var StandardPeriods = []Period{
	Period1m, Period5m, Period15m, Period30m, Period1h, Period1d, Period1w, Period1M,
}

type Status string

const (
	StatusOK     Status = "OK"
	StatusFailed Status = "FAILED"
)

// Exchange ids accepted by the dispatch factory.
const (
	ExchangeBinance        = "binance"
	ExchangeCoinbase       = "coinbase"
	ExchangeGate           = "gate"
	ExchangeGlobalEquities = "global-equities"
	ExchangeChinaEquities  = "china-equities"

	// aliases accepted for compatibility with older callers
	ExchangeCCXT     = "ccxt"
	ExchangeYFinance = "yfinance"
	ExchangeAKShare  = "akshare"
)
