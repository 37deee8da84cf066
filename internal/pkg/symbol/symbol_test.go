package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"unidata/internal/market"
)

func TestDetectMarket(t *testing.T) {
	cases := []struct {
		in     string
		market market.Market
		symbol string
	}{
		{"700", market.MarketHK, "00700"},
		{"00700", market.MarketHK, "00700"},
		{"5", market.MarketHK, "00005"},
		{"600519", market.MarketAShare, "600519"},
		{"000001", market.MarketAShare, "000001"},
		{"RB0", market.MarketUnknown, "RB0"},
		{"abc", market.MarketUnknown, "ABC"},
		{"rb2410", market.MarketUnknown, "RB2410"},
		{"1234567", market.MarketUnknown, "1234567"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			mkt, sym := DetectMarket(tc.in)
			assert.Equal(t, tc.market, mkt)
			assert.Equal(t, tc.symbol, sym)
		})
	}
}

func TestDetectMarketIsPure(t *testing.T) {
	m1, s1 := DetectMarket("700")
	m2, s2 := DetectMarket("700")
	assert.Equal(t, m1, m2)
	assert.Equal(t, s1, s2)
}

func TestParse(t *testing.T) {
	assert.Equal(t, Symbol{Base: "BTC", Quote: "USDT"}, Parse("btc_usdt"))
	assert.Equal(t, Symbol{Base: "BTC", Quote: "USDT"}, Parse("BTC/USDT"))
	assert.Equal(t, Symbol{Base: "ETH", Quote: "USD"}, Parse("ETH-USD"))
	assert.Equal(t, Symbol{Base: "SOL", Quote: "USDT"}, Parse("SOLUSDT"))
	assert.Equal(t, Symbol{Base: "BTC", Quote: "USDT"}, Parse("BTC/USDT:USDT"))
	assert.Equal(t, Symbol{}, Parse("AAPL"))
	assert.Equal(t, "", Normalize(""))
}

func TestToPair(t *testing.T) {
	assert.Equal(t, "BTC/USDT", ToPair("BTC_USDT"))
	assert.Equal(t, "ETH/USDT", ToPair("eth_usdt"))
	assert.Equal(t, "INVALID/PAIR", ToPair("INVALID/PAIR"))
	assert.Equal(t, "XYZ", ToPair("xyz"))
}

func TestVenueConverters(t *testing.T) {
	assert.Equal(t, "BTCUSDT", Binance.ToExchange("btc/usdt"))
	assert.Equal(t, "BTC/USDT", Binance.FromExchange("BTCUSDT"))
	assert.Equal(t, "BTC_USDT", Gate.ToExchange("BTC/USDT"))
	assert.Equal(t, "BTC/USDT", Gate.FromExchange("btc_usdt"))
	assert.Equal(t, "SOL-USD", Coinbase.ToExchange("SOL/USD"))
	assert.Equal(t, "SOL/USD", Coinbase.FromExchange("SOL-USD"))
	assert.Equal(t, FormatGate, Gate.Format())
}

func TestYahooEquity(t *testing.T) {
	assert.Equal(t, "600519.SS", YahooEquity("600519"))
	assert.Equal(t, "000001.SZ", YahooEquity("000001"))
	assert.Equal(t, "0700.HK", YahooEquity("700"))
	assert.Equal(t, "0700.HK", YahooEquity("00700"))
	assert.Equal(t, "9988.HK", YahooEquity("09988"))
	assert.Equal(t, "AAPL", YahooEquity("aapl"))
	assert.Equal(t, "GC=F", YahooEquity("GC=F"))
}

func TestFrontMonth(t *testing.T) {
	assert.Equal(t, "RB0", FrontMonth("RB=F"))
	assert.Equal(t, "RB0", FrontMonth("rb=f"))
	assert.Equal(t, "RB2410", FrontMonth("rb2410"))
	assert.Equal(t, "=F", FrontMonth("=F"))
}
