package adapter

import (
	"testing"

	"unidata/internal/market"

	"github.com/stretchr/testify/assert"
)

func TestPeriodTables(t *testing.T) {
	cases := []struct {
		name   string
		table  PeriodTable
		period string
		want   string
	}{
		{"binance monthly", binancePeriods, "1M", "1M"},
		{"binance weekly", binancePeriods, "1w", "1w"},
		{"binance unknown", binancePeriods, "7x", "1d"},
		{"coinbase hour", coinbasePeriods, "1h", "1h"},
		{"coinbase weekly falls back", coinbasePeriods, "1w", "1d"},
		{"gate weekly", gatePeriods, "1w", "7d"},
		{"gate monthly", gatePeriods, "1M", "30d"},
		{"yahoo monthly", yahooPeriods, "1M", "1mo"},
		{"yahoo weekly", yahooPeriods, "1w", "1wk"},
		{"yahoo unknown", yahooPeriods, "daily", "1d"},
		{"china monthly", chinaPeriods, "1M", "monthly"},
		{"china daily", chinaPeriods, "1d", "daily"},
		{"china hour", chinaPeriods, "1h", "60"},
		{"china unknown", chinaPeriods, "daily", "daily"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.table.Translate(tc.period))
		})
	}
}

func TestAdapterVenuePeriod(t *testing.T) {
	crypto := NewCrypto(NewBinanceStrategy(barClient(&MockBarClient{})))
	equities := NewEquities(historyClient(&MockHistoryClient{}))
	china := NewChina(historyClient(&MockHistoryClient{}), historyClient(&MockHistoryClient{}))

	assert.Equal(t, "1M", crypto.VenuePeriod(market.Period1M))
	assert.Equal(t, "1mo", equities.VenuePeriod(market.Period1M))
	assert.Equal(t, "monthly", china.VenuePeriod(market.Period1M))

	for _, p := range market.StandardPeriods {
		assert.NotEmpty(t, crypto.VenuePeriod(p), p)
		assert.NotEmpty(t, equities.VenuePeriod(p), p)
		assert.NotEmpty(t, china.VenuePeriod(p), p)
	}
}

func TestPeriodTableSupports(t *testing.T) {
	assert.True(t, coinbasePeriods.Supports("1d"))
	assert.True(t, coinbasePeriods.Supports("daily"))
	assert.False(t, coinbasePeriods.Supports("1w"))
	assert.False(t, coinbasePeriods.Supports(" 1M "))
	assert.True(t, binancePeriods.Supports("1M"))
	assert.True(t, gatePeriods.Supports("30m"))
}
