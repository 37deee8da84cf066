package adapter

import (
	"strings"

	"unidata/internal/market"
)

// PeriodTable translates standard period codes into one venue's vocabulary. Unknown codes map to
// the table's fallback.
type PeriodTable struct {
	codes    map[market.Period]string
	fallback string
}

func (t PeriodTable) Translate(period string) string {
	if v, ok := t.codes[strings.TrimSpace(period)]; ok {
		return v
	}
	return t.fallback
}

// Supports reports whether period has a native code. Codes outside the standard vocabulary are
// always supported through the fallback.
func (t PeriodTable) Supports(period string) bool {
	period = strings.TrimSpace(period)
	if _, ok := t.codes[period]; ok {
		return true
	}
	for _, std := range market.StandardPeriods {
		if std == period {
			return false
		}
	}
	return true
}

// Fallback returns the code used for unrecognized periods.
func (t PeriodTable) Fallback() string {
	return t.fallback
}

var binancePeriods = PeriodTable{
	codes: map[market.Period]string{
		market.Period1m:  "1m",
		market.Period5m:  "5m",
		market.Period15m: "15m",
		market.Period30m: "30m",
		market.Period1h:  "1h",
		market.Period1d:  "1d",
		market.Period1w:  "1w",
		market.Period1M:  "1M",
	},
	fallback: "1d",
}

// coinbase serves fixed granularities only; 30m, 1w and 1M are rejected by the crypto adapter.
var coinbasePeriods = PeriodTable{
	codes: map[market.Period]string{
		market.Period1m:  "1m",
		market.Period5m:  "5m",
		market.Period15m: "15m",
		market.Period1h:  "1h",
		market.Period1d:  "1d",
	},
	fallback: "1d",
}

var gatePeriods = PeriodTable{
	codes: map[market.Period]string{
		market.Period1m:  "1m",
		market.Period5m:  "5m",
		market.Period15m: "15m",
		market.Period30m: "30m",
		market.Period1h:  "1h",
		market.Period1d:  "1d",
		market.Period1w:  "7d",
		market.Period1M:  "30d",
	},
	fallback: "1d",
}

var yahooPeriods = PeriodTable{
	codes: map[market.Period]string{
		market.Period1m:  "1m",
		market.Period5m:  "5m",
		market.Period15m: "15m",
		market.Period30m: "30m",
		market.Period1h:  "1h",
		market.Period1d:  "1d",
		market.Period1w:  "1wk",
		market.Period1M:  "1mo",
	},
	fallback: "1d",
}

// 东财分钟线用纯数字，日/周/月线用英文单词。
var chinaPeriods = PeriodTable{
	codes: map[market.Period]string{
		market.Period1m:  "1",
		market.Period5m:  "5",
		market.Period15m: "15",
		market.Period30m: "30",
		market.Period1h:  "60",
		market.Period1d:  "daily",
		market.Period1w:  "weekly",
		market.Period1M:  "monthly",
	},
	fallback: "daily",
}

// 新浪期货只有日线。
var futuresPeriods = PeriodTable{
	codes:    map[market.Period]string{market.Period1d: "daily"},
	fallback: "daily",
}
