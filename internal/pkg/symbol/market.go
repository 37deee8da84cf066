package symbol

import (
	"strings"

	"unidata/internal/market"
)

// DetectMarket classifies an equities ticker by its digit count:
//
//	6 digits        -> A_SHARE, unchanged
//	5 digits        -> HK, unchanged
//	1-4 digits      -> HK, left padded to 5 digits
//	anything else   -> UNKNOWN, upper-cased
//
// Short alphanumeric futures codes are not recognised; callers pass an explicit market type for
// those.
func DetectMarket(ticker string) (market.Market, string) {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if !isDigits(s) {
		return market.MarketUnknown, s
	}
	switch {
	case len(s) == 6:
		return market.MarketAShare, s
	case len(s) == 5:
		return market.MarketHK, s
	case len(s) < 5:
		return market.MarketHK, strings.Repeat("0", 5-len(s)) + s
	default:
		return market.MarketUnknown, s
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// YahooEquity maps a caller ticker to Yahoo's listing-suffixed form. A-shares get .SS (Shanghai,
// codes starting 5/6/9) or .SZ, HK codes get .HK with Yahoo's 4 digit padding. Other tickers pass
// through upper-cased.
func YahooEquity(ticker string) string {
	mkt, sym := DetectMarket(ticker)
	switch mkt {
	case market.MarketAShare:
		switch sym[0] {
		case '5', '6', '9':
			return sym + ".SS"
		default:
			return sym + ".SZ"
		}
	case market.MarketHK:
		trimmed := strings.TrimLeft(sym, "0")
		if len(trimmed) < 4 {
			trimmed = strings.Repeat("0", 4-len(trimmed)) + trimmed
		}
		return trimmed + ".HK"
	default:
		return sym
	}
}

// FrontMonth rewrites the "=F" continuous contract notation to the China market form
// (RB=F -> RB0). Explicit contracts such as RB2410 are returned upper-cased.
func FrontMonth(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if base, ok := strings.CutSuffix(s, "=F"); ok && base != "" {
		return base + "0"
	}
	return s
}
