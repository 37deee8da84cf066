package symbol

import (
	"strings"
)

type Format string

const (
	FormatInternal Format = "internal"
	FormatBinance  Format = "binance"
	FormatGate     Format = "gate"
	FormatCoinbase Format = "coinbase"
)

// Converter maps internal BASE/QUOTE pairs to a venue's wire symbol and back.
type Converter interface {
	ToExchange(internal string) string

	FromExchange(raw string) string

	Format() Format
}

// Symbol is a parsed trading pair.
type Symbol struct {
	Base  string
	Quote string
}

func (s Symbol) Internal() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + "/" + s.Quote
}

// WithQuote returns the same base paired with another quote currency.
func (s Symbol) WithQuote(quote string) Symbol {
	return Symbol{Base: s.Base, Quote: strings.ToUpper(strings.TrimSpace(quote))}
}

// pairDelimiters are accepted between base and quote in caller tickers.
var pairDelimiters = []string{"/", "_", "-"}

var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "TUSD", "FDUSD", "USD", "EUR", "BTC", "ETH", "BNB"}

// Parse splits "BTC_USDT", "btc/usdt", "BTC-USD" or "BTCUSDT" into base and quote.
func Parse(s string) Symbol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Symbol{}
	}

	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}

	for _, delim := range pairDelimiters {
		if parts := strings.SplitN(s, delim, 2); len(parts) == 2 {
			return Symbol{
				Base:  strings.TrimSpace(parts[0]),
				Quote: strings.TrimSpace(parts[1]),
			}
		}
	}

	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{
				Base:  s[:len(s)-len(quote)],
				Quote: quote,
			}
		}
	}

	return Symbol{}
}

// Normalize returns the BASE/QUOTE form, or "" when s is not a pair.
func Normalize(s string) string {
	return Parse(s).Internal()
}

// ToPair is the standard ticker to pair translation: upper-case and swap the underscore word
// delimiter for a slash. Unlike Normalize it never drops input it cannot parse.
func ToPair(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	return strings.ReplaceAll(s, "_", "/")
}
