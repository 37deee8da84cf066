package symbol

import "strings"

// VenueConverter writes BASE/QUOTE pairs with a venue specific delimiter. An empty delimiter
// concatenates base and quote (BTCUSDT).
type VenueConverter struct {
	delim  string
	format Format
}

var (
	Binance  = VenueConverter{delim: "", format: FormatBinance}
	Gate     = VenueConverter{delim: "_", format: FormatGate}
	Coinbase = VenueConverter{delim: "-", format: FormatCoinbase}
)

func (c VenueConverter) ToExchange(internal string) string {
	s := strings.ToUpper(strings.TrimSpace(internal))
	if s == "" {
		return ""
	}
	return strings.ReplaceAll(s, "/", c.delim)
}

func (c VenueConverter) FromExchange(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if c.delim != "" {
		if parts := strings.SplitN(s, c.delim, 2); len(parts) == 2 {
			return parts[0] + "/" + parts[1]
		}
	}
	return Parse(s).Internal()
}

func (c VenueConverter) Format() Format {
	return c.format
}
