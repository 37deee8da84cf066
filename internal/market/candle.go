package market

// Candle is one OHLCV bar as delivered by a venue client. Timestamp is the bar open time in
// epoch milliseconds.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Row is a normalized bar with the literal symbol and exchange columns attached.
type Row struct {
	Candle
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

// Record is one raw row from a history provider, keyed by the provider's own field names.
type Record map[string]any
