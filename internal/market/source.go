package market

import (
	"context"
	"time"
)

// BarClient is the crypto venue collaborator. Bars come back oldest first.
type BarClient interface {
	// FetchBars returns up to limit bars of the given venue timeframe starting at since (epoch ms,
	// 0 means "let the venue decide").
	FetchBars(ctx context.Context, pair, timeframe string, since int64, limit int) ([]Candle, error)

	// LoadPairs lists the venue's currently tradable pairs in BASE/QUOTE form.
	LoadPairs(ctx context.Context) ([]string, error)
}

// HistoryClient is the equities collaborator. Rows keep the provider's field names.
type HistoryClient interface {
	History(ctx context.Context, symbol, interval string, start, end time.Time) ([]Record, error)
}
