package adapter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"unidata/internal/market"
	"unidata/internal/pkg/convert"
)

// fieldAliases lists, per canonical column, the lower-cased source field names that mean it,
// in priority order. Unlisted fields are dropped.
var fieldAliases = []struct {
	col     market.Column
	aliases []string
}{
	{market.ColTimestamp, []string{"timestamp", "datetime", "date", "time", "日期", "时间"}},
	{market.ColOpen, []string{"open", "开盘"}},
	{market.ColHigh, []string{"high", "最高"}},
	{market.ColLow, []string{"low", "最低"}},
	{market.ColClose, []string{"close", "收盘"}},
	{market.ColVolume, []string{"volume", "vol", "成交量"}},
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

// epochSecondsCutoff separates epoch seconds from epoch milliseconds (year 5138 in seconds).
const epochSecondsCutoff = 100_000_000_000

// normalize renames raw records into canonical columns, parses timestamps to epoch ms, sorts
// chronologically, drops rows after end, attaches symbol/exchange and keeps the last limit rows.
// A result without rows or without a price column comes back as an empty table.
func normalize(records []market.Record, symbol, exchange string, end time.Time, limit int) market.Table {
	present := make(map[market.Column]struct{}, len(market.CanonicalColumns))
	rows := make([]market.Row, 0, len(records))
	endMs := int64(0)
	if !end.IsZero() {
		endMs = end.UnixMilli()
	}
	for _, rec := range records {
		lowered := make(map[string]any, len(rec))
		for k, v := range rec {
			lowered[strings.ToLower(strings.TrimSpace(k))] = v
		}
		var row market.Row
		hasTS := false
		for _, fa := range fieldAliases {
			raw, ok := pick(lowered, fa.aliases)
			if !ok {
				continue
			}
			if fa.col == market.ColTimestamp {
				ts, ok := parseTimestamp(raw)
				if !ok {
					continue
				}
				row.Timestamp = ts
				hasTS = true
				present[fa.col] = struct{}{}
				continue
			}
			f, ok := convert.ToFloat64(raw)
			if !ok {
				continue
			}
			setPrice(&row, fa.col, f)
			present[fa.col] = struct{}{}
		}
		if !hasTS {
			continue
		}
		if endMs > 0 && row.Timestamp > endMs {
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })

	table := market.Table{Columns: market.Project(present), Rows: rows}
	if table.IsEmpty() {
		return market.Table{}
	}
	return table.WithSymbol(symbol).WithExchange(exchange).Tail(limit)
}

func pick(rec map[string]any, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := rec[a]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func setPrice(row *market.Row, col market.Column, v float64) {
	switch col {
	case market.ColOpen:
		row.Open = v
	case market.ColHigh:
		row.High = v
	case market.ColLow:
		row.Low = v
	case market.ColClose:
		row.Close = v
	case market.ColVolume:
		row.Volume = v
	}
}

// parseTimestamp accepts time.Time, epoch seconds or milliseconds, and date or datetime strings.
// Strings without a zone are read as UTC.
func parseTimestamp(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	case string:
		return parseTimeString(t)
	default:
		f, ok := convert.ToFloat64(v)
		if !ok || f <= 0 {
			return 0, false
		}
		return epochMillis(int64(f)), true
	}
}

func parseTimeString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), true
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return epochMillis(n), true
	}
	return 0, false
}

func epochMillis(n int64) int64 {
	if n < epochSecondsCutoff {
		return n * 1000
	}
	return n
}

// candleRecords turns venue bars into records keyed by canonical column names.
func candleRecords(bars []market.Candle) []market.Record {
	out := make([]market.Record, 0, len(bars))
	for _, b := range bars {
		out = append(out, market.Record{
			string(market.ColTimestamp): b.Timestamp,
			string(market.ColOpen):      b.Open,
			string(market.ColHigh):      b.High,
			string(market.ColLow):       b.Low,
			string(market.ColClose):     b.Close,
			string(market.ColVolume):    b.Volume,
		})
	}
	return out
}
