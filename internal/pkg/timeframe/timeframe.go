// Package timeframe parses bar-size codes and estimates look-back windows.
package timeframe

import (
	"strconv"
	"strings"
	"time"
)

type Unit int

const (
	UnitMinute Unit = iota + 1
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
)

// monthApprox is the per-bar duration used for monthly bars.
const monthApprox = 30 * 24 * time.Hour

func (u Unit) Duration() time.Duration {
	switch u {
	case UnitMinute:
		return time.Minute
	case UnitHour:
		return time.Hour
	case UnitDay:
		return 24 * time.Hour
	case UnitWeek:
		return 7 * 24 * time.Hour
	case UnitMonth:
		return monthApprox
	default:
		return 24 * time.Hour
	}
}

// Daily reports whether bars of this unit span at least one calendar day.
func (u Unit) Daily() bool {
	return u >= UnitDay
}

// unitSuffixes is checked longest first so "1mo" is not read as minutes. "M" (upper case) is a
// month, "m" a minute.
var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"min", UnitMinute},
	{"mo", UnitMonth},
	{"wk", UnitWeek},
	{"M", UnitMonth},
	{"m", UnitMinute},
	{"h", UnitHour},
	{"H", UnitHour},
	{"d", UnitDay},
	{"D", UnitDay},
	{"w", UnitWeek},
	{"W", UnitWeek},
}

// namedUnits covers opaque venue words such as "daily".
var namedUnits = map[string]Unit{
	"daily":   UnitDay,
	"weekly":  UnitWeek,
	"monthly": UnitMonth,
	"hourly":  UnitHour,
}

// Parse reads "15m", "1h", "1d", "1w", "1M", "1mo", "1wk" into a magnitude and unit.
// Returns ok=false when the code has no leading positive integer or known unit.
func Parse(period string) (int, Unit, bool) {
	period = strings.TrimSpace(period)
	if period == "" {
		return 0, 0, false
	}
	for _, us := range unitSuffixes {
		numStr, found := strings.CutSuffix(period, us.suffix)
		if !found || numStr == "" {
			continue
		}
		n, err := strconv.Atoi(numStr)
		if err != nil || n <= 0 {
			continue
		}
		return n, us.unit, true
	}
	return 0, 0, false
}

// Resolve is Parse with fallbacks: named periods map to their unit, anything else to one day.
func Resolve(period string) (int, Unit) {
	if n, u, ok := Parse(period); ok {
		return n, u
	}
	if u, ok := namedUnits[strings.ToLower(strings.TrimSpace(period))]; ok {
		return 1, u
	}
	return 1, UnitDay
}

// BarDuration is the approximate length of one bar of the given period.
func BarDuration(period string) time.Duration {
	n, u := Resolve(period)
	return time.Duration(n) * u.Duration()
}

// BarsBetween estimates how many bars of period fit in [start, end], rounded up. At least 1.
func BarsBetween(start, end time.Time, period string) int {
	bar := BarDuration(period)
	span := end.Sub(start)
	if span <= 0 || bar <= 0 {
		return 1
	}
	n := int(span / bar)
	if span%bar != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}
