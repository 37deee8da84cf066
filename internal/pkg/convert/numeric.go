// Package convert turns loosely typed provider cells into numbers.
package convert

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ToFloat64 converts the numeric shapes venues emit to float64. ok is false for nil, unsupported
// types, unparsable strings and NaN.
func ToFloat64(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, ok := ParseDecimal(t)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseDecimal parses a decimal price string such as "0.00001234" or "1,234.5".
func ParseDecimal(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// MustDecimal is ParseDecimal returning 0 on failure, for venue fields that are always numeric.
func MustDecimal(s string) float64 {
	f, _ := ParseDecimal(s)
	return f
}
