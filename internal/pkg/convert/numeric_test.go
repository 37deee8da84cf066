package convert

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{1.5, 1.5, true},
		{float32(2.5), 2.5, true},
		{int(3), 3, true},
		{int64(4), 4, true},
		{json.Number("5.25"), 5.25, true},
		{" 6.5 ", 6.5, true},
		{"1,234.5", 1234.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{math.NaN(), 0, false},
	}
	for _, tc := range cases {
		got, ok := ToFloat64(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}

func TestParseDecimal(t *testing.T) {
	f, ok := ParseDecimal("0.00001234")
	assert.True(t, ok)
	assert.InDelta(t, 0.00001234, f, 1e-15)

	assert.Equal(t, 42000.1, MustDecimal("42000.10000000"))
	assert.Equal(t, 0.0, MustDecimal("n/a"))
}
