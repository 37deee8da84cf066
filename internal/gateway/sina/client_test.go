package sina

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyBody = `/*<script>location.href='//sina.com';</script>*/
var _RB0=([{"d":"2024-01-02","o":"4050.000","h":"4080.000","l":"4010.000","c":"4030.000","v":"1234567","p":"1800000","s":"4040"},
{"d":"2024-01-03","o":"4030.000","h":"4060.000","l":"3990.000","c":"4000.000","v":"1345678","p":"1810000","s":"4020"},
{"d":"2024-01-04","o":"4000.000","h":"4020.000","l":"3980.000","c":"4010.000","v":"1100000","p":"1790000","s":"4005"}]);`

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RB0", r.URL.Query().Get("symbol"))
		assert.Contains(t, r.URL.EscapedPath(), "InnerFuturesNewService.getDailyKLine")
		_, _ = w.Write([]byte(dailyBody))
	}))
	defer srv.Close()

	c, err := New(Config{RESTBaseURL: srv.URL})
	require.NoError(t, err)
	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	rows, err := c.History(context.Background(), "rb0", IntervalDaily, start, start.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-03", rows[0]["date"])
	assert.Equal(t, 4030.0, rows[0]["open"])
	assert.Equal(t, 3990.0, rows[0]["low"])
	assert.Equal(t, 1100000.0, rows[1]["volume"])
}

func TestParseJSONPEmpty(t *testing.T) {
	rows, err := parseJSONP([]byte(`var _XX0=(null);`))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = parseJSONP([]byte(`<html>blocked</html>`))
	assert.Error(t, err)
}

func TestHistoryRejectsIntraday(t *testing.T) {
	c, err := New(Config{RESTBaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, err = c.History(context.Background(), "RB0", "5", time.Now(), time.Now())
	assert.Error(t, err)
}
