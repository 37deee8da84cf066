package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"unidata/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() market.Table {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	return market.Table{
		Columns: []market.Column{market.ColTimestamp, market.ColOpen, market.ColHigh, market.ColLow, market.ColClose, market.ColVolume},
		Rows: []market.Row{
			{Candle: market.Candle{Timestamp: ts, Open: 41, High: 43, Low: 40, Close: 42.5, Volume: 10}},
			{Candle: market.Candle{Timestamp: ts + 86_400_000, Open: 42.5, High: 44, Low: 42, Close: 43, Volume: 12}},
		},
	}
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, market.Failed("boom"), "json"))
	assert.Contains(t, buf.String(), `"status": "FAILED"`)
	assert.Contains(t, buf.String(), `"error": "boom"`)

	buf.Reset()
	require.NoError(t, writeResult(&buf, market.Failed("boom"), "yaml"))
	assert.Contains(t, buf.String(), "status: FAILED")

	assert.Error(t, writeResult(&buf, market.Failed("boom"), "csv"))
}

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	t.Setenv("UNIDATA_CONFIG", "")
	cfg, path, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, ":9992", cfg.App.HTTPAddr)

	_, _, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteChartHTML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.html")
	require.NoError(t, writeChart(context.Background(), out, sampleTable()))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")

	assert.Error(t, writeChart(context.Background(), filepath.Join(t.TempDir(), "chart.svg"), sampleTable()))
}

func TestRunPullRejectsBadTime(t *testing.T) {
	t.Setenv("UNIDATA_CONFIG", "")
	var buf bytes.Buffer
	err := runPull(context.Background(), []string{"-ticker", "BTC/USDT", "-start", "yesterday"}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid -start")
	assert.Empty(t, buf.String())
}
