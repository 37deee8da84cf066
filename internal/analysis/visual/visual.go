// Package visual 把标准 K 线表渲染成 go-echarts 蜡烛图（HTML，可选 PNG）。
package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	talib "github.com/markcheno/go-talib"

	"unidata/internal/market"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorVolume        = "#a78bfa"

	chartWidthPx   = 1400
	klineHeightPx  = 560
	volumeHeightPx = 220
)

var emaColors = []string{"#3b82f6", "#fbbf24", "#f472b6", "#22d3ee"}

// DefaultEMAPeriods are overlaid when ChartOptions.EMAPeriods is nil.
var DefaultEMAPeriods = []int{20, 60}

type ChartOptions struct {
	Title string
	// EMAPeriods are drawn over the candles. Periods longer than the series are skipped.
	EMAPeriods []int
}

// RenderKline writes a standalone HTML page with a candlestick chart and a volume chart.
func RenderKline(w io.Writer, table market.Table, opt ChartOptions) error {
	if table.IsEmpty() {
		return fmt.Errorf("no rows to chart")
	}
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = defaultTitle(table)
	}
	periods := opt.EMAPeriods
	if periods == nil {
		periods = DefaultEMAPeriods
	}

	xAxis := buildXAxis(table)
	minPrice, maxPrice := priceBounds(table)
	padding := (maxPrice - minPrice) * 0.05
	if padding <= 0 {
		padding = math.Max(1, math.Abs(maxPrice)*0.01)
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       title,
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", klineHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTitleOpts(opts.Title{
			Title:      title,
			Left:       "left",
			Top:        "10",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			Min:       round(minPrice-padding, 4),
			Max:       round(maxPrice+padding, 4),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", buildKlineSeries(table))
	if ema := buildEMALine(table, periods); ema != nil {
		ema.SetXAxis(xAxis)
		kline.Overlap(ema)
	}

	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(kline)
	if table.Has(market.ColVolume) {
		page.AddCharts(buildVolumeChart(xAxis, table))
	}
	return page.Render(w)
}

// RenderKlineHTML is RenderKline into memory.
func RenderKlineHTML(table market.Table, opt ChartOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderKline(&buf, table, opt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func defaultTitle(table market.Table) string {
	parts := make([]string, 0, 2)
	if table.Has(market.ColSymbol) {
		parts = append(parts, strings.ToUpper(table.Rows[0].Symbol))
	}
	if table.Has(market.ColExchange) {
		parts = append(parts, table.Rows[0].Exchange)
	}
	if len(parts) == 0 {
		return "kline"
	}
	return strings.Join(parts, " @ ")
}

func buildXAxis(table market.Table) []string {
	layout := "2006-01-02"
	if intraday(table) {
		layout = "01-02 15:04"
	}
	x := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		x[i] = time.UnixMilli(r.Timestamp).UTC().Format(layout)
	}
	return x
}

// intraday reports whether any two consecutive bars are less than a day apart.
func intraday(table market.Table) bool {
	for i := 1; i < len(table.Rows); i++ {
		if table.Rows[i].Timestamp-table.Rows[i-1].Timestamp < int64(24*time.Hour/time.Millisecond) {
			return true
		}
	}
	return false
}

func buildKlineSeries(table market.Table) []opts.KlineData {
	data := make([]opts.KlineData, 0, len(table.Rows))
	for _, r := range table.Rows {
		data = append(data, opts.KlineData{Value: [4]float64{r.Open, r.Close, r.Low, r.High}})
	}
	return data
}

func buildEMALine(table market.Table, periods []int) *charts.Line {
	closes := make([]float64, len(table.Rows))
	for i, r := range table.Rows {
		closes[i] = r.Close
	}
	line := charts.NewLine()
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	added := 0
	for _, p := range periods {
		if p < 2 || p > len(closes) {
			continue
		}
		series := talib.Ema(closes, p)
		// talib 在预热区间输出 0
		for i := 0; i < p-1 && i < len(series); i++ {
			series[i] = math.NaN()
		}
		color := emaColors[added%len(emaColors)]
		line.AddSeries(fmt.Sprintf("EMA%d", p), toLineData(series),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}))
		added++
	}
	if added == 0 {
		return nil
	}
	return line
}

func buildVolumeChart(xAxis []string, table market.Table) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", volumeHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Volume", Left: "left", TitleStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			SplitNumber: 6,
			AxisLabel:   &opts.AxisLabel{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}),
	)
	vols := make([]opts.BarData, len(table.Rows))
	for i, r := range table.Rows {
		color := colorBear
		if r.Close >= r.Open {
			color = colorBull
		}
		vols[i] = opts.BarData{
			Value: r.Volume,
			ItemStyle: &opts.ItemStyle{
				Color:   color,
				Opacity: opts.Float(0.6),
			},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Volume", vols, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorVolume}))
	return bar
}

func toLineData(series []float64) []opts.LineData {
	line := make([]opts.LineData, len(series))
	for i, val := range series {
		if math.IsNaN(val) {
			line[i] = opts.LineData{Value: nil}
			continue
		}
		line[i] = opts.LineData{Value: round(val, 4)}
	}
	return line
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}

func priceBounds(table market.Table) (minVal, maxVal float64) {
	if len(table.Rows) == 0 {
		return 0, 0
	}
	minVal = table.Rows[0].Low
	maxVal = table.Rows[0].High
	for _, r := range table.Rows {
		if r.Low < minVal {
			minVal = r.Low
		}
		if r.High > maxVal {
			maxVal = r.High
		}
	}
	return minVal, maxVal
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable checks once per process that a headless Chrome can be started.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		parent, cancel := chromedp.NewContext(ctx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// RenderKlinePNG screenshots the HTML chart with headless Chrome.
func RenderKlinePNG(ctx context.Context, table market.Table, opt ChartOptions) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, fmt.Errorf("headless chrome unavailable: %w", err)
	}
	html, err := RenderKlineHTML(table, opt)
	if err != nil {
		return nil, err
	}
	height := klineHeightPx
	if table.Has(market.ColVolume) {
		height += volumeHeightPx
	}
	return renderHTMLToPNG(ctx, html, chartWidthPx, height+80)
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
