// Package preview renders a classified candle set as a self-contained HTML
// chart page, one kline panel and one volume panel.
package preview

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	talib "github.com/markcheno/go-talib"

	"chartfeed/internal/market"
)

const (
	colorBackground    = "#111827"
	colorTextPrimary   = "#f9fafb"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorEmaFast       = "#3b82f6"
	colorEmaSlow       = "#fbbf24"

	chartWidthPx   = 1600
	klineHeightPx  = 600
	volumeHeightPx = 260

	emaFastPeriod = 9
	emaSlowPeriod = 21
)

// Input describes one render.
type Input struct {
	Symbol    string
	Timeframe string
	Candles   []market.Candle
}

// Render produces a standalone HTML page for the given candles.
func Render(input Input) ([]byte, error) {
	if input.Symbol == "" {
		return nil, fmt.Errorf("symbol required for preview render")
	}
	if len(input.Candles) == 0 {
		return nil, fmt.Errorf("no candles to render for %s", input.Symbol)
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	xAxis := buildXAxis(input.Candles)
	page.AddCharts(
		buildKline(input, xAxis),
		buildVolumeChart(input.Timeframe, xAxis, input.Candles),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildKline(input Input, xAxis []string) *charts.Kline {
	minPrice, maxPrice := priceBounds(input.Candles)
	padding := (maxPrice - minPrice) * 0.05
	if padding <= 0 {
		padding = math.Max(1, math.Abs(maxPrice)*0.01)
	}
	minAxis := round(minPrice-padding, 4)
	maxAxis := round(maxPrice+padding, 4)

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", klineHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("%s %s", strings.ToUpper(input.Symbol), input.Timeframe),
			Subtitle:      labelSummary(input.Candles),
			Left:          "left",
			Top:           "10",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
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
			Min:       minAxis,
			Max:       maxAxis,
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

	data := make([]opts.KlineData, 0, len(input.Candles))
	for _, c := range input.Candles {
		data = append(data, opts.KlineData{
			Name:  c.CandleType,
			Value: [4]float64{c.Open, c.Close, c.Low, c.High},
		})
	}
	kline.SetXAxis(xAxis)
	kline.AddSeries(fmt.Sprintf("Price_%s", input.Timeframe), data)

	if emaLine := buildEMALine(input.Candles); emaLine != nil {
		emaLine.SetXAxis(xAxis)
		kline.Overlap(emaLine)
	}
	return kline
}

// buildEMALine returns nil when the window is too short to seed the slow EMA.
func buildEMALine(candles []market.Candle) *charts.Line {
	if len(candles) < emaSlowPeriod {
		return nil
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	fast := trimLeadingZeros(talib.Ema(closes, emaFastPeriod))
	slow := trimLeadingZeros(talib.Ema(closes, emaSlowPeriod))

	line := charts.NewLine()
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	line.AddSeries(fmt.Sprintf("EMA%d", emaFastPeriod), toLineData(fast, len(candles)), charts.WithLineStyleOpts(opts.LineStyle{Color: colorEmaFast, Width: 2}))
	line.AddSeries(fmt.Sprintf("EMA%d", emaSlowPeriod), toLineData(slow, len(candles)), charts.WithLineStyleOpts(opts.LineStyle{Color: colorEmaSlow, Width: 2}))
	return line
}

func buildVolumeChart(timeframe string, xAxis []string, candles []market.Candle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", volumeHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Volume %s", timeframe), Left: "left", TitleStyle: &opts.TextStyle{Color: colorTextPrimary}}),
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
	vols := make([]opts.BarData, len(candles))
	for i, c := range candles {
		color := colorBear
		if c.Bullish() {
			color = colorBull
		}
		vols[i] = opts.BarData{
			Value: c.Volume,
			ItemStyle: &opts.ItemStyle{
				Color:   color,
				Opacity: opts.Float(0.6),
			},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Volume", vols)
	return bar
}

func buildXAxis(candles []market.Candle) []string {
	x := make([]string, len(candles))
	for i, c := range candles {
		ts, err := time.Parse(time.RFC3339, c.Timestamp)
		if err != nil {
			x[i] = c.Timestamp
			continue
		}
		x[i] = ts.UTC().Format("01-02 15:04")
	}
	return x
}

// labelSummary condenses the classification column into "label=count" pairs.
func labelSummary(candles []market.Candle) string {
	counts := map[string]int{}
	for _, c := range candles {
		if c.CandleType == "" {
			continue
		}
		counts[c.CandleType]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s=%d", label, counts[label]))
	}
	return strings.Join(parts, " | ")
}

// trimLeadingZeros drops TALib's zero-seeded warmup values so the plot starts
// once enough candles exist.
func trimLeadingZeros(series []float64) []float64 {
	start := 0
	for start < len(series) && math.Abs(series[start]) <= 1e-9 {
		start++
	}
	return series[start:]
}

func toLineData(series []float64, length int) []opts.LineData {
	line := make([]opts.LineData, length)
	offset := length - len(series)
	if offset < 0 {
		offset = 0
	}
	for i := 0; i < offset; i++ {
		line[i] = opts.LineData{Value: nil}
	}
	for i := 0; i < len(series) && offset+i < length; i++ {
		val := series[i]
		if math.IsNaN(val) {
			line[offset+i] = opts.LineData{Value: nil}
		} else {
			line[offset+i] = opts.LineData{Value: round(val, 4)}
		}
	}
	return line
}

func priceBounds(candles []market.Candle) (float64, float64) {
	minPrice := math.Inf(1)
	maxPrice := math.Inf(-1)
	for _, c := range candles {
		minPrice = math.Min(minPrice, c.Low)
		maxPrice = math.Max(maxPrice, c.High)
	}
	return minPrice, maxPrice
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
