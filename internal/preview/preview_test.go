package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartfeed/internal/market"
)

func sampleCandles() []market.Candle {
	return []market.Candle{
		{Timestamp: "2024-05-01T12:00:00Z", Open: 100, High: 110, Low: 99, Close: 109, Volume: 1500, CandleType: "bull-strong"},
		{Timestamp: "2024-05-01T12:02:00Z", Open: 109, High: 111, Low: 104, Close: 105, Volume: 900, CandleType: "bear-weak"},
		{Timestamp: "2024-05-01T12:04:00Z", Open: 105, High: 106, Low: 104, Close: 105.2, Volume: 400, CandleType: "exhaustion"},
	}
}

func longWindow(n int) []market.Candle {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	candles := make([]market.Candle, n)
	for i := range candles {
		open := 100 + float64(i)
		candles[i] = market.Candle{
			Timestamp:  base.Add(time.Duration(i) * 2 * time.Minute).Format(time.RFC3339),
			Open:       open,
			High:       open + 1.5,
			Low:        open - 0.5,
			Close:      open + 1,
			Volume:     1000 + float64(i),
			CandleType: "bull-weak",
		}
	}
	return candles
}

func TestRender(t *testing.T) {
	html, err := Render(Input{Symbol: "win1!", Timeframe: "2m", Candles: sampleCandles()})
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "echarts")
	assert.Contains(t, page, "WIN1! 2m")
	assert.Contains(t, page, "Volume 2m")
	// Classification counts surface in the subtitle.
	assert.Contains(t, page, "bear-weak=1 | bull-strong=1 | exhaustion=1")
	// Axis labels come from the candle timestamps.
	assert.Contains(t, page, "05-01 12:04")
	// Three candles cannot seed the slow EMA, so no overlay is drawn.
	assert.NotContains(t, page, "EMA9")
}

func TestRenderEMAOverlay(t *testing.T) {
	html, err := Render(Input{Symbol: "PETR4", Timeframe: "5m", Candles: longWindow(40)})
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "EMA9")
	assert.Contains(t, page, "EMA21")
}

func TestBuildEMALineShortWindow(t *testing.T) {
	assert.Nil(t, buildEMALine(longWindow(emaSlowPeriod-1)))
	assert.NotNil(t, buildEMALine(longWindow(emaSlowPeriod)))
}

func TestTrimLeadingZeros(t *testing.T) {
	trimmed := trimLeadingZeros([]float64{0, 0, 0, 101.5, 102.25})
	assert.Equal(t, []float64{101.5, 102.25}, trimmed)

	assert.Empty(t, trimLeadingZeros([]float64{0, 0}))
	assert.Equal(t, []float64{5}, trimLeadingZeros([]float64{5}))
}

func TestToLineDataPadsWarmup(t *testing.T) {
	data := toLineData([]float64{10.12341, 11}, 4)
	require.Len(t, data, 4)
	assert.Nil(t, data[0].Value)
	assert.Nil(t, data[1].Value)
	assert.Equal(t, 10.1234, data[2].Value)
	assert.Equal(t, float64(11), data[3].Value)
}

func TestRenderRejectsEmptyInput(t *testing.T) {
	_, err := Render(Input{Timeframe: "2m", Candles: sampleCandles()})
	require.Error(t, err)

	_, err = Render(Input{Symbol: "WIN1!", Timeframe: "2m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candles")
}
