package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastN(t *testing.T) {
	candles := []Candle{
		{Timestamp: "2024-05-01T12:00:00Z"},
		{Timestamp: "2024-05-01T12:02:00Z"},
		{Timestamp: "2024-05-01T12:04:00Z"},
	}

	t.Run("window smaller than series keeps the tail", func(t *testing.T) {
		got := LastN(candles, 2)
		assert.Len(t, got, 2)
		assert.Equal(t, "2024-05-01T12:02:00Z", got[0].Timestamp)
		assert.Equal(t, "2024-05-01T12:04:00Z", got[1].Timestamp)
	})

	t.Run("window larger than series returns everything", func(t *testing.T) {
		assert.Len(t, LastN(candles, 10), 3)
	})

	t.Run("window equal to series returns everything", func(t *testing.T) {
		assert.Len(t, LastN(candles, 3), 3)
	})

	t.Run("non-positive window returns empty", func(t *testing.T) {
		assert.Empty(t, LastN(candles, 0))
		assert.Empty(t, LastN(candles, -1))
	})
}

func TestCandleShape(t *testing.T) {
	bull := Candle{Open: 10, High: 15, Low: 9, Close: 14}
	assert.True(t, bull.Bullish())
	assert.InDelta(t, 6.0, bull.Range(), 1e-9)
	assert.InDelta(t, 4.0, bull.Body(), 1e-9)

	bear := Candle{Open: 14, High: 15, Low: 9, Close: 10}
	assert.False(t, bear.Bullish())
	assert.InDelta(t, 4.0, bear.Body(), 1e-9)
}
