package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuote(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"129,450.25", 129450.25, true},
		{"129.450,25", 129450.25, true},
		{"129.450", 129450, true},
		{"1,500", 1500, true},
		{"1.500.250", 1500250, true},
		{"5.432", 5.432, true},
		{"5,4321", 5.4321, true},
		{"1.5", 1.5, true},
		{"1500", 1500, true},
		{"129,450.00,", 129450, true},
		{"", 0, false},
		{"O", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseQuote(tc.in)
		require.Equal(t, tc.ok, ok, "parseQuote(%q)", tc.in)
		if ok {
			assert.InDelta(t, tc.want, got, 1e-9, "parseQuote(%q)", tc.in)
		}
	}
}

func TestParseVolume(t *testing.T) {
	cases := []struct {
		num, suffix string
		want        float64
	}{
		{"1.5", "M", 1.5e6},
		{"820", "K", 820e3},
		{"2.1", "B", 2.1e9},
		{"950", "", 950},
	}
	for _, tc := range cases {
		got, ok := parseVolume(tc.num, tc.suffix)
		require.True(t, ok)
		assert.InDelta(t, tc.want, got, 1e-3)
	}
}

func TestExtract(t *testing.T) {
	asOf := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("english legend", func(t *testing.T) {
		text := "WIN1! · 2 · BMFBOVESPA\nO129,450.00 H129,600.00 L129,300.00 C129,580.00 +130.00\nVol 1.5M"
		bars := Extract(text, asOf)
		require.Len(t, bars, 1)
		assert.Equal(t, asOf, bars[0].Time)

		open, ok := bars[0].Field("open")
		require.True(t, ok)
		assert.Equal(t, 129450.0, open)
		c, _ := bars[0].Field("close")
		assert.Equal(t, 129580.0, c)
		vol, ok := bars[0].Field("volume")
		require.True(t, ok)
		assert.Equal(t, 1.5e6, vol)
	})

	t.Run("brazilian legend", func(t *testing.T) {
		text := "A129.450,00 O129.450,00H129.600,00L129.300,00C129.580,00"
		bars := Extract(text, asOf)
		require.Len(t, bars, 1)
		h, _ := bars[0].Field("high")
		assert.Equal(t, 129600.0, h)
		_, ok := bars[0].Field("volume")
		assert.False(t, ok)
	})

	t.Run("page without a legend", func(t *testing.T) {
		assert.Empty(t, Extract("Loading chart...\nSign in to continue", asOf))
	})

	t.Run("legend letters inside words do not match", func(t *testing.T) {
		assert.Empty(t, Extract("HELLO123 WORLD456", asOf))
	})
}
