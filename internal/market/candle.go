package market

// Candle is the canonical bar served to consumers, regardless of which
// upstream provider produced it. Timestamp is RFC 3339 in UTC.
type Candle struct {
	Timestamp  string  `json:"timestamp"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     int64   `json:"volume"`
	CandleType string  `json:"candle_type"`
}

// Range returns the full high-low span of the candle.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Body returns the absolute open-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Bullish reports whether the candle closed above its open. A flat close
// counts as the bearish side.
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// LastN returns the trailing n candles in their original chronological
// order. The slice is returned as-is when it already fits; the result is
// empty when n <= 0.
func LastN(candles []Candle, n int) []Candle {
	if n <= 0 {
		return []Candle{}
	}
	if len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}
