package market

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"chartfeed/internal/pkg/convert"
)

// NormalizeOptions tune bar cleanup per provider.
type NormalizeOptions struct {
	// RoundPrices rounds prices to two decimals, for providers that quote
	// at sub-cent precision.
	RoundPrices bool
	// Location resolves bare timestamps that carry no zone. Nil means UTC.
	Location *time.Location
}

// Normalize converts provider-native bars into canonical candles, sorted
// chronologically. A bar with no readable open or close, or no usable time
// index, is dropped. A missing high or low degrades to the body extreme so
// the bar stays usable, and missing or negative volume reads as zero.
// CandleType is left empty for the classification pass.
func Normalize(bars []RawBar, opts NormalizeOptions) []Candle {
	out := make([]Candle, 0, len(bars))
	for _, bar := range bars {
		c, ok := normalizeOne(bar, opts)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

func normalizeOne(bar RawBar, opts NormalizeOptions) (Candle, bool) {
	open, okOpen := barFloat(bar, "open")
	closePx, okClose := barFloat(bar, "close")
	if !okOpen || !okClose {
		return Candle{}, false
	}
	ts, ok := barTime(bar, opts.Location)
	if !ok {
		return Candle{}, false
	}
	high, okHigh := barFloat(bar, "high")
	if !okHigh {
		high = max(open, closePx)
	}
	low, okLow := barFloat(bar, "low")
	if !okLow {
		low = min(open, closePx)
	}
	var volume int64
	if v, ok := bar.Field("volume"); ok {
		if f, ok := convert.Float64(v); ok && f > 0 {
			volume = int64(f)
		}
	}
	c := Candle{
		Timestamp: ts.UTC().Format(time.RFC3339),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    volume,
	}
	if opts.RoundPrices {
		c.Open = round2(c.Open)
		c.High = round2(c.High)
		c.Low = round2(c.Low)
		c.Close = round2(c.Close)
	}
	return c, true
}

func barFloat(bar RawBar, name string) (float64, bool) {
	v, ok := bar.Field(name)
	if !ok {
		return 0, false
	}
	return convert.Float64(v)
}

func barTime(bar RawBar, loc *time.Location) (time.Time, bool) {
	if !bar.Time.IsZero() {
		return bar.Time, true
	}
	return ParseBarTime(bar.Label, loc)
}

// ParseBarTime reads the timestamp shapes seen across providers: unix
// seconds, RFC 3339, and the bare date or datetime layouts chart exports
// use. Bare layouts are read in loc, or UTC when loc is nil.
func ParseBarTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(f), 0).UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	layouts := []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func round2(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}
