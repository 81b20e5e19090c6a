package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"chartfeed/internal/market"
)

// Chart legends render as text like "O129,450.00 H129,600.00 L129,300.00
// C129,580.00" with an optional "Vol 1.5M" nearby. Brazilian locales flip
// the separators, so both "129.450,00" and "129,450.00" must read the same.
var (
	legendRe = regexp.MustCompile(`\bO\s*([\d.,]+)\s*H\s*([\d.,]+)\s*L\s*([\d.,]+)\s*C\s*([\d.,]+)`)
	volumeRe = regexp.MustCompile(`\bVol(?:ume)?\s*([\d.,]+)\s*([KMB]?)`)
)

// Extract reads the OHLC legends visible in rendered page text. A chart
// page shows at most the active bar per pane, and the page itself is the
// only time reference, so every bar is stamped asOf.
func Extract(text string, asOf time.Time) []market.RawBar {
	matches := legendRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	volumes := volumeRe.FindAllStringSubmatch(text, -1)

	bars := make([]market.RawBar, 0, len(matches))
	for i, m := range matches {
		fields := make(map[string]any, 5)
		usable := true
		for j, key := range []string{"open", "high", "low", "close"} {
			v, ok := parseQuote(m[j+1])
			if !ok {
				usable = false
				break
			}
			fields[key] = v
		}
		if !usable {
			continue
		}
		if i < len(volumes) {
			if v, ok := parseVolume(volumes[i][1], volumes[i][2]); ok {
				fields["volume"] = v
			}
		}
		bars = append(bars, market.RawBar{Time: asOf, Fields: fields})
	}
	return bars
}

// parseQuote reads a legend number in either decimal convention. A lone
// separator followed by exactly three digits reads as grouping, except a
// short dot prefix, which quotes FX rates like "5.432".
func parseQuote(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), ".,")
	if s == "" {
		return 0, false
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	sep, other := lastDot, lastComma
	if lastComma > lastDot {
		sep, other = lastComma, lastDot
	}
	if sep >= 0 {
		sepChar := s[sep]
		decimal := strings.Count(s, string(sepChar)) == 1 &&
			(len(s)-sep-1 != 3 || other >= 0 || (sepChar == '.' && sep == 1))
		if decimal {
			s = stripSeparators(s[:sep]) + "." + s[sep+1:]
		} else {
			s = stripSeparators(s)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseVolume(num, suffix string) (float64, bool) {
	f, ok := parseQuote(num)
	if !ok {
		return 0, false
	}
	switch strings.ToUpper(suffix) {
	case "K":
		f *= 1e3
	case "M":
		f *= 1e6
	case "B":
		f *= 1e9
	}
	return f, true
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}
