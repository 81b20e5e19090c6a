// Package symbol resolves vendor-neutral instrument identifiers into
// provider-native tickers.
package symbol

import "strings"

// Resolved is a provider-addressable instrument.
type Resolved struct {
	// Symbol is the provider-native ticker.
	Symbol string
	// Exchange is the venue prefix, for providers that address symbols as
	// exchange:ticker pairs.
	Exchange string
	// Continuous marks a front-month futures continuation series.
	Continuous bool
}

// Resolver maps a raw instrument identifier onto one provider's vocabulary.
// Resolution is total: any non-empty input yields a non-empty ticker. A
// fetch failure downstream is the authoritative signal for a bad symbol,
// not the resolver.
type Resolver interface {
	Resolve(raw string) Resolved
}

var venuePrefixes = map[string]bool{
	"B3":         true,
	"BMFBOVESPA": true,
	"BOVESPA":    true,
	"NASDAQ":     true,
	"NYSE":       true,
	"TVC":        true,
}

// Clean strips venue decorations and uppercases. Colon prefixes are always
// venue names; dash prefixes only when they name a known venue, since some
// tickers carry dashes of their own.
func Clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.Index(s, "-"); idx > 0 && venuePrefixes[s[:idx]] {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}
