package market

import (
	"strings"
	"time"
)

// RawBar is one provider-native row before normalization: the provider's
// field mapping plus whatever it used as a time index. Time carries a real
// instant when the provider supplied one; Label carries the raw string index
// otherwise and is parsed during normalization.
type RawBar struct {
	Time   time.Time
	Label  string
	Fields map[string]any
}

// Providers disagree on column names. The scraper sees single-letter legend
// keys, websocket feeds send lowercase words, and some REST payloads
// abbreviate volume. Lookup walks the alias set case-insensitively.
var fieldAliases = map[string][]string{
	"open":   {"open", "o"},
	"high":   {"high", "h"},
	"low":    {"low", "l"},
	"close":  {"close", "c"},
	"volume": {"volume", "vol", "v"},
}

// Field resolves a canonical column name against the bar's native keys.
func (b RawBar) Field(name string) (any, bool) {
	aliases, ok := fieldAliases[name]
	if !ok {
		aliases = []string{name}
	}
	for _, alias := range aliases {
		if v, ok := b.Fields[alias]; ok {
			return v, true
		}
	}
	for _, alias := range aliases {
		for k, v := range b.Fields {
			if strings.EqualFold(k, alias) {
				return v, true
			}
		}
	}
	return nil, false
}
