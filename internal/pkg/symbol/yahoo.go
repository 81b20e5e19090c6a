package symbol

import "strings"

// YahooResolver maps raw identifiers onto Yahoo Finance tickers. Yahoo has
// no B3 futures coverage, so futures roots degrade to correlated proxy
// instruments, and bare local equities get the exchange suffix.
type YahooResolver struct {
	// Suffix is appended to bare equity tickers, ".SA" for B3.
	Suffix string
}

// proxyTickers maps futures roots onto correlated Yahoo instruments.
var proxyTickers = map[string]string{
	"WIN": "^BVSP",
	"IND": "^BVSP",
	"WDO": "BRL=X",
	"DOL": "BRL=X",
}

func (r YahooResolver) Resolve(raw string) Resolved {
	s := Clean(raw)
	for root, proxy := range proxyTickers {
		if strings.HasPrefix(s, root) {
			return Resolved{Symbol: proxy}
		}
	}
	if s != "" && r.Suffix != "" && !strings.ContainsAny(s, ".^=") {
		return Resolved{Symbol: s + r.Suffix}
	}
	return Resolved{Symbol: s}
}

var Yahoo = YahooResolver{Suffix: ".SA"}
