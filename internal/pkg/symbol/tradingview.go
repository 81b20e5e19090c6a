package symbol

import "strings"

// TradingViewResolver maps raw identifiers onto TradingView tickers. B3
// futures roots collapse onto their front-month continuation ticker, so a
// dated contract like WINZ25 fetches the continuous series.
type TradingViewResolver struct {
	// DefaultExchange is the venue used when the raw symbol names none.
	DefaultExchange string
}

// continuationRoots maps futures root codes onto continuous tickers.
var continuationRoots = map[string]string{
	"WIN": "WIN1!",
	"WDO": "WDO1!",
	"IND": "IND1!",
	"DOL": "DOL1!",
}

func (r TradingViewResolver) Resolve(raw string) Resolved {
	exchange := r.DefaultExchange
	s := strings.ToUpper(strings.TrimSpace(raw))
	if idx := strings.Index(s, ":"); idx >= 0 {
		if venue := strings.TrimSpace(s[:idx]); venue != "" {
			exchange = venue
		}
	}
	s = Clean(s)
	for root, ticker := range continuationRoots {
		if strings.HasPrefix(s, root) {
			return Resolved{Symbol: ticker, Exchange: exchange, Continuous: true}
		}
	}
	return Resolved{Symbol: s, Exchange: exchange}
}

var TradingView = TradingViewResolver{DefaultExchange: "BMFBOVESPA"}
