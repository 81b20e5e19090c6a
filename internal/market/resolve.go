package market

import (
	"time"

	"chartfeed/internal/pkg/symbol"
)

// AddressMode states how a provider wants its history window addressed.
type AddressMode int

const (
	// AddressByCount providers take symbol, exchange, interval and a bar
	// count.
	AddressByCount AddressMode = iota
	// AddressByRange providers take a (range, interval) lookback pair.
	AddressByRange
	// AddressByPage providers render a chart page and read what is
	// visible on it.
	AddressByPage
)

// Profile bundles what the resolution layer needs to translate one incoming
// request into provider-addressed fetch attempts.
type Profile struct {
	Mode       AddressMode
	Timeframes TimeframeSet
	// Session is the trading-session length used to turn day lookbacks
	// into bar counts.
	Session time.Duration
	// Ranges is the lookback ladder for range-addressed providers.
	Ranges RangeLadder
	// RetryFloor is the coarsest-floor range token for the daily-bar
	// retry of range-addressed providers.
	RetryFloor string
}

// Backend bundles one provider's fetcher with the resolution data the
// pipeline needs to address it.
type Backend struct {
	Source  Source
	Profile Profile
	Symbols symbol.Resolver
}

// Lookup is one symbol-resolved history request awaiting window translation.
type Lookup struct {
	Symbol     string
	Exchange   string
	Continuous bool
	Timeframe  string
	Days       int
	PageURL    string
}

// BuildAttempts translates a lookup into the ordered fetch attempts the
// pipeline walks until one yields data. Count and page addressed providers
// get a single attempt. Range addressed providers get a second, coarser
// daily-bar attempt for when the intraday window comes back empty, since
// intraday history there only reaches back a few weeks.
func (p Profile) BuildAttempts(lk Lookup, traits Traits) []Query {
	iv, token := p.Timeframes.Resolve(lk.Timeframe)
	base := Query{
		Symbol:     lk.Symbol,
		Exchange:   lk.Exchange,
		Interval:   token,
		PageURL:    lk.PageURL,
		Continuous: lk.Continuous,
	}
	switch p.Mode {
	case AddressByRange:
		base.Range = p.Ranges.ForDays(lk.Days)
		retry := base
		retry.Range = p.Ranges.Coarser(base.Range, p.RetryFloor)
		_, retry.Interval = p.Timeframes.Resolve("1d")
		if retry.Range == base.Range && retry.Interval == base.Interval {
			return []Query{base}
		}
		return []Query{base, retry}
	case AddressByPage:
		return []Query{base}
	default:
		base.Bars = BarBudget(lk.Days, BarsPerSession(p.Session, iv), traits.MaxBars)
		return []Query{base}
	}
}
