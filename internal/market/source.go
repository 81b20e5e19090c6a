package market

import (
	"context"
	"fmt"
)

// ProviderKind names one of the supported upstream data providers.
type ProviderKind string

const (
	ProviderTradingView ProviderKind = "tradingview"
	ProviderYahoo       ProviderKind = "yahoo"
	ProviderScrape      ProviderKind = "scrape"
)

// Query is one fully resolved fetch attempt against a provider. Symbol and
// Interval are already translated into the provider's own vocabulary, so
// implementations can pass them through verbatim.
type Query struct {
	// Symbol is the provider-native ticker, e.g. "WIN1!" or "^BVSP".
	Symbol string
	// Exchange is the venue prefix for providers that address symbols as
	// exchange:ticker pairs.
	Exchange string
	// Interval is the provider wire token for the bar interval.
	Interval string
	// Range is the lookback token for period-addressed providers.
	Range string
	// Bars is the bar-count budget for count-addressed providers.
	Bars int
	// PageURL overrides the chart page for the browser provider.
	PageURL string
	// Continuous selects the front-month continuation series for futures.
	Continuous bool
}

// Traits describe provider limits the resolution layer needs.
type Traits struct {
	// MaxBars caps how many bars one fetch may request. Zero means no cap.
	MaxBars int
	// RoundPrices is set for providers that quote at sub-cent precision;
	// normalization then rounds prices to two decimals.
	RoundPrices bool
}

// Source is the one capability the pipeline needs from an upstream
// provider. FetchBars returns an empty slice with a nil error when the
// requested window holds no data; that outcome is not a failure. A non-nil
// error always means a hard failure such as a network or protocol fault.
type Source interface {
	Kind() ProviderKind
	Traits() Traits
	FetchBars(ctx context.Context, q Query) ([]RawBar, error)
}

// ProviderError marks a hard upstream failure, as opposed to a fetch that
// succeeded but found nothing.
type ProviderError struct {
	Provider ProviderKind
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Errf builds a ProviderError with a formatted message wrapping err.
func Errf(provider ProviderKind, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}
