package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chartfeed/internal/logger"
	"chartfeed/internal/market"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	maxBodySize = 8 << 20
)

// Source fetches history from the public chart API.
type Source struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	return &Source{
		cfg:    final,
		client: &http.Client{Timeout: final.HTTPTimeout},
	}, nil
}

func (s *Source) Kind() market.ProviderKind {
	return market.ProviderYahoo
}

func (s *Source) Traits() market.Traits {
	// Proxy instruments quote at sub-cent precision.
	return market.Traits{RoundPrices: true}
}

// Timeframes lists the chart API interval tokens. 2m is native here.
func Timeframes() market.TimeframeSet {
	return market.NewTimeframeSet("2m", map[string]string{
		"1m":  "1m",
		"2m":  "2m",
		"5m":  "5m",
		"15m": "15m",
		"30m": "30m",
		"1h":  "60m",
		"1d":  "1d",
		"1w":  "1wk",
	})
}

// Ranges is the lookback ladder the chart API accepts, finest first.
func Ranges() market.RangeLadder {
	return market.RangeLadder{
		{Days: 1, Token: "1d"},
		{Days: 5, Token: "5d"},
		{Days: 30, Token: "1mo"},
		{Days: 90, Token: "3mo"},
		{Days: 180, Token: "6mo"},
		{Days: 365, Token: "1y"},
		{Days: 730, Token: "2y"},
		{Token: "max"},
	}
}

// The chart payload carries parallel arrays under one quote block, with
// null entries for halted or missing ticks.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Timezone string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *Source) FetchBars(ctx context.Context, q market.Query) ([]market.RawBar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", s.cfg.BaseURL, url.PathEscape(q.Symbol))
	params := url.Values{}
	params.Set("interval", q.Interval)
	params.Set("range", q.Range)
	params.Set("includePrePost", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, market.Errf(market.ProviderYahoo, "request", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, market.Errf(market.ProviderYahoo, "fetch", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, market.Errf(market.ProviderYahoo, "read", err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, market.Errf(market.ProviderYahoo, "fetch",
				fmt.Errorf("status %d", resp.StatusCode))
		}
		return nil, market.Errf(market.ProviderYahoo, "decode", err)
	}
	// Bad symbols come back as an error body, usually with a 4xx status.
	if chart.Chart.Error != nil {
		return nil, market.Errf(market.ProviderYahoo, "chart",
			fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, market.Errf(market.ProviderYahoo, "fetch",
			fmt.Errorf("status %d", resp.StatusCode))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]market.RawBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		fields := make(map[string]any, 5)
		if v := floatAt(quote.Open, i); v != nil {
			fields["open"] = *v
		}
		if v := floatAt(quote.High, i); v != nil {
			fields["high"] = *v
		}
		if v := floatAt(quote.Low, i); v != nil {
			fields["low"] = *v
		}
		if v := floatAt(quote.Close, i); v != nil {
			fields["close"] = *v
		}
		if v := intAt(quote.Volume, i); v != nil {
			fields["volume"] = *v
		}
		bars = append(bars, market.RawBar{Time: time.Unix(ts, 0).UTC(), Fields: fields})
	}
	logger.Debugf("[yahoo] chart %s interval=%s range=%s rows=%d",
		q.Symbol, q.Interval, q.Range, len(bars))
	return bars, nil
}

func floatAt(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func intAt(vals []*int64, i int) *int64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}
