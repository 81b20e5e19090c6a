// Package feed runs the candle pipeline from an instrument request to the
// response envelope: resolve the symbol, build the fetch attempts, walk them
// until one yields bars, then normalize, classify and window the result.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chartfeed/internal/classify"
	"chartfeed/internal/logger"
	"chartfeed/internal/market"
	"chartfeed/internal/store/fetchlog"
)

const (
	defaultTimeframe = "2m"
	defaultLimit     = 100
	defaultDays      = 7
)

// Request is one candle-history query.
type Request struct {
	Symbol string `json:"symbol" binding:"required"`
	// TradingViewURL overrides the chart page the scrape provider renders.
	TradingViewURL string         `json:"tradingview_url"`
	Timeframe      string         `json:"timeframe"`
	Limit          int            `json:"limit"`
	HistoricalDays int            `json:"historical_days"`
	Config         *RequestConfig `json:"config"`
}

// RequestConfig carries nested per-request overrides. A timeframe here wins
// over the top-level one.
type RequestConfig struct {
	Timeframe string `json:"timeframe"`
}

func (r Request) withDefaults() Request {
	if r.Config != nil && strings.TrimSpace(r.Config.Timeframe) != "" {
		r.Timeframe = r.Config.Timeframe
	}
	if strings.TrimSpace(r.Timeframe) == "" {
		r.Timeframe = defaultTimeframe
	}
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if r.HistoricalDays <= 0 {
		r.HistoricalDays = defaultDays
	}
	return r
}

// Response is the envelope every fetch resolves to, success or not.
// Candles is never nil.
type Response struct {
	Success   bool            `json:"success"`
	Symbol    string          `json:"symbol"`
	Candles   []market.Candle `json:"candles"`
	Message   string          `json:"message,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Source    string          `json:"source,omitempty"`
}

// ServiceConfig describes the pipeline dependencies.
type ServiceConfig struct {
	Backend  market.Backend
	Policies *classify.Registry
	// Audit records served fetches when set.
	Audit *fetchlog.Store
}

// Service owns one provider backend and serves fetches against it.
type Service struct {
	backend  market.Backend
	policies *classify.Registry
	audit    *fetchlog.Store
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Backend.Source == nil {
		return nil, fmt.Errorf("feed service requires a provider backend")
	}
	if cfg.Backend.Symbols == nil {
		return nil, fmt.Errorf("feed service requires a symbol resolver")
	}
	policies := cfg.Policies
	if policies == nil {
		var err error
		policies, err = classify.NewBuiltinRegistry("")
		if err != nil {
			return nil, err
		}
	}
	return &Service{backend: cfg.Backend, policies: policies, audit: cfg.Audit}, nil
}

// Provider returns the active provider token, for liveness payloads.
func (s *Service) Provider() string {
	return string(s.backend.Source.Kind())
}

// PolicyName returns the active classification policy name.
func (s *Service) PolicyName() string {
	return s.policies.Active().Name
}

// Fetch serves one request. Every failure path resolves to a structured
// response; nothing propagates as a fault past this boundary.
func (s *Service) Fetch(ctx context.Context, req Request) (resp Response) {
	req = req.withDefaults()
	trace := uuid.NewString()
	var attempt market.Query
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[feed] %s panic serving %s: %v", trace, req.Symbol, r)
			resp = s.failure(req.Symbol, fmt.Sprintf("Error: %v", r))
		}
		s.record(ctx, trace, req, attempt, resp)
	}()

	resolved := s.backend.Symbols.Resolve(req.Symbol)
	lookup := market.Lookup{
		Symbol:     resolved.Symbol,
		Exchange:   resolved.Exchange,
		Continuous: resolved.Continuous,
		Timeframe:  req.Timeframe,
		Days:       req.HistoricalDays,
		PageURL:    req.TradingViewURL,
	}
	traits := s.backend.Source.Traits()
	attempts := s.backend.Profile.BuildAttempts(lookup, traits)

	var raw []market.RawBar
	for i, q := range attempts {
		attempt = q
		logger.Infof("[feed] %s fetching %s interval=%s bars=%d range=%s (attempt %d/%d)",
			trace, describe(q), q.Interval, q.Bars, q.Range, i+1, len(attempts))
		bars, err := s.backend.Source.FetchBars(ctx, q)
		if err != nil {
			logger.Errorf("[feed] %s fetch failed: %v", trace, err)
			return s.failure(req.Symbol, fmt.Sprintf("Error: %v", err))
		}
		if len(bars) > 0 {
			raw = bars
			break
		}
		logger.Warnf("[feed] %s empty window for %s (attempt %d/%d)", trace, describe(q), i+1, len(attempts))
	}

	candles := market.Normalize(raw, market.NormalizeOptions{RoundPrices: traits.RoundPrices})
	policy := s.policies.Active()
	for i := range candles {
		candles[i].CandleType = classify.Label(candles[i].Open, candles[i].High, candles[i].Low, candles[i].Close, policy)
	}
	candles = market.LastN(candles, req.Limit)

	if len(candles) == 0 {
		return s.failure(req.Symbol, "No data returned from "+s.providerLabel())
	}
	logger.Infof("[feed] %s extracted %d candles for %s", trace, len(candles), resolved.Symbol)
	return Response{
		Success:   true,
		Symbol:    req.Symbol,
		Candles:   candles,
		Message:   fmt.Sprintf("Extracted %d candles from %s", len(candles), s.providerLabel()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    s.Provider(),
	}
}

func (s *Service) failure(symbol, message string) Response {
	return Response{
		Success:   false,
		Symbol:    symbol,
		Candles:   []market.Candle{},
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    s.Provider(),
	}
}

func (s *Service) record(ctx context.Context, trace string, req Request, q market.Query, resp Response) {
	if s.audit == nil {
		return
	}
	params := map[string]any{
		"symbol":   q.Symbol,
		"exchange": q.Exchange,
		"interval": q.Interval,
	}
	if q.Bars > 0 {
		params["bars"] = q.Bars
	}
	if q.Range != "" {
		params["range"] = q.Range
	}
	err := s.audit.Record(ctx, fetchlog.Entry{
		TraceID:     trace,
		Symbol:      req.Symbol,
		Provider:    s.Provider(),
		Timeframe:   req.Timeframe,
		Success:     resp.Success,
		CandleCount: len(resp.Candles),
		Message:     resp.Message,
		Params:      params,
	})
	if err != nil {
		logger.Warnf("[feed] %s audit write failed: %v", trace, err)
	}
}

// providerLabel is the human-facing provider name used in messages.
func (s *Service) providerLabel() string {
	if s.backend.Source.Kind() == market.ProviderYahoo {
		return "Yahoo Finance"
	}
	return "TradingView"
}

func describe(q market.Query) string {
	if q.PageURL != "" {
		return q.PageURL
	}
	if q.Exchange == "" {
		return q.Symbol
	}
	return q.Exchange + ":" + q.Symbol
}
