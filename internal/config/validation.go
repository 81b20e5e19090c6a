package config

import (
	"fmt"
	"strings"
)

var validProviders = map[string]bool{
	"tradingview":   true,
	"tv":            true,
	"yahoo":         true,
	"yahoo-finance": true,
	"scrape":        true,
	"browser":       true,
}

func validate(c *Config) error {
	if err := c.HTTP.validate(); err != nil {
		return err
	}
	if err := c.Provider.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	return nil
}

func (h *HTTPConfig) validate() error {
	if !strings.Contains(h.Addr, ":") {
		return fmt.Errorf("http.addr must be host:port, got %q", h.Addr)
	}
	return nil
}

func (p *ProviderConfig) validate() error {
	if !validProviders[strings.ToLower(strings.TrimSpace(p.Active))] {
		return fmt.Errorf("provider.active must be one of tradingview, yahoo, scrape (got %q)", p.Active)
	}
	if p.TradingView.MaxBars < 0 {
		return fmt.Errorf("provider.tradingview.max_bars must be >= 0")
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if m.SessionHours < 1 || m.SessionHours > 24 {
		return fmt.Errorf("market.session_hours must be in 1..24, got %d", m.SessionHours)
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if s.FetchLogRetentionDays < 0 {
		return fmt.Errorf("store.fetch_log_retention_days must be >= 0, got %d", s.FetchLogRetentionDays)
	}
	return nil
}
