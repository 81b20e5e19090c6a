package config

import "strings"

const (
	defaultLogLevel     = "info"
	defaultHTTPAddr     = ":8000"
	defaultProvider     = "tradingview"
	defaultExchange     = "BMFBOVESPA"
	defaultSessionHours = 9
	defaultPolicy       = "directional"
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.HTTP.applyDefaults()
	c.Provider.applyDefaults()
	c.Market.applyDefaults()
	c.Classify.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if strings.TrimSpace(a.LogLevel) == "" {
		a.LogLevel = defaultLogLevel
	}
}

func (h *HTTPConfig) applyDefaults() {
	if strings.TrimSpace(h.Addr) == "" {
		h.Addr = defaultHTTPAddr
	}
	if len(h.CORSOrigins) == 0 {
		h.CORSOrigins = []string{"*"}
	}
}

func (p *ProviderConfig) applyDefaults() {
	if strings.TrimSpace(p.Active) == "" {
		p.Active = defaultProvider
	}
}

func (m *MarketConfig) applyDefaults() {
	if strings.TrimSpace(m.Exchange) == "" {
		m.Exchange = defaultExchange
	}
	if m.SessionHours <= 0 {
		m.SessionHours = defaultSessionHours
	}
}

func (cl *ClassifyConfig) applyDefaults() {
	if strings.TrimSpace(cl.Active) == "" {
		cl.Active = defaultPolicy
	}
}
