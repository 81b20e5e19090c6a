package config

import "time"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Provider ProviderConfig `mapstructure:"provider"`
	Market   MarketConfig   `mapstructure:"market"`
	Classify ClassifyConfig `mapstructure:"classify"`
	Store    StoreConfig    `mapstructure:"store"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	// LogPath mirrors logs to a file next to stdout when set.
	LogPath string `mapstructure:"log_path"`
}

type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type ProviderConfig struct {
	// Active names the provider requests are served from: tradingview,
	// yahoo or scrape.
	Active      string            `mapstructure:"active"`
	TradingView TradingViewConfig `mapstructure:"tradingview"`
	Yahoo       YahooConfig       `mapstructure:"yahoo"`
	Scrape      ScrapeConfig      `mapstructure:"scrape"`
}

type TradingViewConfig struct {
	WSURL            string        `mapstructure:"ws_url"`
	AuthToken        string        `mapstructure:"auth_token"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	MaxBars          int           `mapstructure:"max_bars"`
}

type YahooConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

type ScrapeConfig struct {
	ChartURL    string        `mapstructure:"chart_url"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`
}

type MarketConfig struct {
	// Exchange is the default venue for symbols that name none.
	Exchange string `mapstructure:"exchange"`
	// SessionHours is the trading-session length used to turn day
	// lookbacks into bar counts.
	SessionHours int `mapstructure:"session_hours"`
}

// SessionLength returns the session as a duration.
func (m MarketConfig) SessionLength() time.Duration {
	return time.Duration(m.SessionHours) * time.Hour
}

type ClassifyConfig struct {
	// PolicyFile points at a policies YAML; empty serves the built-ins.
	PolicyFile string `mapstructure:"policy_file"`
	Active     string `mapstructure:"active"`
}

type StoreConfig struct {
	// FetchLogPath enables the sqlite fetch audit when set.
	FetchLogPath string `mapstructure:"fetch_log_path"`
	// FetchLogRetentionDays prunes audit rows older than this many days,
	// once a day. Zero keeps everything.
	FetchLogRetentionDays int `mapstructure:"fetch_log_retention_days"`
}
