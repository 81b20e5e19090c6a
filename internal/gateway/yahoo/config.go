package yahoo

import (
	"strings"
	"time"
)

type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration

	// UserAgent must look like a browser; the chart API rejects default
	// Go client strings.
	UserAgent string
}

func (c *Config) withDefaults() Config {
	out := *c
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = defaultBaseURL
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	out.UserAgent = strings.TrimSpace(out.UserAgent)
	if out.UserAgent == "" {
		out.UserAgent = defaultUserAgent
	}
	return out
}
