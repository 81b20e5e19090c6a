package tradingview

import (
	"strings"
	"time"
)

type Config struct {
	WSURL  string
	Origin string

	// AuthToken is the session token sent on connect. The public token
	// serves delayed data without an account.
	AuthToken string

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration

	MaxBars int
}

func (c *Config) withDefaults() Config {
	out := *c
	out.WSURL = strings.TrimSpace(out.WSURL)
	if out.WSURL == "" {
		out.WSURL = defaultWSURL
	}
	out.Origin = strings.TrimSpace(out.Origin)
	if out.Origin == "" {
		out.Origin = defaultOrigin
	}
	out.AuthToken = strings.TrimSpace(out.AuthToken)
	if out.AuthToken == "" {
		out.AuthToken = defaultAuthToken
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = 10 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 30 * time.Second
	}
	if out.MaxBars <= 0 {
		out.MaxBars = defaultMaxBars
	}
	return out
}
