package scrape

import (
	"strings"
	"time"
)

type Config struct {
	// ChartURL is the chart page requests navigate to when the caller
	// does not hand one in.
	ChartURL string

	// SettleDelay is how long the page gets to render after load before
	// the legend is read.
	SettleDelay time.Duration

	NavTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	out.ChartURL = strings.TrimSpace(out.ChartURL)
	if out.ChartURL == "" {
		out.ChartURL = defaultChartURL
	}
	if out.SettleDelay <= 0 {
		out.SettleDelay = defaultSettle
	}
	if out.NavTimeout <= 0 {
		out.NavTimeout = defaultNavTimeout
	}
	return out
}
