package tradingview

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"chartfeed/internal/logger"
	"chartfeed/internal/market"
)

const (
	defaultWSURL     = "wss://data.tradingview.com/socket.io/websocket"
	defaultOrigin    = "https://data.tradingview.com"
	defaultAuthToken = "unauthorized_user_token"
	defaultMaxBars   = 5000

	seriesID = "sds_1"
	symbolID = "sds_sym_1"
)

// Source fetches history over the chart websocket: one connection per
// request, one series, closed when the series completes.
type Source struct {
	cfg Config
}

func New(cfg Config) (*Source, error) {
	return &Source{cfg: cfg.withDefaults()}, nil
}

func (s *Source) Kind() market.ProviderKind {
	return market.ProviderTradingView
}

func (s *Source) Traits() market.Traits {
	return market.Traits{MaxBars: s.cfg.MaxBars}
}

// Timeframes lists the chart intervals the websocket accepts. There is no
// 2m interval; those requests snap down to 1m.
func Timeframes() market.TimeframeSet {
	return market.NewTimeframeSet("1m", map[string]string{
		"1m":  "1",
		"3m":  "3",
		"5m":  "5",
		"15m": "15",
		"30m": "30",
		"45m": "45",
		"1h":  "60",
		"2h":  "120",
		"3h":  "180",
		"4h":  "240",
		"1d":  "1D",
		"1w":  "1W",
	})
}

func (s *Source) FetchBars(ctx context.Context, q market.Query) ([]market.RawBar, error) {
	full := q.Symbol
	if q.Exchange != "" {
		full = q.Exchange + ":" + q.Symbol
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.cfg.HandshakeTimeout}
	header := http.Header{"Origin": []string{s.cfg.Origin}}
	conn, _, err := dialer.DialContext(ctx, s.cfg.WSURL, header)
	if err != nil {
		return nil, market.Errf(market.ProviderTradingView, "dial", err)
	}
	defer conn.Close()

	// Unblock the read loop when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	chart := chartSession()
	steps := []methodCall{
		{M: "set_auth_token", P: []any{s.cfg.AuthToken}},
		{M: "chart_create_session", P: []any{chart, ""}},
		{M: "switch_timezone", P: []any{chart, "Etc/UTC"}},
		{M: "resolve_symbol", P: []any{chart, symbolID, symbolSpec(full)}},
		{M: "create_series", P: []any{chart, seriesID, seriesID, symbolID, q.Interval, q.Bars}},
	}
	for _, step := range steps {
		frame, err := methodFrame(step.M, step.P)
		if err != nil {
			return nil, market.Errf(market.ProviderTradingView, "encode", err)
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return nil, market.Errf(market.ProviderTradingView, "send", err)
		}
	}
	logger.Debugf("[tradingview] series requested %s interval=%s bars=%d", full, q.Interval, q.Bars)

	deadline := time.Now().Add(s.cfg.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	var bars []market.RawBar
	for {
		if err := ctx.Err(); err != nil {
			return nil, market.Errf(market.ProviderTradingView, "read", err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, market.Errf(market.ProviderTradingView, "read", err)
		}
		for _, frame := range splitFrames(string(data)) {
			if isHeartbeat(frame) {
				echo := encodeFrame(frame)
				if err := conn.WriteMessage(websocket.TextMessage, []byte(echo)); err != nil {
					return nil, market.Errf(market.ProviderTradingView, "heartbeat", err)
				}
				continue
			}
			switch gjson.Get(frame, "m").String() {
			case "timescale_update":
				bars = append(bars, parseTimescale(frame, seriesID)...)
			case "series_completed":
				logger.Debugf("[tradingview] series completed %s rows=%d", full, len(bars))
				return bars, nil
			case "symbol_error":
				return nil, market.Errf(market.ProviderTradingView, "resolve",
					fmt.Errorf("unsupported symbol %s", full))
			case "series_error", "critical_error", "protocol_error":
				return nil, market.Errf(market.ProviderTradingView, "series",
					fmt.Errorf("upstream rejected request: %s", truncate(frame, 160)))
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
