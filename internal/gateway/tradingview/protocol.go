package tradingview

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"chartfeed/internal/market"
)

// The chart websocket speaks length-framed payloads: ~m~<len>~m~<payload>,
// several per message, with ~h~<n> heartbeats that must be echoed verbatim.

const framePrefix = "~m~"

type methodCall struct {
	M string `json:"m"`
	P []any  `json:"p"`
}

// encodeFrame wraps one payload in the length framing.
func encodeFrame(payload string) string {
	return fmt.Sprintf("~m~%d~m~%s", len(payload), payload)
}

// methodFrame serializes one method call, framed for the wire.
func methodFrame(method string, params []any) (string, error) {
	raw, err := json.Marshal(methodCall{M: method, P: params})
	if err != nil {
		return "", err
	}
	return encodeFrame(string(raw)), nil
}

// splitFrames unpacks a websocket message holding one or more framed
// payloads. Truncated trailing frames are dropped.
func splitFrames(msg string) []string {
	var out []string
	for len(msg) > 0 {
		if !strings.HasPrefix(msg, framePrefix) {
			out = append(out, msg)
			break
		}
		rest := msg[len(framePrefix):]
		end := strings.Index(rest, framePrefix)
		if end < 0 {
			break
		}
		size, err := strconv.Atoi(rest[:end])
		if err != nil || size < 0 {
			break
		}
		body := rest[end+len(framePrefix):]
		if len(body) < size {
			break
		}
		out = append(out, body[:size])
		msg = body[size:]
	}
	return out
}

func isHeartbeat(payload string) bool {
	return strings.HasPrefix(payload, "~h~")
}

const sessionChars = "abcdefghijklmnopqrstuvwxyz"

// chartSession builds a fresh chart session token.
func chartSession() string {
	b := make([]byte, 12)
	for i := range b {
		b[i] = sessionChars[rand.Intn(len(sessionChars))]
	}
	return "cs_" + string(b)
}

// symbolSpec builds the resolve_symbol payload. The leading "=" asks for
// the split-adjusted regular-session series.
func symbolSpec(full string) string {
	raw, _ := json.Marshal(map[string]string{
		"adjustment": "splits",
		"session":    "regular",
		"symbol":     full,
	})
	return "=" + string(raw)
}

// parseTimescale extracts series rows from a timescale_update payload. Each
// row carries {"i": index, "v": [time, open, high, low, close, volume?]};
// instruments without published volume send five values.
func parseTimescale(payload, series string) []market.RawBar {
	rows := gjson.Get(payload, "p.1."+series+".s")
	if !rows.Exists() {
		return nil
	}
	var bars []market.RawBar
	rows.ForEach(func(_, row gjson.Result) bool {
		v := row.Get("v").Array()
		if len(v) < 5 {
			return true
		}
		fields := map[string]any{
			"open":  v[1].Float(),
			"high":  v[2].Float(),
			"low":   v[3].Float(),
			"close": v[4].Float(),
		}
		if len(v) > 5 {
			fields["volume"] = v[5].Float()
		}
		bars = append(bars, market.RawBar{
			Time:   time.Unix(int64(v[0].Float()), 0).UTC(),
			Fields: fields,
		})
		return true
	})
	return bars
}
