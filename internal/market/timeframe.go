package market

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Interval is a canonical candle interval: a normalized token like "2m" or
// "1d" plus its duration.
type Interval struct {
	Key      string
	Duration time.Duration
}

// ParseInterval parses tokens of the form <n><unit> where unit is one of
// m, h, d, w. Bare integers are read as minutes, matching chart-tool
// shorthand.
func ParseInterval(s string) (Interval, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Interval{}, false
	}
	unit := byte('m')
	digits := s
	if last := s[len(s)-1]; last < '0' || last > '9' {
		unit = last
		digits = s[:len(s)-1]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return Interval{}, false
	}
	var step time.Duration
	switch unit {
	case 'm':
		step = time.Minute
	case 'h':
		step = time.Hour
	case 'd':
		step = 24 * time.Hour
	case 'w':
		step = 7 * 24 * time.Hour
	default:
		return Interval{}, false
	}
	return Interval{
		Key:      fmt.Sprintf("%d%c", n, unit),
		Duration: time.Duration(n) * step,
	}, true
}

// TimeframeSet is one provider's supported-interval table, mapping canonical
// tokens onto the provider's wire tokens. Resolution never fails: an
// unsupported interval collapses onto the nearest supported one, and
// unparseable input onto the default.
type TimeframeSet struct {
	def    string
	wire   map[string]string
	sorted []Interval
}

// NewTimeframeSet builds a set from canonical-token to wire-token pairs.
// def must be one of the canonical tokens.
func NewTimeframeSet(def string, wire map[string]string) TimeframeSet {
	set := TimeframeSet{def: def, wire: wire}
	for key := range wire {
		if iv, ok := ParseInterval(key); ok {
			set.sorted = append(set.sorted, iv)
		}
	}
	sort.Slice(set.sorted, func(i, j int) bool {
		return set.sorted[i].Duration < set.sorted[j].Duration
	})
	return set
}

// Default returns the set's default interval and its wire token.
func (ts TimeframeSet) Default() (Interval, string) {
	iv, _ := ParseInterval(ts.def)
	return iv, ts.wire[ts.def]
}

// Resolve maps a requested interval onto the provider vocabulary. It returns
// the canonical interval that was settled on plus the wire token for it. A
// supported request passes through unchanged; anything else snaps to the
// supported interval closest in duration, preferring the shorter one on a
// tie. Unparseable input resolves to the default.
func (ts TimeframeSet) Resolve(requested string) (Interval, string) {
	req, ok := ParseInterval(requested)
	if !ok {
		return ts.Default()
	}
	if token, ok := ts.wire[req.Key]; ok {
		return req, token
	}
	if len(ts.sorted) == 0 {
		return req, req.Key
	}
	best := ts.sorted[0]
	bestDiff := absDuration(best.Duration - req.Duration)
	for _, iv := range ts.sorted[1:] {
		if d := absDuration(iv.Duration - req.Duration); d < bestDiff {
			best, bestDiff = iv, d
		}
	}
	return best, ts.wire[best.Key]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// BarsPerSession derives how many bars one trading session yields at the
// given interval. Daily and coarser intervals count one bar per day.
func BarsPerSession(session time.Duration, iv Interval) int {
	if iv.Duration >= 24*time.Hour || iv.Duration <= 0 || session <= 0 {
		return 1
	}
	n := int(session / iv.Duration)
	if n < 1 {
		n = 1
	}
	return n
}

// BarBudget converts a day lookback into a bar count, capped at max when
// max is positive.
func BarBudget(days, perSession, max int) int {
	if days < 1 {
		days = 1
	}
	n := days * perSession
	if max > 0 && n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}

// RangeStep is one rung of a provider's lookback ladder.
type RangeStep struct {
	Days  int
	Token string
}

// RangeLadder maps day lookbacks onto a provider's coarse range tokens,
// ordered finest to coarsest. A zero Days marks an unbounded final rung.
type RangeLadder []RangeStep

// ForDays picks the tightest token covering the requested day span. Spans
// beyond every bounded rung fall through to the coarsest token.
func (l RangeLadder) ForDays(days int) string {
	if len(l) == 0 {
		return ""
	}
	if days < 1 {
		days = 1
	}
	for _, step := range l {
		if step.Days > 0 && days <= step.Days {
			return step.Token
		}
	}
	return l[len(l)-1].Token
}

// Coarser returns the token one rung above t, never below the floor token
// when the floor is on the ladder. Unknown tokens resolve to the floor.
func (l RangeLadder) Coarser(t, floor string) string {
	if len(l) == 0 {
		return t
	}
	next := l.index(t) + 1
	if next >= len(l) {
		next = len(l) - 1
	}
	if fi := l.index(floor); fi >= 0 && next < fi {
		next = fi
	}
	return l[next].Token
}

func (l RangeLadder) index(token string) int {
	for i, step := range l {
		if step.Token == token {
			return i
		}
	}
	return -1
}
