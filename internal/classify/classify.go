// Package classify assigns price-action labels to candles under named,
// hot-reloadable threshold policies.
package classify

import (
	"fmt"
	"strings"
)

// Labels name the classes a policy can assign. Reversal may be empty, which
// selects the two-band scheme where every non-degenerate mid-ratio bar takes
// a weak label instead of a dedicated reversal class.
type Labels struct {
	BullStrong string `mapstructure:"bull_strong" yaml:"bull_strong"`
	BearStrong string `mapstructure:"bear_strong" yaml:"bear_strong"`
	BullWeak   string `mapstructure:"bull_weak" yaml:"bull_weak"`
	BearWeak   string `mapstructure:"bear_weak" yaml:"bear_weak"`
	Doji       string `mapstructure:"doji" yaml:"doji"`
	Reversal   string `mapstructure:"reversal" yaml:"reversal"`
}

// Policy is one named threshold set. Ratios compare candle body to full
// range, so every threshold lives in [0, 1].
type Policy struct {
	Name   string  `mapstructure:"name" yaml:"name"`
	Doji   float64 `mapstructure:"doji_threshold" yaml:"doji_threshold"`
	Weak   float64 `mapstructure:"weak_threshold" yaml:"weak_threshold"`
	Strong float64 `mapstructure:"strong_threshold" yaml:"strong_threshold"`
	Labels Labels  `mapstructure:"labels" yaml:"labels"`
}

// Directional is the classic chart vocabulary: three ratio bands plus a
// dedicated reversal class between the doji and weak thresholds.
var Directional = Policy{
	Name:   "directional",
	Doji:   0.2,
	Weak:   0.4,
	Strong: 0.7,
	Labels: Labels{
		BullStrong: "bull-strong",
		BearStrong: "bear-strong",
		BullWeak:   "bull-weak",
		BearWeak:   "bear-weak",
		Doji:       "exhaustion",
		Reversal:   "reversal",
	},
}

// Pressure is the order-flow vocabulary used by deployments that read
// candles as buyer and seller pressure. No reversal class; mid-ratio bars
// count as weak pressure.
var Pressure = Policy{
	Name:   "pressure",
	Doji:   0.3,
	Weak:   0.3,
	Strong: 0.7,
	Labels: Labels{
		BullStrong: "strong_buyer",
		BearStrong: "strong_seller",
		BullWeak:   "weak_buyer",
		BearWeak:   "weak_seller",
		Doji:       "doji",
	},
}

// Label classifies one candle under the policy. The body-to-range ratio
// picks the band, close > open picks the direction, and a flat range
// short-circuits to the degenerate label. Pure and deterministic.
func Label(open, high, low, closePrice float64, p Policy) string {
	rng := high - low
	if rng == 0 {
		return p.Labels.Doji
	}
	body := closePrice - open
	if body < 0 {
		body = -body
	}
	ratio := body / rng
	bull := closePrice > open
	switch {
	case ratio > p.Strong:
		return pick(bull, p.Labels.BullStrong, p.Labels.BearStrong)
	case p.Labels.Reversal != "":
		if ratio > p.Weak {
			return pick(bull, p.Labels.BullWeak, p.Labels.BearWeak)
		}
		if ratio < p.Doji {
			return p.Labels.Doji
		}
		return p.Labels.Reversal
	case ratio < p.Doji:
		return p.Labels.Doji
	default:
		return pick(bull, p.Labels.BullWeak, p.Labels.BearWeak)
	}
}

func pick(bull bool, bullLabel, bearLabel string) string {
	if bull {
		return bullLabel
	}
	return bearLabel
}

// Validate checks threshold ordering and that every reachable class has a
// label. Reversal stays optional.
func (p Policy) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("policy needs a name")
	}
	if p.Doji < 0 || p.Strong > 1 || p.Doji > p.Weak || p.Weak > p.Strong {
		return fmt.Errorf("policy %s: thresholds must satisfy 0 <= doji <= weak <= strong <= 1", p.Name)
	}
	required := []string{
		p.Labels.BullStrong, p.Labels.BearStrong,
		p.Labels.BullWeak, p.Labels.BearWeak,
		p.Labels.Doji,
	}
	for _, label := range required {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("policy %s: labels must name every class", p.Name)
		}
	}
	return nil
}
