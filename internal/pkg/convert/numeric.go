// Package convert provides type conversion utilities.
package convert

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float64 converts various numeric types to float64 and reports whether v held
// a usable finite value. NaN, infinities, unparseable strings and unsupported
// types all report false.
func Float64(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return checkFinite(t)
	case float32:
		return checkFinite(float64(t))
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return checkFinite(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return checkFinite(f)
	default:
		return 0, false
	}
}

// ToFloat64 is Float64 with a zero fallback.
func ToFloat64(v any) float64 {
	f, _ := Float64(v)
	return f
}

// ToInt64 converts v to int64, truncating fractional values toward zero.
// Returns 0 for unsupported types or parse failures.
func ToInt64(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint64:
		return int64(t)
	default:
		f, ok := Float64(v)
		if !ok {
			return 0
		}
		return int64(f)
	}
}

func checkFinite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
