package snapshot

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float coerces a loosely typed numeric value to a float64. Unparseable or
// missing values degrade to 0 rather than erroring, matching the tolerance the
// upstream reports require.
func Float(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return sanitize(t)
	case float32:
		return sanitize(float64(t))
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return sanitize(f)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return sanitize(f)
	default:
		return 0
	}
}

// FeeAmount reads a fee value that may be a number, a numeric string, or an
// object with an "amount" member.
func FeeAmount(v any) float64 {
	if m, ok := v.(map[string]any); ok {
		return Float(m["amount"])
	}
	return Float(v)
}

// Round2 rounds to 2 decimals with round-half-up semantics.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
