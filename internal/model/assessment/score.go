package assessment

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimal rejects the hex, exponent and Inf/NaN spellings strconv accepts.
var decimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

const (
	MinScore = -100
	MaxScore = 100
)

// Normalize turns a raw score of unknown type into an integer in
// [MinScore, MaxScore]. Missing, non-numeric and non-finite input yields 0.
// Numbers are rounded half away from zero, then clamped.
func Normalize(raw any) int {
	value, ok := toFloat(raw)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return Clamp(int(math.Round(clampFloat(value))))
}

// Clamp bounds an integer score to [MinScore, MaxScore].
func Clamp(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

// InRange reports whether n is already a valid score.
func InRange(n int) bool {
	return n >= MinScore && n <= MaxScore
}

// ParseScore parses a user reply as a score. Only plain decimal text is
// accepted, and unlike Normalize anything outside the range is rejected
// instead of clamped.
func ParseScore(text string) (int, bool) {
	value, ok := parseDecimal(text)
	if !ok || value < MinScore || value > MaxScore {
		return 0, false
	}
	return int(math.Round(value)), true
}

// Check is the strict counterpart of Normalize for submitted forms: the value
// must be numeric and already inside the range after rounding.
func Check(raw any) (int, bool) {
	value, ok := toFloat(raw)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	n := int(math.Round(clampFloat(value)))
	if !InRange(n) {
		return 0, false
	}
	return n, true
}

func parseDecimal(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if !decimal.MatchString(text) {
		return 0, false
	}
	value, err := strconv.ParseFloat(text, 64)
	return value, err == nil
}

// clampFloat keeps huge values from overflowing the int conversion.
func clampFloat(v float64) float64 {
	return math.Max(MinScore-1, math.Min(MaxScore+1, v))
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return parseDecimal(v)
	case *int:
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	default:
		return 0, false
	}
}
