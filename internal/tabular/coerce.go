package tabular

import "strconv"

// CoerceNumeric converts a raw cell value to a float64.
//
// Source payloads are only partially typed: the FPL API returns influence or
// ict_index as strings like "12.5", Understat returns everything as strings,
// and genuinely numeric fields arrive as JSON numbers. This handles all of
// them, returning ok=false for anything non-coercible.
func CoerceNumeric(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}
