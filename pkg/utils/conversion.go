package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToBool safely converts various types to boolean.
// Handles bool, int, int64, float64, string ("1", "true", "yes", "on").
// Switch-type form fields go through this so an absent or oddly-typed value
// degrades to false instead of failing.
func ToBool(val interface{}) bool {
	if val == nil {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		return parseBoolString(v)
	default:
		str := fmt.Sprintf("%v", v)
		return parseBoolString(str)
	}
}

// parseBoolString parses boolean from string representation
func parseBoolString(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "1" || lower == "true" || lower == "yes" || lower == "on" || lower == "t" {
		return true
	}
	if b, err := strconv.ParseBool(lower); err == nil {
		return b
	}
	return false
}

// ToFloat64 converts numeric and numeric-string values to float64.
// The second return is false when the value is not interpretable as a number.
func ToFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// IsEmpty reports whether a form value counts as unset for required checks:
// nil or empty/whitespace-only string.
func IsEmpty(val interface{}) bool {
	if val == nil {
		return true
	}
	if str, ok := val.(string); ok {
		return strings.TrimSpace(str) == ""
	}
	return false
}
