package util

import (
	"fmt"
	"strconv"
	"strings"
)

// GetAsInteger converts various types to integer
// Strings are trimmed and parsed, floats must be whole numbers, anything else is an error
func GetAsInteger(s any) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("cannot convert nil to integer")
	}

	switch v := s.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v > 2147483647 || v < -2147483648 {
			return 0, fmt.Errorf("int64 value %d is out of int range", v)
		}
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("float64 value %f is not a whole number", v)
		}
		return int(v), nil
	case string:
		t := strings.TrimSpace(v)
		if result, err := strconv.Atoi(t); err == nil {
			return result, nil
		}
		// pandas writes integer columns containing gaps as 1995.0
		if f, err := strconv.ParseFloat(t, 64); err == nil && f == float64(int(f)) {
			return int(f), nil
		}
		return 0, fmt.Errorf("cannot convert string '%s' to integer", v)
	default:
		return 0, fmt.Errorf("cannot convert type %T to integer", s)
	}
}

// GetAsFloat converts various types to float64
func GetAsFloat(s any) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("cannot convert nil to float")
	}

	switch v := s.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string '%s' to float: %w", v, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert type %T to float", s)
	}
}

// IsBlank reports whether a CSV cell should be treated as missing
func IsBlank(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "nan", "null", "none", "n/a", "-":
		return true
	}
	return false
}
