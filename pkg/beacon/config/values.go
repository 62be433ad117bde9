package config

import (
	"time"
)

// values wraps a decoded config map for tolerant typed extraction.
// All accessors return the given default when the key is missing or the
// value cannot be coerced to the requested type.
type values map[string]any

// str returns the string for key, or defaultVal if missing or not a string.
func (v values) str(key, defaultVal string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return defaultVal
}

// duration returns the duration for key, or defaultVal if missing or invalid.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int, int64, float64: interpreted as seconds
//   - time.Duration: used directly
func (v values) duration(key string, defaultVal time.Duration) time.Duration {
	val, ok := v[key]
	if !ok {
		return defaultVal
	}
	switch d := val.(type) {
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
	case float64:
		return time.Duration(d * float64(time.Second))
	case int:
		return time.Duration(d) * time.Second
	case int64:
		return time.Duration(d) * time.Second
	case time.Duration:
		return d
	}
	return defaultVal
}

// integer returns the int for key, or defaultVal if missing or not
// convertible.
//
// Accepts:
//   - int, int64: used directly
//   - float64: converted only when it has no fractional part
func (v values) integer(key string, defaultVal int) int {
	val, ok := v[key]
	if !ok {
		return defaultVal
	}
	switch n := val.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return defaultVal
}
