// Package values converts loosely typed configuration values.
//
// TOML decoding yields int64 integers and []any arrays while values set from
// code keep their Go types; both config stores read through these helpers so
// they agree on every conversion.
package values

import (
	"sort"
	"strings"
	"time"
)

// String returns v as a string, or "".
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an int, or 0.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Bool returns v as a bool, or false.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// StringSlice returns the string items of v, or nil if v isn't a slice.
func StringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Duration parses a duration string such as "24h", or returns v if it is
// already a time.Duration. Anything else is 0.
func Duration(v any) time.Duration {
	switch d := v.(type) {
	case time.Duration:
		return d
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// KeysUnder returns the keys of m below prefix, with "prefix." stripped, sorted.
func KeysUnder(m map[string]any, prefix string) []string {
	var keys []string
	for k := range m {
		if prefix == "" {
			keys = append(keys, k)
			continue
		}
		if rest, ok := strings.CutPrefix(k, prefix+"."); ok {
			keys = append(keys, rest)
		}
	}
	sort.Strings(keys)
	return keys
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range Flatten(nested, fullKey) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}
