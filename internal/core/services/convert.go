package services

// Records decoded from JSON carry float64 numbers and []any slices, while
// freshly built ones may still carry ints. These helpers accept both.

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	default:
		return 0
	}
}

func toIntMap(v any) map[string]int {
	out := make(map[string]int)
	switch m := v.(type) {
	case map[string]any:
		for k, x := range m {
			out[k] = int(toFloat(x))
		}
	case map[string]int:
		for k, x := range m {
			out[k] = x
		}
	}
	return out
}

func toIntSlice(v any) []int {
	switch s := v.(type) {
	case []int:
		out := make([]int, len(s))
		copy(out, s)
		return out
	case []any:
		out := make([]int, 0, len(s))
		for _, x := range s {
			out = append(out, int(toFloat(x)))
		}
		return out
	default:
		return []int{}
	}
}
