package services

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// DeepDiff returns every key of source whose value is missing from dest or
// differs from it. Nested mappings are compared key by key and contribute
// only their differing keys. Keys present only in dest are never reported.
func DeepDiff(source, dest map[string]any) map[string]any {
	diff := make(map[string]any)
	for key, sv := range source {
		dv, ok := dest[key]
		if !ok {
			diff[key] = sv
			continue
		}

		sm, sIsMap := sv.(map[string]any)
		dm, dIsMap := dv.(map[string]any)
		if sIsMap && dIsMap {
			if sub := DeepDiff(sm, dm); len(sub) > 0 {
				diff[key] = sub
			}
			continue
		}

		if !reflect.DeepEqual(sv, dv) {
			diff[key] = sv
		}
	}
	return diff
}

// normalize round-trips v through JSON so that freshly built records compare
// equal to records decoded from storage (numbers become float64, slices []any).
func normalize(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	out := make(map[string]any)
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
