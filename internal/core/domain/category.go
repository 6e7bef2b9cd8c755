package domain

import (
	"fmt"
	"sort"
)

// Category is one node of a list's category tree.
// Parent 0 means the category sits at the root.
type Category struct {
	ID     int            `json:"id"`
	Title  string         `json:"title"`
	Parent int            `json:"parent"`
	Count  map[string]int `json:"count"`
}

// CategoryTree maps raw category labels to their full path of labels.
type CategoryTree struct {
	paths map[string][]string
}

// NewCategoryTree builds a tree from nested configuration. Values may be nil
// (leaf), a mapping of child labels, or a list of child labels / mappings.
// A label reachable from two places is rejected with ErrDuplicateCategory.
func NewCategoryTree(nested map[string]any) (*CategoryTree, error) {
	t := &CategoryTree{paths: make(map[string][]string)}
	if err := t.walk(nested, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *CategoryTree) walk(node any, parent []string) error {
	switch v := node.(type) {
	case nil:
		return nil
	case string:
		return t.add(v, parent)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, label := range keys {
			if err := t.add(label, parent); err != nil {
				return err
			}
			if err := t.walk(v[label], t.paths[label]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range v {
			if err := t.walk(item, parent); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, label := range v {
			if err := t.add(label, parent); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: category tree node of type %T", ErrInvalidDefinition, node)
	}
}

func (t *CategoryTree) add(label string, parent []string) error {
	if _, exists := t.paths[label]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCategory, label)
	}
	path := make([]string, len(parent), len(parent)+1)
	copy(path, parent)
	t.paths[label] = append(path, label)
	return nil
}

// Path returns the label path from the root down to label.
// Labels missing from the tree resolve to a single-segment path.
func (t *CategoryTree) Path(label string) []string {
	if t != nil {
		if p, ok := t.paths[label]; ok {
			out := make([]string, len(p))
			copy(out, p)
			return out
		}
	}
	return []string{label}
}

// Len returns the number of labels in the tree.
func (t *CategoryTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.paths)
}
