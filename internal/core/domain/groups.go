package domain

// EntryGroup is the entries collected under one raw category label.
type EntryGroup struct {
	Category string
	Entries  []*Entry
}

// EntryGroups is a category-keyed entry accumulator that keeps the order in
// which categories were first encountered.
type EntryGroups struct {
	order []string
	index map[string]int
	items [][]*Entry
}

// NewEntryGroups creates an empty accumulator.
func NewEntryGroups() *EntryGroups {
	return &EntryGroups{index: make(map[string]int)}
}

// Add appends entries under category, creating the group on first use.
func (g *EntryGroups) Add(category string, entries ...*Entry) {
	i, ok := g.index[category]
	if !ok {
		i = len(g.order)
		g.index[category] = i
		g.order = append(g.order, category)
		g.items = append(g.items, nil)
	}
	g.items[i] = append(g.items[i], entries...)
}

// Merge appends every group of other, preserving its category order.
func (g *EntryGroups) Merge(other *EntryGroups) {
	if other == nil {
		return
	}
	for i, category := range other.order {
		g.Add(category, other.items[i]...)
	}
}

// Groups returns the groups in first-encounter order.
func (g *EntryGroups) Groups() []EntryGroup {
	out := make([]EntryGroup, len(g.order))
	for i, category := range g.order {
		out[i] = EntryGroup{Category: category, Entries: g.items[i]}
	}
	return out
}

// Len returns the total number of entries across all groups.
func (g *EntryGroups) Len() int {
	n := 0
	for _, items := range g.items {
		n += len(items)
	}
	return n
}
