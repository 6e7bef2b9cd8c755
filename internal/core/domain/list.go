package domain

// DefaultCategory is the label given to entries whose source named none.
const DefaultCategory = "Uncategorized"

// ListOptions tune how a list organises its entries.
type ListOptions struct {
	// CategoryTree nests raw category labels under parents.
	CategoryTree map[string]any `json:"categoryTree,omitempty" yaml:"categoryTree,omitempty"`

	// CategoryNames maps raw labels to display titles.
	CategoryNames map[string]string `json:"categoryNames,omitempty" yaml:"categoryNames,omitempty"`

	// DefaultCategory replaces empty labels. Falls back to DefaultCategory.
	DefaultCategory string `json:"defaultCategory,omitempty" yaml:"defaultCategory,omitempty"`
}

// ListDefinition is the validated, declarative description of one list.
type ListDefinition struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Desc    string      `json:"desc,omitempty" yaml:"desc,omitempty"`
	Sources []Source    `json:"sources" yaml:"sources"`
	Options ListOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

// DefaultCategoryLabel returns the label for entries without a category.
func (d ListDefinition) DefaultCategoryLabel() string {
	if d.Options.DefaultCategory != "" {
		return d.Options.DefaultCategory
	}
	return DefaultCategory
}

// CategoryTitle returns the display title for a raw label.
func (d ListDefinition) CategoryTitle(label string) string {
	if title, ok := d.Options.CategoryNames[label]; ok && title != "" {
		return title
	}
	return label
}

// ListStats counts per-stage outcomes of one list.
type ListStats struct {
	SourcesTotal     int `json:"sourcesTotal"`
	SourcesProcessed int `json:"sourcesProcessed"`
	EntriesTotal     int `json:"entriesTotal"`
	EntriesResolved  int `json:"entriesResolved"`
}

// ListSnapshot is the persisted state of a list between pipeline stages.
type ListSnapshot struct {
	Definition ListDefinition `json:"definition"`
	Score      int            `json:"score"`
	Processed  bool           `json:"processed"`
	Resolved   bool           `json:"resolved"`
	Categories []Category     `json:"categories"`
	Entries    []*Entry       `json:"entries"`
	Stats      ListStats      `json:"stats"`
}
