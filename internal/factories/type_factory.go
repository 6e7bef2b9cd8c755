package factories

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/curator/internal/core/domain"
)

// BuildFunc creates an entry from data whose required keys are present.
type BuildFunc func(data map[string]any) (*domain.Entry, error)

// Builder describes how one entry type is constructed.
type Builder struct {
	// Required keys must be present in the data.
	Required []string

	// Build creates the entry.
	Build BuildFunc
}

// TypeFactory maps entry type tags to their builders.
type TypeFactory struct {
	builders map[string]Builder
}

// NewTypeFactory creates an empty factory.
func NewTypeFactory() *TypeFactory {
	return &TypeFactory{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder for an entry type, replacing any previous one.
func (f *TypeFactory) Register(typ string, builder Builder) {
	f.builders[typ] = builder
}

// Has returns true if a builder is registered for typ.
func (f *TypeFactory) Has(typ string) bool {
	_, ok := f.builders[typ]
	return ok
}

// Types returns the registered type tags, sorted.
func (f *TypeFactory) Types() []string {
	types := make([]string, 0, len(f.builders))
	for typ := range f.builders {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Create builds the entry described by def.
// An unregistered type yields no entries and no error; the caller decides
// whether to report it. Missing required keys fail with ErrEntryCreationFailed.
func (f *TypeFactory) Create(def domain.EntryDefinition) ([]*domain.Entry, error) {
	builder, ok := f.builders[def.Type]
	if !ok {
		return nil, nil
	}

	for _, key := range builder.Required {
		if _, ok := def.Data[key]; !ok {
			return nil, fmt.Errorf("%w: %s requires %q", domain.ErrEntryCreationFailed, def.Type, key)
		}
	}

	entry, err := builder.Build(def.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEntryCreationFailed, def.Type, err)
	}
	return []*domain.Entry{entry}, nil
}

// RegisterDefaults registers the built-in entry types.
func RegisterDefaults(f *TypeFactory) {
	f.Register(domain.TypeRepoGithub, Builder{
		Required: []string{domain.KeyAuthor, domain.KeyName},
		Build:    buildRepoGithub,
	})
}

// buildRepoGithub creates a repo.github entry. Keys other than author and
// name are carried over as pre-set data.
func buildRepoGithub(data map[string]any) (*domain.Entry, error) {
	author, ok := data[domain.KeyAuthor].(string)
	if !ok || author == "" {
		return nil, fmt.Errorf("author must be a non-empty string")
	}
	name, ok := data[domain.KeyName].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("name must be a non-empty string")
	}

	entry := domain.NewRepoGithubEntry(author, name)
	for k, v := range data {
		if k == domain.KeyAuthor || k == domain.KeyName {
			continue
		}
		entry.Set(k, v)
	}
	return entry, nil
}
