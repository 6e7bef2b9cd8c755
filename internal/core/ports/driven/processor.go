package driven

import (
	"context"

	"github.com/custodia-labs/curator/internal/core/domain"
)

// SourceResult is the output of a source processor: either a replacement
// Source (partial processing) or categorised entries (processing).
type SourceResult struct {
	Source  *domain.Source
	Entries *domain.EntryGroups
}

// SourceProcessor turns a Source into entries or into another Source.
type SourceProcessor interface {
	// Name identifies the processor in errors and status messages.
	Name() string

	// Action classifies the source.
	Action(source domain.Source) domain.Action

	// Process handles a source the processor claimed.
	Process(ctx context.Context, source domain.Source, status domain.StatusFunc) (*SourceResult, error)
}

// URLResult is the output of a URL processor: child URLs for partial
// processing or entries for processing.
type URLResult struct {
	URLs    []string
	Entries []*domain.Entry
}

// URLProcessor turns a URL into entries or rewrites it into other URLs.
type URLProcessor interface {
	Name() string
	Action(url string) domain.Action
	Process(ctx context.Context, url string) (*URLResult, error)
}

// EntryResolver enriches entries with externally sourced metadata.
type EntryResolver interface {
	Name() string

	// Supports reports whether this resolver handles the entry.
	Supports(entry *domain.Entry) bool

	// Resolve enriches the entry. Already resolved entries are left alone
	// unless force is set.
	Resolve(ctx context.Context, entry *domain.Entry, force bool) error
}
