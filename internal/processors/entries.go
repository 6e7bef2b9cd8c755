package processors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/factories"
)

// Ensure EntriesProcessor implements the interface.
var _ driven.SourceProcessor = (*EntriesProcessor)(nil)

// EntriesProcessor instantiates typed entry definitions. It is the terminal
// processor most other sources reduce to.
type EntriesProcessor struct {
	types *factories.TypeFactory
}

// NewEntriesProcessor creates the processor.
func NewEntriesProcessor(types *factories.TypeFactory) *EntriesProcessor {
	return &EntriesProcessor{types: types}
}

// Name returns the processor name.
func (p *EntriesProcessor) Name() string {
	return "entries"
}

// Action claims entries sources.
func (p *EntriesProcessor) Action(source domain.Source) domain.Action {
	if source.Type == domain.SourceEntries {
		return domain.ActionProcessing
	}
	return domain.ActionSkip
}

// Process creates one entry per definition. Unknown types and definitions
// missing required data are reported and skipped.
func (p *EntriesProcessor) Process(
	_ context.Context, source domain.Source, status domain.StatusFunc,
) (*driven.SourceResult, error) {
	defs, err := source.EntryDefinitionsData()
	if err != nil {
		return nil, err
	}

	groups := domain.NewEntryGroups()
	fallback := source.Category("")
	for _, def := range defs {
		entries, err := p.types.Create(def)
		if err != nil {
			status(domain.StatusWarning, fmt.Sprintf("skipping %s entry: %v", def.Type, err))
			continue
		}
		if len(entries) == 0 {
			status(domain.StatusWarning, fmt.Sprintf("no factory for entry type %q", def.Type))
			continue
		}
		category := def.Category
		if category == "" {
			category = fallback
		}
		groups.Add(category, entries...)
	}

	return &driven.SourceResult{Entries: groups}, nil
}
