package processors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/factories"
)

// Ensure URLListProcessor implements the interface.
var _ driven.SourceProcessor = (*URLListProcessor)(nil)

// URLListProcessor runs a raw URL list through the URL factory.
type URLListProcessor struct {
	urls *factories.URLFactory
}

// NewURLListProcessor creates the processor.
func NewURLListProcessor(urls *factories.URLFactory) *URLListProcessor {
	return &URLListProcessor{urls: urls}
}

// Name returns the processor name.
func (p *URLListProcessor) Name() string {
	return "url.list"
}

// Action claims url.list sources.
func (p *URLListProcessor) Action(source domain.Source) domain.Action {
	if source.Type == domain.SourceURLList {
		return domain.ActionProcessing
	}
	return domain.ActionSkip
}

// Process converts every URL. A URL that fails is reported and skipped.
func (p *URLListProcessor) Process(
	ctx context.Context, source domain.Source, status domain.StatusFunc,
) (*driven.SourceResult, error) {
	urls, err := source.StringListData()
	if err != nil {
		return nil, err
	}

	groups := domain.NewEntryGroups()
	category := source.Category("")
	for _, u := range urls {
		entries, err := p.urls.Create(ctx, u)
		if err != nil {
			if errors.Is(err, domain.ErrLogic) || ctx.Err() != nil {
				return nil, err
			}
			status(domain.StatusError, fmt.Sprintf("skipping %s: %v", u, err))
			continue
		}
		if len(entries) == 0 {
			status(domain.StatusWarning, fmt.Sprintf("no entry for %s", u))
			continue
		}
		groups.Add(category, entries...)
	}

	return &driven.SourceResult{Entries: groups}, nil
}
