package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure MarkdownURLProcessor implements the interface.
var _ driven.SourceProcessor = (*MarkdownURLProcessor)(nil)

// MarkdownURLProcessor fetches a markdown document and hands it on as a
// markdown source.
type MarkdownURLProcessor struct {
	fetcher driven.HTTPFetcher
}

// NewMarkdownURLProcessor creates the processor.
func NewMarkdownURLProcessor(fetcher driven.HTTPFetcher) *MarkdownURLProcessor {
	return &MarkdownURLProcessor{fetcher: fetcher}
}

// Name returns the processor name.
func (p *MarkdownURLProcessor) Name() string {
	return "markdown.url"
}

// Action claims markdown.url sources.
func (p *MarkdownURLProcessor) Action(source domain.Source) domain.Action {
	if source.Type == domain.SourceMarkdownURL {
		return domain.ActionPartialProcessing
	}
	return domain.ActionSkip
}

// Process downloads the document.
func (p *MarkdownURLProcessor) Process(
	ctx context.Context, source domain.Source, status domain.StatusFunc,
) (*driven.SourceResult, error) {
	u, err := source.StringData()
	if err != nil {
		return nil, err
	}
	u = strings.TrimSpace(u)

	body, err := p.fetcher.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	status(domain.StatusInfo, fmt.Sprintf("fetched %s (%d bytes)", u, len(body)))

	return &driven.SourceResult{Source: &domain.Source{
		Type:    domain.SourceMarkdown,
		Data:    body,
		Options: source.Options,
	}}, nil
}
