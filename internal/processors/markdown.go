package processors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/factories"
)

// Ensure MarkdownProcessor implements the interface.
var _ driven.SourceProcessor = (*MarkdownProcessor)(nil)

// MarkdownProcessor extracts entries from links inside list blocks. The
// closest preceding heading is the category of every link below it.
type MarkdownProcessor struct {
	parser driven.MarkdownParser
	urls   *factories.URLFactory
}

// NewMarkdownProcessor creates the processor.
func NewMarkdownProcessor(parser driven.MarkdownParser, urls *factories.URLFactory) *MarkdownProcessor {
	return &MarkdownProcessor{
		parser: parser,
		urls:   urls,
	}
}

// Name returns the processor name.
func (p *MarkdownProcessor) Name() string {
	return "markdown"
}

// Action claims markdown sources.
func (p *MarkdownProcessor) Action(source domain.Source) domain.Action {
	if source.Type == domain.SourceMarkdown {
		return domain.ActionProcessing
	}
	return domain.ActionSkip
}

// Process walks the document and turns list links into entries.
// A URL that fails to convert is reported and skipped.
func (p *MarkdownProcessor) Process(
	ctx context.Context, source domain.Source, status domain.StatusFunc,
) (*driven.SourceResult, error) {
	body, err := source.StringData()
	if err != nil {
		return nil, err
	}

	nodes, err := p.parser.Parse([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}

	groups := domain.NewEntryGroups()
	category := source.Category("")
	depth := 0
	seen := make(map[string]bool)
	links := 0

	for _, node := range nodes {
		switch node.Kind {
		case driven.MarkdownHeading:
			if title := strings.TrimSpace(node.Text); title != "" {
				category = title
			}
		case driven.MarkdownListStart:
			depth++
		case driven.MarkdownListEnd:
			if depth > 0 {
				depth--
			}
		case driven.MarkdownLink:
			if depth == 0 || node.URL == "" {
				continue
			}
			links++
			entries, err := p.urls.Create(ctx, node.URL)
			if err != nil {
				if errors.Is(err, domain.ErrLogic) || ctx.Err() != nil {
					return nil, err
				}
				status(domain.StatusWarning, fmt.Sprintf("skipping %s: %v", node.URL, err))
				continue
			}
			for _, e := range entries {
				if seen[e.ID()] {
					continue
				}
				seen[e.ID()] = true
				groups.Add(category, e)
			}
		}
	}

	status(domain.StatusInfo, fmt.Sprintf("markdown: %d links, %d entries", links, groups.Len()))
	return &driven.SourceResult{Entries: groups}, nil
}
