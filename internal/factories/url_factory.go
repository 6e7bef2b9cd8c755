package factories

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/logger"
)

// URLFactory runs URLs through an ordered chain of URL processors.
type URLFactory struct {
	processors []driven.URLProcessor
}

// NewURLFactory creates a factory with the given processors.
// Processors are consulted in the order provided.
func NewURLFactory(processors ...driven.URLProcessor) *URLFactory {
	return &URLFactory{
		processors: processors,
	}
}

// Add appends a processor to the chain.
func (f *URLFactory) Add(processor driven.URLProcessor) {
	f.processors = append(f.processors, processor)
}

// Len returns the number of processors in the chain.
func (f *URLFactory) Len() int {
	return len(f.processors)
}

// pendingURL is a URL waiting for a processor, with the chain of URLs it was
// rewritten from.
type pendingURL struct {
	url       string
	ancestors []string
}

// Create turns urls into entries. URLs no processor claims yield nothing.
// A processor failure aborts with a *domain.URLEntryCreationError; a rewrite
// that leads back to a URL already on its own chain aborts with ErrInfiniteLoop.
func (f *URLFactory) Create(ctx context.Context, urls ...string) ([]*domain.Entry, error) {
	var entries []*domain.Entry

	for _, u := range urls {
		produced, err := f.createOne(ctx, u)
		if err != nil {
			return entries, err
		}
		entries = append(entries, produced...)
	}

	return entries, nil
}

func (f *URLFactory) createOne(ctx context.Context, rootURL string) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	stack := []pendingURL{{url: rootURL}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, produced, err := f.dispatch(ctx, current)
		if err != nil {
			return entries, err
		}
		entries = append(entries, produced...)

		// Push in reverse so children are handled in the order returned.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return entries, nil
}

// dispatch hands one URL to the first processor that claims it.
func (f *URLFactory) dispatch(ctx context.Context, current pendingURL) ([]pendingURL, []*domain.Entry, error) {
	for _, p := range f.processors {
		action := p.Action(current.url)
		switch action {
		case domain.ActionSkip:
			continue

		case domain.ActionProcessing:
			result, err := p.Process(ctx, current.url)
			if err != nil {
				return nil, nil, &domain.URLEntryCreationError{Processor: p.Name(), URL: current.url, Err: err}
			}
			if result == nil {
				return nil, nil, nil
			}
			if len(result.URLs) > 0 {
				return nil, nil, &domain.URLEntryCreationError{
					Processor: p.Name(),
					URL:       current.url,
					Err:       fmt.Errorf("%w: processing returned child urls", domain.ErrUnexpectedValue),
				}
			}
			return nil, result.Entries, nil

		case domain.ActionPartialProcessing:
			result, err := p.Process(ctx, current.url)
			if err != nil {
				return nil, nil, &domain.URLEntryCreationError{Processor: p.Name(), URL: current.url, Err: err}
			}
			if result == nil || len(result.URLs) == 0 || len(result.Entries) > 0 {
				return nil, nil, &domain.URLEntryCreationError{
					Processor: p.Name(),
					URL:       current.url,
					Err:       fmt.Errorf("%w: partial processing must return child urls only", domain.ErrUnexpectedValue),
				}
			}

			chain := append(slices.Clone(current.ancestors), current.url)
			children := make([]pendingURL, 0, len(result.URLs))
			for _, child := range result.URLs {
				if slices.Contains(chain, child) {
					return nil, nil, fmt.Errorf("%w: url processor %s returned %s while processing %s",
						domain.ErrInfiniteLoop, p.Name(), child, current.url)
				}
				children = append(children, pendingURL{url: child, ancestors: chain})
			}
			return children, nil, nil

		default:
			return nil, nil, fmt.Errorf("%w: url processor %s returned action %d", domain.ErrUnexpectedValue, p.Name(), action)
		}
	}

	logger.Debug("No url processor claimed %s", current.url)
	return nil, nil, nil
}
