package processors

import (
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/factories"
)

// Dependencies are the collaborators the built-in processors need.
// Processors whose collaborator is nil are left out of the chain.
type Dependencies struct {
	Parser  driven.MarkdownParser
	Fetcher driven.HTTPFetcher
	Lister  driven.RepositoryLister
	Readme  driven.ReadmeFetcher
	URLs    *factories.URLFactory
	Types   *factories.TypeFactory
}

// Defaults returns the built-in processors in chain order.
func Defaults(deps Dependencies) []driven.SourceProcessor {
	var chain []driven.SourceProcessor

	if deps.Fetcher != nil {
		chain = append(chain, NewMarkdownURLProcessor(deps.Fetcher))
	}
	if deps.Readme != nil {
		chain = append(chain, NewGithubListProcessor(deps.Readme))
	}
	if deps.Lister != nil {
		chain = append(chain, NewGithubAuthorProcessor(deps.Lister))
	}
	chain = append(chain, NewGithubReposProcessor())
	if deps.Parser != nil && deps.URLs != nil {
		chain = append(chain, NewMarkdownProcessor(deps.Parser, deps.URLs))
	}
	if deps.URLs != nil {
		chain = append(chain, NewURLListProcessor(deps.URLs))
	}
	if deps.Types != nil {
		chain = append(chain, NewEntriesProcessor(deps.Types))
	}

	return chain
}
