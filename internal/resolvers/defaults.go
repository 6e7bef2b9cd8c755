package resolvers

import (
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Defaults returns the built-in resolvers in chain order.
func Defaults(inspector driven.RepositoryInspector, cache driven.Storage, opts ...Option) []driven.EntryResolver {
	return []driven.EntryResolver{
		NewRepoGithubResolver(inspector, cache, opts...),
	}
}
