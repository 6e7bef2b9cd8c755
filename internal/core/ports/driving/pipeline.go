package driving

import (
	"context"

	"github.com/custodia-labs/curator/internal/core/domain"
)

// Pipeline coordinates the fetch, resolve and build stages of list curation.
type Pipeline interface {
	// Fetch processes the sources of a list definition and stores the list.
	// Refetching an already processed list requires force.
	Fetch(ctx context.Context, def domain.ListDefinition, force bool) (*domain.ListStats, error)

	// Resolve enriches the entries of a stored list.
	// Resolving an already resolved list requires force.
	Resolve(ctx context.Context, listID string, force bool) (*domain.ListStats, error)

	// Build distributes stored, resolved lists into a new numbered build.
	// Lists of the previous build that are not named are carried over.
	Build(ctx context.Context, listIDs []string) (*domain.BuildReport, error)

	// Run fetches, resolves and builds the given definitions in one pass.
	Run(ctx context.Context, defs []domain.ListDefinition) (*domain.BuildReport, error)
}
