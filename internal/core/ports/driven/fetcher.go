package driven

import "context"

// HTTPFetcher retrieves a document body by URL.
type HTTPFetcher interface {
	Get(ctx context.Context, url string) (string, error)
}
