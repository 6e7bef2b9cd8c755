// Package fetcher retrieves remote documents over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// MaxBodySize is the largest body read; longer documents are truncated.
	MaxBodySize = 10 << 20

	userAgent = "curator"
)

// Ensure Fetcher implements the interface.
var _ driven.HTTPFetcher = (*Fetcher)(nil)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap maps a 404 onto domain.ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

// Fetcher is a plain HTTP GET client.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher with the given timeout; zero uses DefaultTimeout.
func New(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewWithClient creates a fetcher over an existing client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Get returns the body of url as a string.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
