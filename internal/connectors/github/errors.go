package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/curator/internal/core/domain"
)

// ErrRepoNotFound indicates the repository or user was not found or is not
// accessible. It wraps domain.ErrNotFound.
var ErrRepoNotFound = fmt.Errorf("github: repository %w", domain.ErrNotFound)

// ErrNoReadme indicates the repository has no README.
var ErrNoReadme = errors.New("github: repository has no readme")

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap maps a 404 onto ErrRepoNotFound.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrRepoNotFound
	}
	return nil
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRepoNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}
