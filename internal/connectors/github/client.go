package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements the ports it serves.
var (
	_ driven.RepositoryInspector = (*Client)(nil)
	_ driven.RepositoryLister    = (*Client)(nil)
	_ driven.ReadmeFetcher       = (*Client)(nil)
)

// Client wraps the go-github client with rate limiting and the port methods.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
	now         func() time.Time

	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The token, if any, is not applied
// to a replaced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		c.baseURL = raw
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimiter replaces the rate limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithClock sets the clock used for score computation.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a GitHub API client. An empty token runs unauthenticated
// with the anonymous quota.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	c := &Client{
		now:     time.Now,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.rateLimiter == nil {
		if token == "" {
			c.rateLimiter = NewRateLimiter(AnonymousLimit)
		} else {
			c.rateLimiter = NewRateLimiter(AuthenticatedLimit)
		}
	}

	hc := c.httpClient
	if hc == nil {
		if token != "" {
			ts := oauth2.StaticTokenSource(
				&oauth2.Token{AccessToken: token},
			)
			hc = oauth2.NewClient(ctx, ts)
		} else {
			hc = &http.Client{}
		}
		hc.Timeout = c.timeout
	}
	c.gh = gh.NewClient(hc)

	if c.baseURL != "" {
		base := c.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
		c.gh.BaseURL = u
	}

	return c, nil
}

// Inspect fetches repository metadata and scores it.
func (c *Client) Inspect(ctx context.Context, author, name string) (*driven.RepositoryInfo, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repo, resp, err := c.gh.Repositories.Get(ctx, author, name)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get repo "+author+"/"+name)
	}

	scores, avg := Scores(repo, c.now())
	info := &driven.RepositoryInfo{
		Description: repo.GetDescription(),
		Language:    repo.GetLanguage(),
		LicenseID:   repo.GetLicense().GetKey(),
		ScoresAvg:   avg,
		Scores:      scores,
		PushedAt:    repo.GetPushedAt().Time,
		Archived:    repo.GetArchived(),
		Fork:        repo.GetFork(),
		Stars:       repo.GetStargazersCount(),
	}
	logger.Debug("Inspected %s/%s: score %d", author, name, avg)
	return info, nil
}

// ListRepositories returns every public repository owned by author, which may
// be a user or an organisation.
func (c *Client) ListRepositories(ctx context.Context, author string) ([]driven.RepositoryRef, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	user, resp, err := c.gh.Users.Get(ctx, author)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get user "+author)
	}

	isOrg := user.GetType() == "Organization"
	list := func(page int) ([]*gh.Repository, *gh.Response, error) {
		if isOrg {
			return c.gh.Repositories.ListByOrg(ctx, author, &gh.RepositoryListByOrgOptions{
				Type:        "public",
				ListOptions: gh.ListOptions{PerPage: 100, Page: page},
			})
		}
		return c.gh.Repositories.ListByUser(ctx, author, &gh.RepositoryListByUserOptions{
			Type:        "owner",
			ListOptions: gh.ListOptions{PerPage: 100, Page: page},
		})
	}

	var refs []driven.RepositoryRef
	page := 0
	for {
		select {
		case <-ctx.Done():
			return refs, ctx.Err()
		default:
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		repos, resp, err := list(page)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(err, "list repos of "+author)
		}

		for _, r := range repos {
			if r.GetDisabled() {
				continue
			}
			refs = append(refs, driven.RepositoryRef{
				Author: r.GetOwner().GetLogin(),
				Name:   r.GetName(),
				Fork:   r.GetFork(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return refs, nil
}

// Readme returns the decoded README of a repository.
func (c *Client) Readme(ctx context.Context, author, name string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	content, resp, err := c.gh.Repositories.GetReadme(ctx, author, name, nil)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%s/%s: %w", author, name, ErrNoReadme)
		}
		return "", c.wrapError(err, "get readme "+author+"/"+name)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode readme %s/%s: %w", author, name, err)
	}
	return decoded, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateLimitErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w", operation, &RateLimitError{
			ResetAt:   c.rateLimiter.ResetTime(),
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		})
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		if limited := c.rateLimiter.CheckRateLimit(ghErr.Response); limited != nil {
			return fmt.Errorf("%s: %w", operation, limited)
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
