package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// AuthenticatedLimit is the hourly quota with a token.
	AuthenticatedLimit = 5000

	// AnonymousLimit is the hourly quota without a token.
	AnonymousLimit = 60

	// MinBufferRatio is the share of the quota kept in reserve before the
	// limiter waits for the reset.
	MinBufferRatio = 0.02

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter implements dual-strategy rate limiting for the GitHub API.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int           // From API header
	limit     int           // From API header
	resetTime time.Time     // From API header
	bucket    *rate.Limiter // Proactive throttling
	minBuffer int           // Reserve requests
	now       func() time.Time
}

// NewRateLimiter creates a limiter for an hourly quota. The token bucket
// spreads the quota evenly over the hour with a small burst.
func NewRateLimiter(hourlyQuota int) *RateLimiter {
	perSecond := rate.Limit(float64(hourlyQuota) / time.Hour.Seconds())
	return &RateLimiter{
		remaining: hourlyQuota, // Assume full quota initially
		limit:     hourlyQuota,
		bucket:    rate.NewLimiter(perSecond, 10),
		minBuffer: int(float64(hourlyQuota) * MinBufferRatio),
		now:       time.Now,
	}
}

// NewUnlimitedRateLimiter never throttles proactively; header tracking still
// applies. Used against test servers and GitHub Enterprise instances.
func NewUnlimitedRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining: AuthenticatedLimit,
		limit:     AuthenticatedLimit,
		bucket:    rate.NewLimiter(rate.Inf, 1),
		now:       time.Now,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	now := r.now()
	r.mu.Unlock()

	if remaining < r.minBuffer && now.Before(resetTime) {
		timer := time.NewTimer(resetTime.Sub(now))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}
	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// CheckRateLimit returns a *RateLimitError if resp signals rate limiting
// (429, or 403 with no quota left).
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil {
		return nil
	}
	r.UpdateFromResponse(resp)

	r.mu.Lock()
	resetTime := r.resetTime
	remaining := r.remaining
	limit := r.limit
	now := r.now()
	r.mu.Unlock()

	if resp.StatusCode != http.StatusTooManyRequests &&
		(resp.StatusCode != http.StatusForbidden || remaining != 0) {
		return nil
	}

	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			resetTime = now.Add(time.Duration(seconds) * time.Second)
		}
	}
	return &RateLimitError{
		ResetAt:   resetTime,
		Remaining: remaining,
		Limit:     limit,
	}
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
