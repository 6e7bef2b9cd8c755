package resolvers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/logger"
)

// Ensure RepoGithubResolver implements the interface.
var _ driven.EntryResolver = (*RepoGithubResolver)(nil)

// cacheRecord is the stored form of one resolved repository.
type cacheRecord struct {
	ResolvedAt time.Time      `json:"resolved_at"`
	Data       map[string]any `json:"data"`
}

// RepoGithubResolver enriches repo.github entries from the repository
// inspector, caching every result by author and name.
type RepoGithubResolver struct {
	inspector driven.RepositoryInspector
	cache     driven.Storage
	maxAge    time.Duration
	now       func() time.Time
}

// Option configures a RepoGithubResolver.
type Option func(*RepoGithubResolver)

// WithMaxAge treats cached results older than d as misses. Zero never expires.
func WithMaxAge(d time.Duration) Option {
	return func(r *RepoGithubResolver) {
		r.maxAge = d
	}
}

// WithClock sets the clock used for cache ages.
func WithClock(now func() time.Time) Option {
	return func(r *RepoGithubResolver) {
		r.now = now
	}
}

// NewRepoGithubResolver creates the resolver.
func NewRepoGithubResolver(inspector driven.RepositoryInspector, cache driven.Storage, opts ...Option) *RepoGithubResolver {
	r := &RepoGithubResolver{
		inspector: inspector,
		cache:     cache,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the resolver name.
func (r *RepoGithubResolver) Name() string {
	return "repo.github"
}

// Supports reports whether entry is a GitHub repository.
func (r *RepoGithubResolver) Supports(entry *domain.Entry) bool {
	return entry.Type() == domain.TypeRepoGithub
}

// CachePath returns the cache location of a repository.
func CachePath(author, name string) string {
	return domain.TypeRepoGithub + "/" + author + "/" + name + ".json"
}

// Resolve fills in the entry from the cache, or from the inspector on a miss
// or when force is set. Failures are returned as *domain.EntryResolveError.
func (r *RepoGithubResolver) Resolve(ctx context.Context, entry *domain.Entry, force bool) error {
	if entry.IsResolved() && !force {
		return nil
	}

	author := entry.GetString(domain.KeyAuthor)
	name := entry.GetString(domain.KeyName)
	if author == "" || name == "" {
		return &domain.EntryResolveError{
			EntryID: entry.ID(),
			Err:     fmt.Errorf("%w: author and name are required", domain.ErrUndefinedKey),
		}
	}
	path := CachePath(author, name)

	if !force {
		if data, ok := r.readCache(ctx, path); ok {
			entry.Merge(data)
			entry.SetResolved(true)
			logger.Debug("Resolved %s from cache", entry.ID())
			return nil
		}
	}

	info, err := r.inspector.Inspect(ctx, author, name)
	if err != nil {
		return &domain.EntryResolveError{EntryID: entry.ID(), Err: fmt.Errorf("inspect %s/%s: %w", author, name, err)}
	}

	// The entry stays untouched unless the result is cached.
	data := infoData(info)
	if err := r.writeCache(ctx, path, data); err != nil {
		return &domain.EntryResolveError{EntryID: entry.ID(), Err: err}
	}
	entry.Merge(data)
	entry.SetResolved(true)
	logger.Debug("Resolved %s from inspector", entry.ID())
	return nil
}

func (r *RepoGithubResolver) readCache(ctx context.Context, path string) (map[string]any, bool) {
	raw, err := r.cache.Read(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Reading resolver cache %s: %v", path, err)
		}
		return nil, false
	}

	var rec cacheRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Data == nil {
		logger.Warn("Ignoring unreadable resolver cache %s", path)
		return nil, false
	}
	if r.maxAge > 0 && r.now().Sub(rec.ResolvedAt) > r.maxAge {
		return nil, false
	}
	return rec.Data, true
}

func (r *RepoGithubResolver) writeCache(ctx context.Context, path string, data map[string]any) error {
	raw, err := json.Marshal(cacheRecord{ResolvedAt: r.now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", path, err)
	}
	if err := r.cache.Write(ctx, path, raw); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	return nil
}

// infoData maps inspector output onto entry data keys.
func infoData(info *driven.RepositoryInfo) map[string]any {
	scores := make(map[string]int, len(info.Scores))
	for k, v := range info.Scores {
		scores[k] = v
	}

	pushed := ""
	if !info.PushedAt.IsZero() {
		pushed = info.PushedAt.UTC().Format(time.RFC3339)
	}

	return map[string]any{
		domain.KeyDescription: stripControl(info.Description),
		domain.KeyLanguage:    info.Language,
		domain.KeyLicense:     info.LicenseID,
		domain.KeyScoresAvg:   info.ScoresAvg,
		domain.KeyScores:      scores,
		domain.KeyPushedAt:    pushed,
		domain.KeyArchived:    info.Archived,
	}
}

// stripControl drops control characters and surrounding whitespace.
func stripControl(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s))
}
