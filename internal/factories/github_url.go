package factories

import (
	"context"
	"net/url"
	"strings"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure the GitHub URL processors implement the interface.
var (
	_ driven.URLProcessor = (*GithubPagesProcessor)(nil)
	_ driven.URLProcessor = (*GithubNormalizeProcessor)(nil)
	_ driven.URLProcessor = (*GithubRepoProcessor)(nil)
)

const githubHost = "github.com"

// reservedOwners are first path segments on github.com that are not users.
var reservedOwners = map[string]bool{
	"about": true, "apps": true, "collections": true, "customer-stories": true,
	"enterprise": true, "events": true, "explore": true, "features": true,
	"join": true, "login": true, "marketplace": true, "orgs": true,
	"pricing": true, "readme": true, "search": true, "security": true,
	"settings": true, "site": true, "sponsors": true, "topics": true,
	"trending": true, "users": true,
}

// RegisterDefaultURLProcessors appends the built-in URL processors in their
// required order: pages and normalisation rewrite URLs before the repository
// processor claims them.
func RegisterDefaultURLProcessors(f *URLFactory) {
	f.Add(NewGithubPagesProcessor())
	f.Add(NewGithubNormalizeProcessor())
	f.Add(NewGithubRepoProcessor())
}

// GithubPagesProcessor rewrites <author>.github.io URLs to the repository
// that hosts the site.
type GithubPagesProcessor struct{}

// NewGithubPagesProcessor creates the processor.
func NewGithubPagesProcessor() *GithubPagesProcessor {
	return &GithubPagesProcessor{}
}

// Name returns the processor name.
func (p *GithubPagesProcessor) Name() string {
	return "github.pages"
}

// Action claims github.io URLs for partial processing.
func (p *GithubPagesProcessor) Action(raw string) domain.Action {
	if _, ok := pagesTarget(raw); ok {
		return domain.ActionPartialProcessing
	}
	return domain.ActionSkip
}

// Process returns the github.com URL of the pages repository.
func (p *GithubPagesProcessor) Process(_ context.Context, raw string) (*driven.URLResult, error) {
	target, ok := pagesTarget(raw)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	return &driven.URLResult{URLs: []string{target}}, nil
}

func pagesTarget(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	author, ok := strings.CutSuffix(host, ".github.io")
	if !ok || author == "" || strings.Contains(author, ".") {
		return "", false
	}
	segments := pathSegments(u.Path)
	if len(segments) > 0 {
		return "https://" + githubHost + "/" + author + "/" + segments[0], true
	}
	return "https://" + githubHost + "/" + author + "/" + host, true
}

// GithubNormalizeProcessor rewrites github.com URLs to their canonical
// https://github.com/<author>/<name> form.
type GithubNormalizeProcessor struct{}

// NewGithubNormalizeProcessor creates the processor.
func NewGithubNormalizeProcessor() *GithubNormalizeProcessor {
	return &GithubNormalizeProcessor{}
}

// Name returns the processor name.
func (p *GithubNormalizeProcessor) Name() string {
	return "github.normalize"
}

// Action claims github.com URLs that are not yet canonical.
func (p *GithubNormalizeProcessor) Action(raw string) domain.Action {
	canonical, ok := canonicalRepoURL(raw)
	if ok && canonical != raw {
		return domain.ActionPartialProcessing
	}
	return domain.ActionSkip
}

// Process returns the canonical URL.
func (p *GithubNormalizeProcessor) Process(_ context.Context, raw string) (*driven.URLResult, error) {
	canonical, ok := canonicalRepoURL(raw)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	return &driven.URLResult{URLs: []string{canonical}}, nil
}

// canonicalRepoURL returns https://github.com/<author>/<name> for any URL
// pointing into a repository on github.com.
func canonicalRepoURL(raw string) (string, bool) {
	author, name, ok := parseRepoURL(raw)
	if !ok {
		return "", false
	}
	return "https://" + githubHost + "/" + author + "/" + name, true
}

func parseRepoURL(raw string) (author, name string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", false
	}
	host := strings.ToLower(u.Hostname())
	if host != githubHost && host != "www."+githubHost {
		return "", "", false
	}
	segments := pathSegments(u.Path)
	if len(segments) < 2 || reservedOwners[strings.ToLower(segments[0])] {
		return "", "", false
	}
	name = strings.TrimSuffix(segments[1], ".git")
	if name == "" {
		return "", "", false
	}
	return segments[0], name, true
}

// GithubRepoProcessor turns canonical repository URLs into repo.github entries.
type GithubRepoProcessor struct{}

// NewGithubRepoProcessor creates the processor.
func NewGithubRepoProcessor() *GithubRepoProcessor {
	return &GithubRepoProcessor{}
}

// Name returns the processor name.
func (p *GithubRepoProcessor) Name() string {
	return "github.repo"
}

// Action claims canonical repository URLs.
func (p *GithubRepoProcessor) Action(raw string) domain.Action {
	canonical, ok := canonicalRepoURL(raw)
	if ok && canonical == raw {
		return domain.ActionProcessing
	}
	return domain.ActionSkip
}

// Process creates the entry.
func (p *GithubRepoProcessor) Process(_ context.Context, raw string) (*driven.URLResult, error) {
	author, name, ok := parseRepoURL(raw)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	return &driven.URLResult{Entries: []*domain.Entry{domain.NewRepoGithubEntry(author, name)}}, nil
}

func pathSegments(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
