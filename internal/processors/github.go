package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure the GitHub processors implement the interface.
var (
	_ driven.SourceProcessor = (*GithubListProcessor)(nil)
	_ driven.SourceProcessor = (*GithubAuthorProcessor)(nil)
	_ driven.SourceProcessor = (*GithubReposProcessor)(nil)
)

// splitRepo parses "author/name".
func splitRepo(s string) (author, name string, ok bool) {
	author, name, ok = strings.Cut(strings.Trim(strings.TrimSpace(s), "/"), "/")
	if !ok || author == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return author, name, true
}

func repoDefinition(author, name string) domain.EntryDefinition {
	return domain.EntryDefinition{
		Type: domain.TypeRepoGithub,
		Data: map[string]any{
			domain.KeyAuthor: author,
			domain.KeyName:   name,
		},
	}
}

// GithubListProcessor reads the README of an awesome-list repository and
// hands it on as a markdown source.
type GithubListProcessor struct {
	readme driven.ReadmeFetcher
}

// NewGithubListProcessor creates the processor.
func NewGithubListProcessor(readme driven.ReadmeFetcher) *GithubListProcessor {
	return &GithubListProcessor{readme: readme}
}

// Name returns the processor name.
func (p *GithubListProcessor) Name() string {
	return "github.list"
}

// Action claims github.list sources.
func (p *GithubListProcessor) Action(source domain.Source) domain.Action {
	if source.Type == domain.SourceGithubList {
		return domain.ActionPartialProcessing
	}
	return domain.ActionSkip
}

// Process fetches the README.
func (p *GithubListProcessor) Process(
	ctx context.Context, source domain.Source, status domain.StatusFunc,
) (*driven.SourceResult, error) {
	ref, err := source.StringData()
	if err != nil {
		return nil, err
	}
	author, name, ok := splitRepo(ref)
	if !ok {
		return nil, fmt.Errorf("%w: github.list expects author/name, got %q", domain.ErrInvalidInput, ref)
	}

	body, err := p.readme.Readme(ctx, author, name)
	if err != nil {
		return nil, fmt.Errorf("readme %s/%s: %w", author, name, err)
	}
	status(domain.StatusInfo, fmt.Sprintf("fetched README of %s/%s", author, name))

	return &driven.SourceResult{Source: &domain.Source{
		Type:    domain.SourceMarkdown,
		Data:    body,
		Options: source.Options,
	}}, nil
}

// GithubAuthorProcessor expands a user or organisation into its repositories.
type GithubAuthorProcessor struct {
	lister driven.RepositoryLister
}

// NewGithubAuthorProcessor creates the processor.
func NewGithubAuthorProcessor(lister driven.RepositoryLister) *GithubAuthorProcessor {
	return &GithubAuthorProcessor{lister: lister}
}

// Name returns the processor name.
func (p *GithubAuthorProcessor) Name() string {
	return "github.author"
}

// Action claims github.author sources.
func (p *GithubAuthorProcessor) Action(source domain.Source) domain.Action {
	if source.Type == domain.SourceGithubAuthor {
		return domain.ActionPartialProcessing
	}
	return domain.ActionSkip
}

// Process lists the author's repositories. Forks are left out unless the
// includeAuthorForks option is set.
func (p *GithubAuthorProcessor) Process(
	ctx context.Context, source domain.Source, status domain.StatusFunc,
) (*driven.SourceResult, error) {
	author, err := source.StringData()
	if err != nil {
		return nil, err
	}
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, fmt.Errorf("%w: github.author expects an author name", domain.ErrInvalidInput)
	}

	repos, err := p.lister.ListRepositories(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("list repositories of %s: %w", author, err)
	}

	includeForks := source.BoolOption(domain.OptionIncludeAuthorForks)
	defs := make([]domain.EntryDefinition, 0, len(repos))
	for _, repo := range repos {
		if repo.Fork && !includeForks {
			continue
		}
		defs = append(defs, repoDefinition(repo.Author, repo.Name))
	}
	status(domain.StatusInfo, fmt.Sprintf("%s: %d of %d repositories", author, len(defs), len(repos)))

	return &driven.SourceResult{Source: &domain.Source{
		Type:    domain.SourceEntries,
		Data:    defs,
		Options: source.Options,
	}}, nil
}

// GithubReposProcessor turns an explicit "author/name" list into entry definitions.
type GithubReposProcessor struct{}

// NewGithubReposProcessor creates the processor.
func NewGithubReposProcessor() *GithubReposProcessor {
	return &GithubReposProcessor{}
}

// Name returns the processor name.
func (p *GithubReposProcessor) Name() string {
	return "github.repos"
}

// Action claims github.repos sources.
func (p *GithubReposProcessor) Action(source domain.Source) domain.Action {
	if source.Type == domain.SourceGithubRepos {
		return domain.ActionPartialProcessing
	}
	return domain.ActionSkip
}

// Process converts each reference. Malformed references are reported and skipped.
func (p *GithubReposProcessor) Process(
	_ context.Context, source domain.Source, status domain.StatusFunc,
) (*driven.SourceResult, error) {
	refs, err := source.StringListData()
	if err != nil {
		return nil, err
	}

	defs := make([]domain.EntryDefinition, 0, len(refs))
	for _, ref := range refs {
		author, name, ok := splitRepo(ref)
		if !ok {
			status(domain.StatusWarning, fmt.Sprintf("skipping malformed repository reference %q", ref))
			continue
		}
		defs = append(defs, repoDefinition(author, name))
	}

	return &driven.SourceResult{Source: &domain.Source{
		Type:    domain.SourceEntries,
		Data:    defs,
		Options: source.Options,
	}}, nil
}
