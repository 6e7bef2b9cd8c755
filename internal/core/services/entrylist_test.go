package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

func markdownLike(groups func() *domain.EntryGroups) *funcProcessor {
	return typeProcessor("groups", domain.SourceMarkdown, domain.ActionProcessing,
		func(domain.Source) (*driven.SourceResult, error) {
			return &driven.SourceResult{Entries: groups()}, nil
		})
}

func newList(t *testing.T, def domain.ListDefinition, deps ListDeps) *EntryList {
	t.Helper()
	if deps.Status == nil {
		deps.Status = domain.NopStatus
	}
	l, err := NewEntryList(def, deps)
	require.NoError(t, err)
	return l
}

func categoryTitles(cats []domain.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Title
	}
	return out
}

func TestEntryList_ProcessTwiceRequiresForce(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf("Tools", domain.NewRepoGithubEntry("a", "b"))
	})
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{proc}})
	ctx := context.Background()

	require.NoError(t, l.Process(ctx, false))
	first := l.Snapshot()

	err := l.Process(ctx, false)
	assert.ErrorIs(t, err, domain.ErrLogic)

	require.NoError(t, l.Process(ctx, true))
	second := l.Snapshot()
	assert.Equal(t, first.Categories, second.Categories)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, first.Entries[0].ID(), second.Entries[0].ID())
	assert.Equal(t, 2, proc.calls)
}

func TestEntryList_ForceProcessResetsResolved(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf("Tools", domain.NewRepoGithubEntry("a", "b"))
	})
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{
		Processors: []driven.SourceProcessor{proc},
		Resolvers:  []driven.EntryResolver{&mockResolver{}},
	})
	ctx := context.Background()

	require.NoError(t, l.Process(ctx, false))
	require.NoError(t, l.Resolve(ctx, false))
	require.True(t, l.IsResolved())

	require.NoError(t, l.Process(ctx, true))
	assert.False(t, l.IsResolved())
}

func TestEntryList_CategoryTree(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf(
			"Testing", domain.NewRepoGithubEntry("stretchr", "testify"),
			"CLI", domain.NewRepoGithubEntry("spf13", "cobra"),
			"Other", domain.NewRepoGithubEntry("x", "y"),
			"Testing", domain.NewRepoGithubEntry("onsi", "ginkgo"),
		)
	})
	def := domain.ListDefinition{
		ID:      "go",
		Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}},
		Options: domain.ListOptions{
			CategoryTree:  map[string]any{"Development": []any{"Testing", "CLI"}},
			CategoryNames: map[string]string{"CLI": "Command Line"},
		},
	}
	l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{proc}})

	require.NoError(t, l.Process(context.Background(), false))

	cats := l.Categories()
	require.Len(t, cats, 4)
	assert.Equal(t, []string{"Development", "Testing", "Command Line", "Other"}, categoryTitles(cats))
	assert.Equal(t, domain.Category{ID: 1, Title: "Development", Parent: 0, Count: map[string]int{"repo.github": 3}}, cats[0])
	assert.Equal(t, domain.Category{ID: 2, Title: "Testing", Parent: 1, Count: map[string]int{"repo.github": 2}}, cats[1])
	assert.Equal(t, domain.Category{ID: 3, Title: "Command Line", Parent: 1, Count: map[string]int{"repo.github": 1}}, cats[2])
	assert.Equal(t, domain.Category{ID: 4, Title: "Other", Parent: 0, Count: map[string]int{"repo.github": 1}}, cats[3])

	entries := l.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "repo.github:stretchr/testify", entries[0].ID())
	assert.Equal(t, "repo.github:onsi/ginkgo", entries[1].ID(), "entries are flattened group by group")
	cats0, err := entries[0].Get(domain.KeyCategories)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, cats0)
	cats3, err := entries[3].Get(domain.KeyCategories)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, cats3)
}

func TestEntryList_CategoryIDsStableAcrossRuns(t *testing.T) {
	groups := func() *domain.EntryGroups {
		return groupsOf(
			"B", domain.NewRepoGithubEntry("a", "1"),
			"A", domain.NewRepoGithubEntry("a", "2"),
			"C", domain.NewRepoGithubEntry("a", "3"),
		)
	}
	def := domain.ListDefinition{
		ID:      "go",
		Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}},
		Options: domain.ListOptions{CategoryTree: map[string]any{"A": []any{"C"}}},
	}

	first := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{markdownLike(groups)}})
	second := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{markdownLike(groups)}})
	require.NoError(t, first.Process(context.Background(), false))
	require.NoError(t, second.Process(context.Background(), false))

	assert.Equal(t, first.Categories(), second.Categories())
	assert.Equal(t, []string{"B", "A", "C"}, categoryTitles(first.Categories()))
	assert.Equal(t, 2, first.Categories()[2].Parent)
}

func TestEntryList_NestedMappingTree(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf(
			"Web", domain.NewRepoGithubEntry("a", "1"),
			"Web", domain.NewRepoGithubEntry("a", "2"),
		)
	})
	def := domain.ListDefinition{
		ID:      "go",
		Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}},
		Options: domain.ListOptions{CategoryTree: map[string]any{"Frameworks": map[string]any{"Web": nil}}},
	}
	l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{proc}})

	require.NoError(t, l.Process(context.Background(), false))

	cats := l.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, 2, cats[1].Count["repo.github"])
}

func TestEntryList_DefaultCategory(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf("", domain.NewRepoGithubEntry("a", "b"))
	})
	src := []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}

	l := newList(t, domain.ListDefinition{ID: "go", Sources: src}, ListDeps{Processors: []driven.SourceProcessor{proc}})
	require.NoError(t, l.Process(context.Background(), false))
	assert.Equal(t, []string{"Uncategorized"}, categoryTitles(l.Categories()))

	custom := newList(t, domain.ListDefinition{
		ID: "go", Sources: src, Options: domain.ListOptions{DefaultCategory: "Misc"},
	}, ListDeps{Processors: []driven.SourceProcessor{proc}})
	require.NoError(t, custom.Process(context.Background(), false))
	assert.Equal(t, []string{"Misc"}, categoryTitles(custom.Categories()))
}

func TestEntryList_EntryInSeveralCategories(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf(
			"A", domain.NewRepoGithubEntry("a", "b"),
			"B", domain.NewRepoGithubEntry("a", "b"),
			"B", domain.NewRepoGithubEntry("a", "b"),
		)
	})
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{proc}})

	require.NoError(t, l.Process(context.Background(), false))

	require.Len(t, l.Entries(), 1)
	cats, err := l.Entries()[0].Get(domain.KeyCategories)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, cats)
	assert.Equal(t, 1, l.Categories()[1].Count["repo.github"])
}

func TestEntryList_PartialProcessingRestartsChain(t *testing.T) {
	expand := typeProcessor("expand", domain.SourceGithubRepos, domain.ActionPartialProcessing,
		func(s domain.Source) (*driven.SourceResult, error) {
			return &driven.SourceResult{Source: &domain.Source{Type: domain.SourceMarkdown, Data: s.Data}}, nil
		})
	terminal := markdownLike(func() *domain.EntryGroups {
		return groupsOf("X", domain.NewRepoGithubEntry("a", "b"))
	})
	// terminal is registered first to prove the chain restarts from the top.
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceGithubRepos, Data: "x"}}}
	l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{terminal, expand}})

	require.NoError(t, l.Process(context.Background(), false))

	assert.Len(t, l.Entries(), 1)
	assert.Equal(t, 1, expand.calls)
	assert.Equal(t, 1, terminal.calls)
}

func TestEntryList_CycleGuard(t *testing.T) {
	t.Run("processor returns its own source", func(t *testing.T) {
		self := typeProcessor("self", domain.SourceMarkdownURL, domain.ActionPartialProcessing,
			func(s domain.Source) (*driven.SourceResult, error) {
				same := s
				return &driven.SourceResult{Source: &same}, nil
			})
		def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdownURL, Data: "u"}}}
		l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{self}})

		err := l.Process(context.Background(), false)

		assert.ErrorIs(t, err, domain.ErrInfiniteLoop)
		assert.ErrorIs(t, err, domain.ErrLogic)
		assert.False(t, l.IsProcessed())
	})

	t.Run("indirect cycle", func(t *testing.T) {
		toList := typeProcessor("a", domain.SourceMarkdownURL, domain.ActionPartialProcessing,
			func(domain.Source) (*driven.SourceResult, error) {
				return &driven.SourceResult{Source: &domain.Source{Type: domain.SourceGithubList, Data: "x/y"}}, nil
			})
		toURL := typeProcessor("b", domain.SourceGithubList, domain.ActionPartialProcessing,
			func(domain.Source) (*driven.SourceResult, error) {
				return &driven.SourceResult{Source: &domain.Source{Type: domain.SourceMarkdownURL, Data: "u"}}, nil
			})
		def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdownURL, Data: "u"}}}
		l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{toList, toURL}})

		err := l.Process(context.Background(), false)

		assert.ErrorIs(t, err, domain.ErrInfiniteLoop)
	})
}

func TestEntryList_UnclaimedAndFailingSourcesAreSkipped(t *testing.T) {
	good := markdownLike(func() *domain.EntryGroups {
		return groupsOf("A", domain.NewRepoGithubEntry("a", "b"))
	})
	failing := typeProcessor("failing", domain.SourceURLList, domain.ActionProcessing,
		func(domain.Source) (*driven.SourceResult, error) {
			return nil, errors.New("boom")
		})
	wrongShape := typeProcessor("wrong", domain.SourceEntries, domain.ActionProcessing,
		func(domain.Source) (*driven.SourceResult, error) {
			return &driven.SourceResult{Source: &domain.Source{Type: domain.SourceMarkdown}}, nil
		})
	status := &statusLog{}
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{
		{Type: domain.SourceGithubAuthor, Data: "nobody"},
		{Type: domain.SourceURLList, Data: []string{}},
		{Type: domain.SourceEntries, Data: []any{}},
		{Type: domain.SourceMarkdown, Data: "x"},
	}}
	l := newList(t, def, ListDeps{
		Processors: []driven.SourceProcessor{good, failing, wrongShape},
		Status:     status.record,
	})

	require.NoError(t, l.Process(context.Background(), false))

	assert.Len(t, l.Entries(), 1)
	assert.Equal(t, domain.ListStats{SourcesTotal: 4, SourcesProcessed: 1, EntriesTotal: 1}, l.Stats())
	assert.Equal(t, 1, status.count(domain.StatusWarning))
	assert.Equal(t, 2, status.count(domain.StatusError))
}

func TestEntryList_ProcessCancelled(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups { return groupsOf() })
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{Processors: []driven.SourceProcessor{proc}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Process(ctx, false)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntryList_ResolveLifecycle(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf("A", domain.NewRepoGithubEntry("a", "b"))
	})
	resolver := &mockResolver{}
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{
		Processors: []driven.SourceProcessor{proc},
		Resolvers:  []driven.EntryResolver{resolver},
	})
	ctx := context.Background()

	err := l.Resolve(ctx, false)
	assert.ErrorIs(t, err, domain.ErrLogic, "resolve before process")

	require.NoError(t, l.Process(ctx, false))
	require.NoError(t, l.Resolve(ctx, false))
	assert.True(t, l.IsResolved())

	err = l.Resolve(ctx, false)
	assert.ErrorIs(t, err, domain.ErrLogic, "resolve twice")

	require.NoError(t, l.Resolve(ctx, true))
	assert.Equal(t, 2, resolver.calls)
	assert.Equal(t, []bool{false, false}, resolver.forced)
}

func TestEntryList_ResolveFailuresAreNonFatal(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		g := groupsOf(
			"A", domain.NewRepoGithubEntry("ok", "1"),
			"A", domain.NewRepoGithubEntry("bad", "2"),
		)
		g.Add("A", domain.NewEntry("link.web", "https://example.com", nil))
		return g
	})
	resolver := &mockResolver{
		data: map[string]map[string]any{"repo.github:ok/1": {domain.KeyScoresAvg: 50}},
		fail: map[string]bool{"repo.github:bad/2": true},
	}
	status := &statusLog{}
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{
		Processors: []driven.SourceProcessor{proc},
		Resolvers:  []driven.EntryResolver{resolver},
		Status:     status.record,
	})
	ctx := context.Background()

	require.NoError(t, l.Process(ctx, false))
	require.NoError(t, l.Resolve(ctx, false))

	assert.True(t, l.IsResolved())
	entries := l.Entries()
	assert.True(t, entries[0].IsResolved())
	assert.False(t, entries[1].IsResolved())
	assert.False(t, entries[2].IsResolved())
	assert.Equal(t, 1, l.Stats().EntriesResolved)
	assert.Equal(t, 1, status.count(domain.StatusError))
	assert.Equal(t, 1, status.count(domain.StatusWarning), "no resolver supports link.web")
}

func TestEntryList_ResolverLeavesEntryUnresolved(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		return groupsOf("A", domain.NewRepoGithubEntry("a", "b"))
	})
	status := &statusLog{}
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{
		Processors: []driven.SourceProcessor{proc},
		Resolvers:  []driven.EntryResolver{&mockResolver{noMark: true}},
		Status:     status.record,
	})
	ctx := context.Background()

	require.NoError(t, l.Process(ctx, false))
	require.NoError(t, l.Resolve(ctx, false))

	assert.True(t, l.IsResolved())
	assert.Equal(t, 0, l.Stats().EntriesResolved)
	assert.Equal(t, 1, status.count(domain.StatusError))
}

func TestEntryList_ResolveConcurrently(t *testing.T) {
	proc := markdownLike(func() *domain.EntryGroups {
		g := domain.NewEntryGroups()
		for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
			g.Add("A", domain.NewRepoGithubEntry("x", name))
		}
		return g
	})
	resolver := &mockResolver{}
	def := domain.ListDefinition{ID: "go", Sources: []domain.Source{{Type: domain.SourceMarkdown, Data: "x"}}}
	l := newList(t, def, ListDeps{
		Processors:  []driven.SourceProcessor{proc},
		Resolvers:   []driven.EntryResolver{resolver},
		Concurrency: 3,
	})
	ctx := context.Background()

	require.NoError(t, l.Process(ctx, false))
	require.NoError(t, l.Resolve(ctx, false))

	assert.Equal(t, 6, resolver.calls)
	assert.Equal(t, 6, l.Stats().EntriesResolved)
	for _, e := range l.Entries() {
		assert.True(t, e.IsResolved(), e.ID())
	}
}

func TestNewEntryList_DuplicateCategoryTree(t *testing.T) {
	def := domain.ListDefinition{
		ID: "go",
		Options: domain.ListOptions{CategoryTree: map[string]any{
			"A": []any{"Shared"},
			"B": []any{"Shared"},
		}},
	}

	_, err := NewEntryList(def, ListDeps{})

	assert.ErrorIs(t, err, domain.ErrDuplicateCategory)
}
