package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// ListDeps are the collaborators an EntryList runs its chains against.
type ListDeps struct {
	// Processors is the source processor chain, in claim order.
	Processors []driven.SourceProcessor

	// Resolvers is the entry resolver chain, in claim order.
	Resolvers []driven.EntryResolver

	// Concurrency bounds parallel entry resolution. Values below 2 resolve
	// sequentially.
	Concurrency int

	// Status receives operator-facing messages. Defaults to the logger.
	Status domain.StatusFunc
}

// EntryList aggregates the sources of one list definition, turns them into
// categorised entries and enriches those entries.
type EntryList struct {
	def  domain.ListDefinition
	tree *domain.CategoryTree
	deps ListDeps

	score      int
	categories []domain.Category
	entries    []*domain.Entry
	processed  bool
	resolved   bool

	statsMu sync.Mutex
	stats   domain.ListStats
}

// NewEntryList creates a list from a validated definition.
// Fails with ErrDuplicateCategory if the category tree is ambiguous.
func NewEntryList(def domain.ListDefinition, deps ListDeps) (*EntryList, error) {
	tree, err := domain.NewCategoryTree(def.Options.CategoryTree)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", def.ID, err)
	}
	if deps.Status == nil {
		deps.Status = LoggerStatus("list " + def.ID)
	}
	return &EntryList{
		def:  def,
		tree: tree,
		deps: deps,
	}, nil
}

// RestoreEntryList rebuilds a list from a snapshot taken by Snapshot.
func RestoreEntryList(snap domain.ListSnapshot, deps ListDeps) (*EntryList, error) {
	l, err := NewEntryList(snap.Definition, deps)
	if err != nil {
		return nil, err
	}
	l.score = snap.Score
	l.processed = snap.Processed
	l.resolved = snap.Resolved
	l.categories = snap.Categories
	l.entries = snap.Entries
	l.stats = snap.Stats
	return l, nil
}

// Snapshot returns the persistable state of the list.
func (l *EntryList) Snapshot() domain.ListSnapshot {
	return domain.ListSnapshot{
		Definition: l.def,
		Score:      l.score,
		Processed:  l.processed,
		Resolved:   l.resolved,
		Categories: l.Categories(),
		Entries:    l.entries,
		Stats:      l.Stats(),
	}
}

// ID returns the list id.
func (l *EntryList) ID() string { return l.def.ID }

// Name returns the list name.
func (l *EntryList) Name() string { return l.def.Name }

// Desc returns the list description.
func (l *EntryList) Desc() string { return l.def.Desc }

// Definition returns the definition the list was built from.
func (l *EntryList) Definition() domain.ListDefinition { return l.def }

// Score returns the list score set by distribution.
func (l *EntryList) Score() int { return l.score }

// SetScore stores the list score.
func (l *EntryList) SetScore(score int) { l.score = score }

// IsProcessed reports whether Process completed.
func (l *EntryList) IsProcessed() bool { return l.processed }

// IsResolved reports whether Resolve completed.
func (l *EntryList) IsResolved() bool { return l.resolved }

// Entries returns the flattened entries in category order.
func (l *EntryList) Entries() []*domain.Entry { return l.entries }

// Categories returns the categories ordered by id.
func (l *EntryList) Categories() []domain.Category {
	out := make([]domain.Category, len(l.categories))
	copy(out, l.categories)
	return out
}

// Stats returns the per-stage counters.
func (l *EntryList) Stats() domain.ListStats {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	return l.stats
}

// Process runs every source through the processor chain and organises the
// resulting entries into the category tree.
//
// A second call without force fails with ErrLogic. Sources no processor
// claims and sources whose processor fails are reported and skipped; an
// infinite processing loop aborts the whole call.
func (l *EntryList) Process(ctx context.Context, force bool) error {
	if l.processed && !force {
		return fmt.Errorf("%w: list %s is already processed", domain.ErrLogic, l.def.ID)
	}

	stats := domain.ListStats{SourcesTotal: len(l.def.Sources)}
	groups := domain.NewEntryGroups()

	for i, source := range l.def.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		produced, err := l.processSource(ctx, source)
		if err != nil {
			if errors.Is(err, domain.ErrLogic) || ctx.Err() != nil {
				return fmt.Errorf("list %s source #%d: %w", l.def.ID, i+1, err)
			}
			l.deps.Status(domain.StatusError, fmt.Sprintf("source #%d (%s) failed: %v", i+1, source.Type, err))
			continue
		}
		if produced == nil {
			continue
		}

		stats.SourcesProcessed++
		groups.Merge(produced)
	}

	l.organize(groups)
	stats.EntriesTotal = len(l.entries)

	l.statsMu.Lock()
	l.stats = stats
	l.statsMu.Unlock()

	l.processed = true
	l.resolved = false
	l.deps.Status(domain.StatusInfo, fmt.Sprintf("processed %d/%d sources into %d entries in %d categories",
		stats.SourcesProcessed, stats.SourcesTotal, len(l.entries), len(l.categories)))
	return nil
}

// processSource walks the chain for one source. Partial processing replaces
// the source and restarts the chain from the top. Returns nil groups and no
// error when no processor claims the source.
func (l *EntryList) processSource(ctx context.Context, source domain.Source) (*domain.EntryGroups, error) {
	current := source
	visited := map[string]bool{current.Fingerprint(): true}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		processor, action := l.claim(current)
		if processor == nil {
			l.deps.Status(domain.StatusWarning, fmt.Sprintf("no processor claims %s source, skipping", current.Type))
			return nil, nil
		}

		result, err := processor.Process(ctx, current, l.deps.Status)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}

		switch action {
		case domain.ActionProcessing:
			if result == nil || result.Source != nil {
				return nil, fmt.Errorf("%w: processor %s must return entries", domain.ErrUnexpectedValue, processor.Name())
			}
			if result.Entries == nil {
				return domain.NewEntryGroups(), nil
			}
			return result.Entries, nil

		case domain.ActionPartialProcessing:
			if result == nil || result.Source == nil || result.Entries != nil {
				return nil, fmt.Errorf("%w: processor %s must return a source", domain.ErrUnexpectedValue, processor.Name())
			}
			next := *result.Source
			if next.Equal(current) {
				return nil, fmt.Errorf("%w: processor %s returned its own %s source",
					domain.ErrInfiniteLoop, processor.Name(), current.Type)
			}
			fp := next.Fingerprint()
			if visited[fp] {
				return nil, fmt.Errorf("%w: processor %s returned an already visited %s source",
					domain.ErrInfiniteLoop, processor.Name(), next.Type)
			}
			visited[fp] = true
			current = next

		default:
			return nil, fmt.Errorf("%w: processor %s returned action %s",
				domain.ErrUnexpectedValue, processor.Name(), action)
		}
	}
}

// claim returns the first processor that does not skip source.
func (l *EntryList) claim(source domain.Source) (driven.SourceProcessor, domain.Action) {
	for _, p := range l.deps.Processors {
		if action := p.Action(source); action != domain.ActionSkip {
			return p, action
		}
	}
	return nil, domain.ActionSkip
}

type categoryKey struct {
	segment string
	parent  int
}

// organize assigns category ids in first-encounter order, stamps each entry
// with its ancestor ids and flattens the groups. An entry found under several
// labels is kept once and carries the union of their ancestors.
func (l *EntryList) organize(groups *domain.EntryGroups) {
	l.categories = nil
	l.entries = nil

	ids := make(map[categoryKey]int)
	byID := make(map[string]*domain.Entry)
	entryCats := make(map[string][]int)

	for _, group := range groups.Groups() {
		label := group.Category
		if label == "" {
			label = l.def.DefaultCategoryLabel()
		}

		var chain []int
		parent := 0
		for _, segment := range l.tree.Path(label) {
			key := categoryKey{segment: segment, parent: parent}
			id, ok := ids[key]
			if !ok {
				id = len(l.categories) + 1
				ids[key] = id
				l.categories = append(l.categories, domain.Category{
					ID:     id,
					Title:  l.def.CategoryTitle(segment),
					Parent: parent,
					Count:  make(map[string]int),
				})
			}
			chain = append(chain, id)
			parent = id
		}

		for _, entry := range group.Entries {
			if _, ok := byID[entry.ID()]; !ok {
				byID[entry.ID()] = entry
				l.entries = append(l.entries, entry)
			}
			for _, id := range chain {
				if containsInt(entryCats[entry.ID()], id) {
					continue
				}
				entryCats[entry.ID()] = append(entryCats[entry.ID()], id)
				l.categories[id-1].Count[entry.Type()]++
			}
		}
	}

	for _, entry := range l.entries {
		entry.Set(domain.KeyCategories, entryCats[entry.ID()])
	}
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Resolve enriches every entry through the resolver chain.
//
// Resolve before Process, or a second call without force, fails with
// ErrLogic. Per-entry failures are reported and the entry is left
// unresolved; the list is marked resolved once the pass completes.
func (l *EntryList) Resolve(ctx context.Context, force bool) error {
	if !l.processed {
		return fmt.Errorf("%w: list %s must be processed before it is resolved", domain.ErrLogic, l.def.ID)
	}
	if l.resolved && !force {
		return fmt.Errorf("%w: list %s is already resolved", domain.ErrLogic, l.def.ID)
	}

	l.statsMu.Lock()
	l.stats.EntriesResolved = 0
	l.statsMu.Unlock()

	if l.deps.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.deps.Concurrency)
		for _, entry := range l.entries {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				l.resolveEntry(gctx, entry)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for _, entry := range l.entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			l.resolveEntry(ctx, entry)
		}
	}

	l.resolved = true
	stats := l.Stats()
	l.deps.Status(domain.StatusInfo, fmt.Sprintf("resolved %d/%d entries", stats.EntriesResolved, len(l.entries)))
	return nil
}

func (l *EntryList) resolveEntry(ctx context.Context, entry *domain.Entry) {
	var resolver driven.EntryResolver
	for _, r := range l.deps.Resolvers {
		if r.Supports(entry) {
			resolver = r
			break
		}
	}
	if resolver == nil {
		l.deps.Status(domain.StatusWarning, fmt.Sprintf("no resolver supports %s", entry.ID()))
		return
	}

	if err := resolver.Resolve(ctx, entry, false); err != nil {
		l.deps.Status(domain.StatusError, err.Error())
		return
	}
	if !entry.IsResolved() {
		l.deps.Status(domain.StatusError, fmt.Sprintf("resolver %s left %s unresolved", resolver.Name(), entry.ID()))
		return
	}

	l.statsMu.Lock()
	l.stats.EntriesResolved++
	l.statsMu.Unlock()
}
