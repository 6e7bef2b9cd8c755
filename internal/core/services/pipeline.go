package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/core/ports/driving"
	"github.com/custodia-labs/curator/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// PipelineConfig wires a Pipeline.
type PipelineConfig struct {
	Processors  []driven.SourceProcessor
	Resolvers   []driven.EntryResolver
	Concurrency int

	// Lists persists lists between stages.
	Lists *ListStore

	// Builds issues numbered builds.
	Builds driven.BuildManager

	// Collections maps collection ids to member list ids.
	Collections map[string][]string

	// Now is the distribution clock. Defaults to time.Now.
	Now func() time.Time

	// Status receives operator-facing messages. Defaults to the logger.
	Status domain.StatusFunc
}

// Pipeline runs list curation stages against persisted lists.
type Pipeline struct {
	cfg PipelineConfig
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) deps(listID string) ListDeps {
	status := p.cfg.Status
	if status == nil {
		status = LoggerStatus("list " + listID)
	}
	return ListDeps{
		Processors:  p.cfg.Processors,
		Resolvers:   p.cfg.Resolvers,
		Concurrency: p.cfg.Concurrency,
		Status:      status,
	}
}

func (p *Pipeline) status(level domain.StatusLevel, msg string) {
	if p.cfg.Status != nil {
		p.cfg.Status(level, msg)
		return
	}
	LoggerStatus("build")(level, msg)
}

// Fetch processes def. A list stored under the same id keeps its processed
// state, so refetching it fails with ErrLogic unless force is set.
func (p *Pipeline) Fetch(ctx context.Context, def domain.ListDefinition, force bool) (*domain.ListStats, error) {
	list, err := p.cfg.Lists.Load(ctx, def.ID, p.deps(def.ID))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		list, err = NewEntryList(def, p.deps(def.ID))
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		snap := list.Snapshot()
		snap.Definition = def
		if list, err = RestoreEntryList(snap, p.deps(def.ID)); err != nil {
			return nil, err
		}
	}

	logger.Section("Fetching " + def.ID)
	if err := list.Process(ctx, force); err != nil {
		return nil, err
	}
	if err := p.cfg.Lists.Save(ctx, list); err != nil {
		return nil, err
	}
	stats := list.Stats()
	return &stats, nil
}

// Resolve enriches the stored list listID.
func (p *Pipeline) Resolve(ctx context.Context, listID string, force bool) (*domain.ListStats, error) {
	list, err := p.cfg.Lists.Load(ctx, listID, p.deps(listID))
	if err != nil {
		return nil, err
	}

	logger.Section("Resolving " + listID)
	if err := list.Resolve(ctx, force); err != nil {
		return nil, err
	}
	if err := p.cfg.Lists.Save(ctx, list); err != nil {
		return nil, err
	}
	stats := list.Stats()
	return &stats, nil
}

// Build distributes the stored lists into a fresh build while holding the
// build lock. The build is marked complete only once every list, including
// those carried over from the cached build, is distributed.
func (p *Pipeline) Build(ctx context.Context, listIDs []string) (*domain.BuildReport, error) {
	lists := make([]*EntryList, 0, len(listIDs))
	for _, id := range listIDs {
		list, err := p.cfg.Lists.Load(ctx, id, p.deps(id))
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return p.build(ctx, lists)
}

// Run fetches, resolves and builds defs from scratch.
func (p *Pipeline) Run(ctx context.Context, defs []domain.ListDefinition) (*domain.BuildReport, error) {
	lists := make([]*EntryList, 0, len(defs))
	for _, def := range defs {
		list, err := NewEntryList(def, p.deps(def.ID))
		if err != nil {
			return nil, err
		}

		logger.Section("Fetching " + def.ID)
		if err := list.Process(ctx, false); err != nil {
			return nil, err
		}
		logger.Section("Resolving " + def.ID)
		if err := list.Resolve(ctx, false); err != nil {
			return nil, err
		}
		if err := p.cfg.Lists.Save(ctx, list); err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return p.build(ctx, lists)
}

func (p *Pipeline) build(ctx context.Context, lists []*EntryList) (report *domain.BuildReport, err error) {
	for _, list := range lists {
		if !list.IsResolved() {
			return nil, fmt.Errorf("%w: list %s must be resolved before it is built", domain.ErrLogic, list.ID())
		}
	}

	unlock, err := p.cfg.Builds.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("release build lock: %w", uerr)
		}
	}()

	current, err := p.cfg.Builds.Create(ctx)
	if err != nil {
		return nil, err
	}
	cached, err := p.cfg.Builds.Cached(ctx)
	if err != nil {
		return nil, err
	}

	carried, err := p.carryOver(ctx, cached, lists)
	if err != nil {
		return nil, err
	}

	logger.Section("Building " + current.Number())
	distributor := NewListDistributor(current, cached, DistributorConfig{
		Collections: p.cfg.Collections,
		Now:         p.cfg.Now,
		Status:      p.cfg.Status,
	})

	report = &domain.BuildReport{Number: current.Number()}
	ids := make([]string, 0, len(lists)+len(carried))
	all := append(slices.Clone(lists), carried...)
	for i, list := range all {
		dist, err := distributor.Distribute(ctx, list)
		if err != nil {
			return nil, fmt.Errorf("distribute %s: %w", list.ID(), err)
		}
		if err := p.cfg.Lists.Save(ctx, list); err != nil {
			return nil, err
		}
		ids = append(ids, list.ID())
		report.Lists = append(report.Lists, domain.ListReport{
			ID:          list.ID(),
			Name:        list.Name(),
			Stats:       list.Stats(),
			Score:       dist.Score,
			Distributed: dist.Distributed,
			Filtered:    dist.Filtered,
			Changed:     dist.Changed,
			Carried:     i >= len(lists),
		})
	}

	if err := current.Complete(ctx, ids); err != nil {
		return nil, err
	}
	return report, nil
}

// carryOver loads the lists of the cached build that are not being built,
// so the new build still publishes them. Lists no longer stored or no longer
// resolved are dropped with a warning.
func (p *Pipeline) carryOver(ctx context.Context, cached driven.Build, building []*EntryList) ([]*EntryList, error) {
	if cached == nil {
		return nil, nil
	}
	seen := make(map[string]bool, len(building))
	for _, list := range building {
		seen[list.ID()] = true
	}

	var carried []*EntryList
	for _, id := range cached.Lists() {
		if seen[id] {
			continue
		}
		seen[id] = true

		list, err := p.cfg.Lists.Load(ctx, id, p.deps(id))
		if errors.Is(err, domain.ErrNotFound) {
			p.status(domain.StatusWarning, fmt.Sprintf("list %s is no longer stored; dropping it from the build", id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("carry over %s: %w", id, err)
		}
		if !list.IsResolved() {
			p.status(domain.StatusWarning, fmt.Sprintf("list %s is not resolved; dropping it from the build", id))
			continue
		}
		logger.Debug("Carrying over list %s from build %s", id, cached.Number())
		carried = append(carried, list)
	}
	return carried, nil
}
