package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// funcProcessor is a source processor driven by closures.
type funcProcessor struct {
	name    string
	action  func(domain.Source) domain.Action
	process func(domain.Source) (*driven.SourceResult, error)
	calls   int
}

func (p *funcProcessor) Name() string { return p.name }

func (p *funcProcessor) Action(s domain.Source) domain.Action { return p.action(s) }

func (p *funcProcessor) Process(_ context.Context, s domain.Source, _ domain.StatusFunc) (*driven.SourceResult, error) {
	p.calls++
	return p.process(s)
}

// typeProcessor claims one source type with a fixed action.
func typeProcessor(name string, typ domain.SourceType, action domain.Action,
	process func(domain.Source) (*driven.SourceResult, error),
) *funcProcessor {
	return &funcProcessor{
		name: name,
		action: func(s domain.Source) domain.Action {
			if s.Type == typ {
				return action
			}
			return domain.ActionSkip
		},
		process: process,
	}
}

// groupsOf builds entry groups from category/entry pairs.
func groupsOf(pairs ...any) *domain.EntryGroups {
	g := domain.NewEntryGroups()
	for i := 0; i+1 < len(pairs); i += 2 {
		g.Add(pairs[i].(string), pairs[i+1].(*domain.Entry))
	}
	return g
}

// mockResolver resolves entries by merging canned data.
type mockResolver struct {
	mu      sync.Mutex
	data    map[string]map[string]any
	fail    map[string]bool
	noMark  bool
	calls   int
	forced  []bool
	support func(*domain.Entry) bool
}

func (r *mockResolver) Name() string { return "mock" }

func (r *mockResolver) Supports(e *domain.Entry) bool {
	if r.support != nil {
		return r.support(e)
	}
	return e.Type() == domain.TypeRepoGithub
}

func (r *mockResolver) Resolve(_ context.Context, e *domain.Entry, force bool) error {
	r.mu.Lock()
	r.calls++
	r.forced = append(r.forced, force)
	r.mu.Unlock()

	if r.fail[e.ID()] {
		return &domain.EntryResolveError{EntryID: e.ID(), Err: errors.New("inspector down")}
	}
	if d, ok := r.data[e.ID()]; ok {
		e.Merge(d)
	}
	if !r.noMark {
		e.SetResolved(true)
	}
	return nil
}

// statusLog records status messages.
type statusLog struct {
	mu      sync.Mutex
	entries []string
	levels  []domain.StatusLevel
}

func (s *statusLog) record(level domain.StatusLevel, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, level)
	s.entries = append(s.entries, msg)
}

func (s *statusLog) count(level domain.StatusLevel) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.levels {
		if l == level {
			n++
		}
	}
	return n
}
