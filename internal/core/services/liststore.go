package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// ListStore persists lists between pipeline stages as lists/<id>.json.
type ListStore struct {
	storage driven.Storage
}

// NewListStore creates a store on top of storage.
func NewListStore(storage driven.Storage) *ListStore {
	return &ListStore{storage: storage}
}

func listPath(id string) string {
	return "lists/" + id + ".json"
}

// Save writes the list snapshot.
func (s *ListStore) Save(ctx context.Context, list *EntryList) error {
	data, err := json.MarshalIndent(list.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode list %s: %w", list.ID(), err)
	}
	if err := s.storage.Write(ctx, listPath(list.ID()), data); err != nil {
		return fmt.Errorf("save list %s: %w", list.ID(), err)
	}
	return nil
}

// Load reads a list snapshot and rebuilds the list with deps.
// Returns an error wrapping domain.ErrNotFound when the list was never saved.
func (s *ListStore) Load(ctx context.Context, id string, deps ListDeps) (*EntryList, error) {
	data, err := s.storage.Read(ctx, listPath(id))
	if err != nil {
		return nil, fmt.Errorf("load list %s: %w", id, err)
	}
	var snap domain.ListSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode list %s: %w", id, err)
	}
	return RestoreEntryList(snap, deps)
}
