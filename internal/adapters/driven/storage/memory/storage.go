package memory

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure Storage implements the interface.
var _ driven.Storage = (*Storage)(nil)

// Storage is an in-memory implementation of driven.Storage.
// Directories are implicit: a path exists if it holds data or prefixes a key.
type Storage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{
		files: make(map[string][]byte),
	}
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// Read returns the bytes stored at p.
func (s *Storage) Read(_ context.Context, p string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[clean(p)]
	if !ok {
		return nil, &domain.StorageError{Op: "read", Path: p, Err: domain.ErrNotFound}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores a copy of data at p.
func (s *Storage) Write(_ context.Context, p string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.files[clean(p)] = stored
	return nil
}

// Exists reports whether p holds data or is a directory prefix.
func (s *Storage) Exists(_ context.Context, p string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := clean(p)
	if _, ok := s.files[key]; ok {
		return true, nil
	}
	return s.hasPrefix(key), nil
}

func (s *Storage) hasPrefix(dir string) bool {
	if dir == "" {
		return len(s.files) > 0
	}
	for k := range s.files {
		if strings.HasPrefix(k, dir+"/") {
			return true
		}
	}
	return false
}

// Mirror replaces dst with a copy of everything under src.
func (s *Storage) Mirror(_ context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := clean(src), clean(dst)
	if from == to {
		return fmt.Errorf("%w: mirror %s onto itself", domain.ErrInvalidInput, src)
	}
	s.removeLocked(to)

	for k, v := range s.files {
		if k == from {
			s.files[to] = append([]byte(nil), v...)
			continue
		}
		if rest, ok := strings.CutPrefix(k, from+"/"); ok {
			s.files[to+"/"+rest] = append([]byte(nil), v...)
		}
	}
	return nil
}

// Remove deletes p and everything under it.
func (s *Storage) Remove(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(clean(p))
	return nil
}

func (s *Storage) removeLocked(key string) {
	for k := range s.files {
		if k == key || key == "" || strings.HasPrefix(k, key+"/") {
			delete(s.files, k)
		}
	}
}

// Mkdir is a no-op: directories are implicit.
func (s *Storage) Mkdir(_ context.Context, _ string) error {
	return nil
}

// Keys returns every stored path, for tests and diagnostics.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	return keys
}
