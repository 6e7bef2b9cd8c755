// Package file provides a driven.Storage over a directory tree.
//
// Writes go to a uniquely named temporary file that is renamed into place,
// so readers never observe a partial artifact.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure Storage implements the interface.
var _ driven.Storage = (*Storage)(nil)

// Storage stores each path as a file below root.
type Storage struct {
	root string
}

// NewStorage creates root if needed and returns a storage over it.
func NewStorage(root string) (*Storage, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("creating storage root %s: %w", root, err)
	}
	return &Storage{root: root}, nil
}

// Root returns the storage directory.
func (s *Storage) Root() string {
	return s.root
}

// abs maps a slash path onto the filesystem, never escaping root.
func (s *Storage) abs(p string) string {
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

// Read returns the contents of the file at p.
func (s *Storage) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.abs(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.StorageError{Op: "read", Path: p, Err: domain.ErrNotFound}
		}
		return nil, &domain.StorageError{Op: "read", Path: p, Err: err}
	}
	return data, nil
}

// Write atomically replaces the file at p.
func (s *Storage) Write(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.abs(p)
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return &domain.StorageError{Op: "write", Path: p, Err: err}
	}

	tmp := filepath.Join(filepath.Dir(target), ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return &domain.StorageError{Op: "write", Path: p, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return &domain.StorageError{Op: "write", Path: p, Err: err}
	}
	return nil
}

// Exists reports whether a file or directory exists at p.
func (s *Storage) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.abs(p))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &domain.StorageError{Op: "exists", Path: p, Err: err}
}

// Mirror replaces dst with a recursive copy of src.
func (s *Storage) Mirror(ctx context.Context, src, dst string) error {
	from, to := s.abs(src), s.abs(dst)
	if from == to {
		return fmt.Errorf("%w: mirror %s onto itself", domain.ErrInvalidInput, src)
	}
	if err := os.RemoveAll(to); err != nil {
		return &domain.StorageError{Op: "mirror", Path: dst, Err: err}
	}

	err := filepath.WalkDir(from, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(from, p)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0750)
		}
		return copyFile(p, target)
	})
	if err != nil {
		return &domain.StorageError{Op: "mirror", Path: src, Err: err}
	}
	return nil
}

// Remove deletes p recursively.
func (s *Storage) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(s.abs(p)); err != nil {
		return &domain.StorageError{Op: "remove", Path: p, Err: err}
	}
	return nil
}

// Mkdir creates p and its parents.
func (s *Storage) Mkdir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.abs(p), 0750); err != nil {
		return &domain.StorageError{Op: "mkdir", Path: p, Err: err}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
