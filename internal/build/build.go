package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// Ensure Build implements the interface.
var _ driven.Build = (*Build)(nil)

// Format is the encoding of structured build artifacts.
const Format = "json"

// manifestPath is the logical path of the build manifest (build.json).
const manifestPath = "build"

// Manifest is the persisted description of a build.
type Manifest struct {
	Number   string   `json:"number"`
	Date     string   `json:"date"`
	Format   string   `json:"format"`
	Complete bool     `json:"complete,omitempty"`
	Lists    []string `json:"lists,omitempty"`
}

// Build is a numbered output directory on a Storage.
type Build struct {
	storage  driven.Storage
	root     string
	manifest Manifest
}

// Create cleans root and initialises a new build there with the given number.
func Create(ctx context.Context, storage driven.Storage, root, number string, now time.Time) (*Build, error) {
	if number == "" {
		return nil, fmt.Errorf("%w: empty build number", domain.ErrInvalidBuild)
	}
	if err := storage.Remove(ctx, root); err != nil {
		return nil, fmt.Errorf("clean build %s: %w", root, err)
	}
	if err := storage.Mkdir(ctx, root); err != nil {
		return nil, fmt.Errorf("create build %s: %w", root, err)
	}

	b := &Build{
		storage: storage,
		root:    root,
		manifest: Manifest{
			Number: number,
			Date:   now.UTC().Format(time.RFC3339),
			Format: Format,
		},
	}
	if err := b.Write(ctx, manifestPath, b.manifest); err != nil {
		return nil, err
	}
	return b, nil
}

// Open reads an existing build. A build without a manifest or without a
// number fails with ErrInvalidBuild.
func Open(ctx context.Context, storage driven.Storage, root string) (*Build, error) {
	b := &Build{storage: storage, root: root}
	if err := b.Read(ctx, manifestPath, &b.manifest); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s has no manifest", domain.ErrInvalidBuild, root)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidBuild, root, err)
	}
	if b.manifest.Number == "" {
		return nil, fmt.Errorf("%w: %s has no build number", domain.ErrInvalidBuild, root)
	}
	return b, nil
}

// Number returns the build number.
func (b *Build) Number() string {
	return b.manifest.Number
}

// Date returns the creation date (RFC 3339).
func (b *Build) Date() string {
	return b.manifest.Date
}

// Manifest returns the build manifest.
func (b *Build) Manifest() Manifest {
	return b.manifest
}

// Lists returns the ids of the lists recorded by Complete.
func (b *Build) Lists() []string {
	return slices.Clone(b.manifest.Lists)
}

// IsComplete reports whether every list of the build was distributed.
func (b *Build) IsComplete() bool {
	return b.manifest.Complete
}

// Complete rewrites the manifest with the distributed list ids.
func (b *Build) Complete(ctx context.Context, lists []string) error {
	m := b.manifest
	m.Complete = true
	m.Lists = slices.Clone(lists)
	if err := b.Write(ctx, manifestPath, m); err != nil {
		return fmt.Errorf("complete build %s: %w", m.Number, err)
	}
	b.manifest = m
	return nil
}

// Root returns the storage path of the build.
func (b *Build) Root() string {
	return b.root
}

func (b *Build) rawPath(p string) string {
	return b.root + "/" + p
}

func (b *Build) jsonPath(p string) string {
	return b.rawPath(p) + ".json"
}

// Read decodes the JSON document at p.
func (b *Build) Read(ctx context.Context, p string, v any) error {
	data, err := b.storage.Read(ctx, b.jsonPath(p))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", b.jsonPath(p), err)
	}
	return nil
}

// Write encodes v as JSON at p.
func (b *Build) Write(ctx context.Context, p string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", b.jsonPath(p), err)
	}
	return b.storage.Write(ctx, b.jsonPath(p), data)
}

// Exists reports whether a JSON document is stored at p.
func (b *Build) Exists(ctx context.Context, p string) (bool, error) {
	return b.storage.Exists(ctx, b.jsonPath(p))
}

// ReadRaw returns the bytes at p.
func (b *Build) ReadRaw(ctx context.Context, p string) ([]byte, error) {
	return b.storage.Read(ctx, b.rawPath(p))
}

// WriteRaw stores data at p.
func (b *Build) WriteRaw(ctx context.Context, p string, data []byte) error {
	return b.storage.Write(ctx, b.rawPath(p), data)
}

// ExistsRaw reports whether bytes are stored at p.
func (b *Build) ExistsRaw(ctx context.Context, p string) (bool, error) {
	return b.storage.Exists(ctx, b.rawPath(p))
}
