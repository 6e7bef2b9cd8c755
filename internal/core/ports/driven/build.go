package driven

import "context"

// Build is one numbered output snapshot. Logical paths are relative to the
// build root; the structured variants append ".json" and encode values as JSON.
type Build interface {
	// Number returns the build number, YYYYMMDD.N.
	Number() string

	// Read decodes the JSON document at path into v.
	// Returns an error wrapping domain.ErrNotFound when absent.
	Read(ctx context.Context, path string, v any) error

	// Write encodes v as JSON at path.
	Write(ctx context.Context, path string, v any) error

	// Exists reports whether a JSON document is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// ReadRaw returns the bytes stored at path, with no suffix added.
	ReadRaw(ctx context.Context, path string) ([]byte, error)

	// WriteRaw stores bytes at path, with no suffix added.
	WriteRaw(ctx context.Context, path string, data []byte) error

	// ExistsRaw reports whether bytes are stored at path.
	ExistsRaw(ctx context.Context, path string) (bool, error)

	// Lists returns the ids of the lists a completed build holds.
	Lists() []string

	// Complete records the distributed list ids and marks the build usable
	// as the next cached build.
	Complete(ctx context.Context, lists []string) error
}

// BuildManager issues builds and guards them against concurrent writers.
type BuildManager interface {
	// Lock takes the single-writer lock. The returned function releases it.
	// Fails with domain.ErrBuildLocked when another run holds it.
	Lock(ctx context.Context) (unlock func() error, err error)

	// Create mirrors the current build into the cached slot when it was
	// completed, then creates a fresh, numbered current build. An incomplete
	// current build is discarded and the cached slot is left as it was.
	Create(ctx context.Context) (current Build, err error)

	// Cached opens the cached build. Returns nil and no error when there is none.
	Cached(ctx context.Context) (Build, error)
}
