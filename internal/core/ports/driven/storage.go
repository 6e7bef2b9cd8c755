package driven

import "context"

// Storage is a path-keyed byte store. Paths are slash-separated and relative
// to the store's root. Build directories and the resolver cache sit on it.
type Storage interface {
	// Read returns the bytes stored at path.
	// Returns an error wrapping domain.ErrNotFound if nothing is stored there.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores data at path, creating parents as needed.
	Write(ctx context.Context, path string, data []byte) error

	// Exists reports whether something is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Mirror replaces dst with a copy of everything under src.
	Mirror(ctx context.Context, src, dst string) error

	// Remove deletes path and everything under it. Missing paths are not an error.
	Remove(ctx context.Context, path string) error

	// Mkdir ensures path exists as a directory (a no-op for flat stores).
	Mkdir(ctx context.Context, path string) error
}
