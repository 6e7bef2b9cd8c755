package domain

import (
	"fmt"
	"time"
)

// CacheBackend selects the Storage implementation behind the resolver cache.
type CacheBackend string

// Available cache backends.
const (
	// CacheBackendFile keeps one file per cached path under the cache directory.
	CacheBackendFile CacheBackend = "file"

	// CacheBackendSQLite keeps every cached path in one SQLite database.
	CacheBackendSQLite CacheBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	return b == CacheBackendFile || b == CacheBackendSQLite
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// PathSettings locates on-disk state.
type PathSettings struct {
	// Cache holds list snapshots and resolver records.
	Cache string

	// Builds holds the current and cached builds.
	Builds string
}

// CacheSettings tunes the resolver cache.
type CacheSettings struct {
	Backend CacheBackend

	// MaxAge expires cached records; zero never expires.
	MaxAge time.Duration
}

// Settings holds all application settings.
type Settings struct {
	GithubToken string
	Paths       PathSettings
	Cache       CacheSettings

	// ResolveConcurrency is the number of entries resolved at once.
	ResolveConcurrency int

	// HTTPTimeout bounds every outgoing HTTP request.
	HTTPTimeout time.Duration

	// Collections maps a collection name to the list ids it groups.
	Collections map[string][]string
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Paths: PathSettings{
			Cache:  ".curator/cache",
			Builds: ".curator/builds",
		},
		Cache: CacheSettings{
			Backend: CacheBackendFile,
		},
		ResolveConcurrency: 1,
		HTTPTimeout:        30 * time.Second,
		Collections:        map[string][]string{},
	}
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	if !s.Cache.Backend.IsValid() {
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidInput, s.Cache.Backend)
	}
	if s.Paths.Cache == "" || s.Paths.Builds == "" {
		return fmt.Errorf("%w: cache and builds paths are required", ErrInvalidInput)
	}
	if s.ResolveConcurrency < 1 {
		return fmt.Errorf("%w: resolve concurrency must be positive", ErrInvalidInput)
	}
	if s.Cache.MaxAge < 0 || s.HTTPTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidInput)
	}
	return nil
}
