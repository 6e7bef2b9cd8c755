package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/logger"
)

// Ensure Manager implements the interface.
var _ driven.BuildManager = (*Manager)(nil)

// Storage layout under the builds root.
const (
	CurrentDir   = "current"
	CachedDir    = "cached"
	BuildNumFile = ".buildnum"
	numberLayout = "20060102"
	lockFileName = ".lock"
	manifestJSON = manifestPath + ".json"
)

// Manager issues numbered builds into the current slot and keeps the
// previous one in the cached slot.
type Manager struct {
	storage  driven.Storage
	lockPath string
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for numbering and manifests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLockDir enables the single-writer file lock at <dir>/.lock.
func WithLockDir(dir string) Option {
	return func(m *Manager) {
		m.lockPath = filepath.Join(dir, lockFileName)
	}
}

// NewManager creates a manager on storage rooted at the builds directory.
func NewManager(storage driven.Storage, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lock takes the build lock. Without a lock directory it is a no-op.
func (m *Manager) Lock(_ context.Context) (func() error, error) {
	if m.lockPath == "" {
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(m.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(m.lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", domain.ErrBuildLocked, m.lockPath)
	}
	logger.Debug("Acquired build lock %s", m.lockPath)
	return fl.Unlock, nil
}

// Create mirrors a completed current build into the cached slot, then
// creates a fresh current build with the next number.
func (m *Manager) Create(ctx context.Context) (driven.Build, error) {
	complete, err := m.currentComplete(ctx)
	if err != nil {
		return nil, err
	}
	if complete {
		if err := m.storage.Mirror(ctx, CurrentDir, CachedDir); err != nil {
			return nil, fmt.Errorf("mirror current build: %w", err)
		}
	}

	now := m.now()
	number, err := m.nextNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	b, err := Create(ctx, m.storage, CurrentDir, number, now)
	if err != nil {
		return nil, err
	}
	if err := m.storage.Write(ctx, BuildNumFile, []byte(number)); err != nil {
		return nil, fmt.Errorf("write build number: %w", err)
	}
	logger.Info("Created build %s", number)
	return b, nil
}

// Cached opens the cached build, or returns nil when there is none yet.
func (m *Manager) Cached(ctx context.Context) (driven.Build, error) {
	ok, err := m.storage.Exists(ctx, CachedDir+"/"+manifestJSON)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return Open(ctx, m.storage, CachedDir)
}

// currentComplete reports whether the current slot holds a completed build.
func (m *Manager) currentComplete(ctx context.Context) (bool, error) {
	ok, err := m.storage.Exists(ctx, CurrentDir+"/"+manifestJSON)
	if err != nil || !ok {
		return false, err
	}
	current, err := Open(ctx, m.storage, CurrentDir)
	if err != nil {
		logger.Warn("Discarding unreadable current build: %v", err)
		return false, nil
	}
	if !current.IsComplete() {
		logger.Warn("Discarding incomplete build %s; keeping the cached build", current.Number())
		return false, nil
	}
	return true, nil
}

// Current opens the current build.
func (m *Manager) Current(ctx context.Context) (*Build, error) {
	return Open(ctx, m.storage, CurrentDir)
}

// nextNumber returns YYYYMMDD.N where N counts builds issued on the same day.
func (m *Manager) nextNumber(ctx context.Context, now time.Time) (string, error) {
	day := now.Format(numberLayout)
	suffix := 0

	data, err := m.storage.Read(ctx, BuildNumFile)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return "", fmt.Errorf("read build number: %w", err)
	default:
		prevDay, prevN, ok := strings.Cut(strings.TrimSpace(string(data)), ".")
		if ok && prevDay == day {
			n, convErr := strconv.Atoi(prevN)
			if convErr != nil {
				return "", fmt.Errorf("%w: malformed build number %q", domain.ErrInvalidBuild, string(data))
			}
			suffix = n + 1
		}
	}

	return day + "." + strconv.Itoa(suffix), nil
}
