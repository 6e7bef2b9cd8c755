package build

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/curator/internal/core/domain"
)

// fakeClock is a settable clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func TestCreate_WritesManifest(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	b, err := Create(ctx, store, "out", "20240305.0", now)
	require.NoError(t, err)
	assert.Equal(t, "20240305.0", b.Number())

	raw, err := store.Read(ctx, "out/build.json")
	require.NoError(t, err)
	var manifest Manifest
	require.NoError(t, json.Unmarshal(raw, &manifest))
	assert.Equal(t, Manifest{Number: "20240305.0", Date: "2024-03-05T10:00:00Z", Format: "json"}, manifest)
}

func TestCreate_CleansDirectory(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "out/stale.json", []byte("{}")))

	_, err := Create(ctx, store, "out", "20240305.0", time.Now())
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "out/stale.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreate_EmptyNumber(t *testing.T) {
	_, err := Create(context.Background(), memory.NewStorage(), "out", "", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidBuild)
}

func TestOpen(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()

	t.Run("missing manifest", func(t *testing.T) {
		_, err := Open(ctx, store, "nowhere")
		assert.ErrorIs(t, err, domain.ErrInvalidBuild)
	})

	t.Run("manifest without number", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "blank/build.json", []byte(`{"format":"json"}`)))
		_, err := Open(ctx, store, "blank")
		assert.ErrorIs(t, err, domain.ErrInvalidBuild)
	})

	t.Run("valid build", func(t *testing.T) {
		_, err := Create(ctx, store, "ok", "20240101.3", time.Now())
		require.NoError(t, err)

		b, err := Open(ctx, store, "ok")
		require.NoError(t, err)
		assert.Equal(t, "20240101.3", b.Number())
	})
}

func TestBuild_ReadWriteExists(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	b, err := Create(ctx, store, "out", "20240101.0", time.Now())
	require.NoError(t, err)

	require.NoError(t, b.Write(ctx, "list/go", map[string]any{"id": "go"}))
	ok, err := b.Exists(ctx, "list/go")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = b.ExistsRaw(ctx, "list/go")
	require.NoError(t, err)
	assert.False(t, ok, "structured artifacts carry a .json suffix")

	var got map[string]any
	require.NoError(t, b.Read(ctx, "list/go", &got))
	assert.Equal(t, "go", got["id"])

	require.NoError(t, b.WriteRaw(ctx, "objects/a/b/ab", []byte("raw")))
	data, err := b.ReadRaw(ctx, "objects/a/b/ab")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(data))

	err = b.Read(ctx, "missing", &got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManager_BuildNumbering(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(store, WithClock(clock.Now))

	first, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20240601.0", first.Number())

	second, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20240601.1", second.Number())

	clock.t = clock.t.Add(24 * time.Hour)
	third, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20240602.0", third.Number())

	raw, err := store.Read(ctx, BuildNumFile)
	require.NoError(t, err)
	assert.Equal(t, "20240602.0", string(raw))
}

func TestManager_MalformedBuildNumber(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Write(ctx, BuildNumFile, []byte("20240601.x")))

	_, err := NewManager(store, WithClock(clock.Now)).Create(ctx)

	assert.ErrorIs(t, err, domain.ErrInvalidBuild)
}

func TestManager_CachedMirror(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	m := NewManager(store)

	cached, err := m.Cached(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached, "no cached build before the first create")

	first, err := m.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, "list/go", map[string]string{"id": "go"}))
	require.NoError(t, first.Complete(ctx, []string{"go"}))

	second, err := m.Create(ctx)
	require.NoError(t, err)

	cached, err = m.Cached(ctx)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, first.Number(), cached.Number())
	assert.Equal(t, []string{"go"}, cached.Lists())

	ok, err := cached.Exists(ctx, "list/go")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Exists(ctx, "list/go")
	require.NoError(t, err)
	assert.False(t, ok, "the new current build starts empty")

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Number(), current.Number())
}

func TestBuild_Complete(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	b, err := Create(ctx, store, "out", "20240101.0", time.Unix(0, 0))
	require.NoError(t, err)
	assert.False(t, b.IsComplete())
	assert.Empty(t, b.Lists())

	lists := []string{"go", "rust"}
	require.NoError(t, b.Complete(ctx, lists))
	lists[0] = "changed"

	reopened, err := Open(ctx, store, "out")
	require.NoError(t, err)
	assert.True(t, reopened.IsComplete())
	assert.Equal(t, []string{"go", "rust"}, reopened.Lists())
	assert.Equal(t, "20240101.0", reopened.Number())
}

func TestManager_IncompleteBuildKeepsCached(t *testing.T) {
	store := memory.NewStorage()
	ctx := context.Background()
	m := NewManager(store)

	good, err := m.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, good.Write(ctx, "list/go", map[string]string{"id": "go"}))
	require.NoError(t, good.Complete(ctx, []string{"go"}))

	// Promoted to cached; this build then fails before completing.
	failed, err := m.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, failed.Write(ctx, "list/half", map[string]string{"id": "half"}))

	next, err := m.Create(ctx)
	require.NoError(t, err)

	cached, err := m.Cached(ctx)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, good.Number(), cached.Number())
	assert.Equal(t, []string{"go"}, cached.Lists())

	ok, err := cached.Exists(ctx, "list/half")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = next.Exists(ctx, "list/half")
	require.NoError(t, err)
	assert.False(t, ok, "the discarded build is cleaned")
}

func TestManager_Lock(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	m := NewManager(memory.NewStorage(), WithLockDir(dir))
	other := NewManager(memory.NewStorage(), WithLockDir(dir))

	unlock, err := m.Lock(ctx)
	require.NoError(t, err)

	_, err = other.Lock(ctx)
	assert.ErrorIs(t, err, domain.ErrBuildLocked)

	require.NoError(t, unlock())

	unlockOther, err := other.Lock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlockOther())
}

func TestManager_LockWithoutDir(t *testing.T) {
	unlock, err := NewManager(memory.NewStorage()).Lock(context.Background())
	require.NoError(t, err)
	assert.NoError(t, unlock())
}
