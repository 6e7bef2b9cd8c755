package sqlite

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, "a/b.json", []byte("1")))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	data, err := second.Read(ctx, "a/b.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), data)
}

func TestStore_ReadWrite(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Read(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Write(ctx, "/lists/a.json", []byte("first")))
	require.NoError(t, store.Write(ctx, "lists/a.json", []byte("second")))

	data, err := store.Read(ctx, "lists//a.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_WriteEmpty(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "empty", nil))

	data, err := store.Read(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestStore_Exists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Write(ctx, "current/list/a.json", []byte("{}")))

	for _, p := range []string{"", "current", "current/list", "current/list/a.json"} {
		ok, err := store.Exists(ctx, p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}
	for _, p := range []string{"curr", "current/lis", "cached"} {
		ok, err := store.Exists(ctx, p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}
}

func TestStore_Mirror(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "current/build.json", []byte("b")))
	require.NoError(t, store.Write(ctx, "current/list/a.json", []byte("a")))
	require.NoError(t, store.Write(ctx, "currently", []byte("other")))
	require.NoError(t, store.Write(ctx, "cached/stale.json", []byte("old")))

	require.NoError(t, store.Mirror(ctx, "current", "cached"))

	data, err := store.Read(ctx, "cached/list/a.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	_, err = store.Read(ctx, "cached/stale.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := store.Exists(ctx, "cachedly")
	require.NoError(t, err)
	assert.False(t, ok)

	// the source is untouched
	data, err = store.Read(ctx, "current/build.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
}

func TestStore_MirrorOntoItself(t *testing.T) {
	store := setupTestStore(t)

	err := store.Mirror(context.Background(), "current", "/current/")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Remove(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"objects/ab/cd/1", "objects/ab/ef/2", "objectsx", "lists/a.json"} {
		require.NoError(t, store.Write(ctx, p, []byte("x")))
	}

	require.NoError(t, store.Remove(ctx, "objects"))
	require.NoError(t, store.Remove(ctx, "never/there"))

	var left []string
	for _, p := range []string{"objects/ab/cd/1", "objects/ab/ef/2", "objectsx", "lists/a.json"} {
		if ok, _ := store.Exists(ctx, p); ok {
			left = append(left, p)
		}
	}
	sort.Strings(left)
	assert.Equal(t, []string{"lists/a.json", "objectsx"}, left)

	require.NoError(t, store.Remove(ctx, ""))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Mkdir(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Mkdir(context.Background(), "anything"))
}
