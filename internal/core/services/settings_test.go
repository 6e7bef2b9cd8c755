package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/curator/internal/core/domain"
)

func newSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	service.getenv = func(key string) string { return env[key] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettingsService(nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newSettingsService(nil)
	_ = store.Set("github.token", "from-file")
	_ = store.Set("paths.cache", "c")
	_ = store.Set("paths.builds", "b")
	_ = store.Set("cache.backend", "sqlite")
	_ = store.Set("cache.max_age", "12h")
	_ = store.Set("resolve.concurrency", int64(8))
	_ = store.Set("http.timeout", "5s")
	_ = store.Set("collections.featured", []any{"awesome-go"})

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "from-file", settings.GithubToken)
	assert.Equal(t, domain.PathSettings{Cache: "c", Builds: "b"}, settings.Paths)
	assert.Equal(t, domain.CacheBackendSQLite, settings.Cache.Backend)
	assert.Equal(t, 12*time.Hour, settings.Cache.MaxAge)
	assert.Equal(t, 8, settings.ResolveConcurrency)
	assert.Equal(t, 5*time.Second, settings.HTTPTimeout)
	assert.Equal(t, map[string][]string{"featured": {"awesome-go"}}, settings.Collections)
}

func TestSettingsService_Get_EnvTokenWins(t *testing.T) {
	service, store := newSettingsService(map[string]string{EnvGithubToken: "from-env"})
	_ = store.Set("github.token", "from-file")

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.GithubToken)
}

func TestSettingsService_Get_Invalid(t *testing.T) {
	service, store := newSettingsService(nil)
	_ = store.Set("cache.backend", "redis")

	_, err := service.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Save(t *testing.T) {
	service, store := newSettingsService(nil)
	settings := domain.DefaultSettings()
	settings.Cache.MaxAge = time.Hour
	settings.Collections = map[string][]string{"featured": {"a", "b"}}

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "1h0m0s", store.GetString("cache.max_age"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("collections.featured"))
	_, ok := store.Get("github.token")
	assert.False(t, ok, "empty token is not written")

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_SaveRejectsInvalid(t *testing.T) {
	service, store := newSettingsService(nil)
	settings := domain.DefaultSettings()
	settings.ResolveConcurrency = 0

	assert.ErrorIs(t, service.Save(&settings), domain.ErrInvalidInput)
	assert.Empty(t, store.Keys(""))
}
