package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvGithubToken overrides the configured GitHub token.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvGithubToken = "GITHUB_TOKEN"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyGithubToken        = "github.token"
	keyPathCache          = "paths.cache"
	keyPathBuilds         = "paths.builds"
	keyCacheBackend       = "cache.backend"
	keyCacheMaxAge        = "cache.max_age"
	keyResolveConcurrency = "resolve.concurrency"
	keyHTTPTimeout        = "http.timeout"
	prefixCollections     = "collections"
)

// SettingsService reads and writes application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		GithubToken: s.configStore.GetString(keyGithubToken),
		Paths: domain.PathSettings{
			Cache:  s.getString(keyPathCache, defaults.Paths.Cache),
			Builds: s.getString(keyPathBuilds, defaults.Paths.Builds),
		},
		Cache: domain.CacheSettings{
			Backend: domain.CacheBackend(s.getString(keyCacheBackend, defaults.Cache.Backend.String())),
			MaxAge:  s.getDuration(keyCacheMaxAge, defaults.Cache.MaxAge),
		},
		ResolveConcurrency: s.getInt(keyResolveConcurrency, defaults.ResolveConcurrency),
		HTTPTimeout:        s.getDuration(keyHTTPTimeout, defaults.HTTPTimeout),
		Collections:        s.collections(),
	}

	if token := s.getenv(EnvGithubToken); token != "" {
		settings.GithubToken = token
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings in %s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyPathCache, settings.Paths.Cache},
		{keyPathBuilds, settings.Paths.Builds},
		{keyCacheBackend, settings.Cache.Backend.String()},
		{keyCacheMaxAge, durationString(settings.Cache.MaxAge)},
		{keyResolveConcurrency, settings.ResolveConcurrency},
		{keyHTTPTimeout, durationString(settings.HTTPTimeout)},
	}
	if settings.GithubToken != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyGithubToken, settings.GithubToken})
	}
	for name, ids := range settings.Collections {
		values = append(values, struct {
			key   string
			value any
		}{prefixCollections + "." + name, ids})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if s.configStore.GetString(key) == "" {
		return defaultVal
	}
	return s.configStore.GetDuration(key)
}

// collections reads every collections.<name> list.
func (s *SettingsService) collections() map[string][]string {
	out := map[string][]string{}
	for _, name := range s.configStore.Keys(prefixCollections) {
		if strings.Contains(name, ".") {
			continue
		}
		out[name] = s.configStore.GetStringSlice(prefixCollections + "." + name)
	}
	return out
}

func durationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}
