// Package app wires configuration, adapters and services into a Pipeline.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/curator/internal/adapters/driven/config/file"
	"github.com/custodia-labs/curator/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/curator/internal/adapters/driven/markdown"
	filestorage "github.com/custodia-labs/curator/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/curator/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/curator/internal/build"
	"github.com/custodia-labs/curator/internal/connectors/github"
	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
	"github.com/custodia-labs/curator/internal/core/services"
	"github.com/custodia-labs/curator/internal/factories"
	"github.com/custodia-labs/curator/internal/logger"
	"github.com/custodia-labs/curator/internal/processors"
	"github.com/custodia-labs/curator/internal/resolvers"
)

// App holds the wired pipeline and the resources it owns.
type App struct {
	Settings *domain.Settings
	Pipeline *services.Pipeline

	closers []func() error
}

// Options tune wiring beyond the configuration file.
type Options struct {
	// Status receives operator-facing messages; nil routes them to the logger.
	Status domain.StatusFunc

	// GithubBaseURL overrides the GitHub API root.
	GithubBaseURL string
}

// New loads configuration from configPath and wires the pipeline.
func New(ctx context.Context, configPath string, opts Options) (*App, error) {
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settings, err := services.NewSettingsService(store).Get()
	if err != nil {
		return nil, err
	}
	return NewFromSettings(ctx, settings, opts)
}

// NewFromSettings wires the pipeline from already loaded settings.
func NewFromSettings(ctx context.Context, settings *domain.Settings, opts Options) (*App, error) {
	a := &App{Settings: settings}

	cache, err := a.openCache(settings)
	if err != nil {
		return nil, err
	}
	builds, err := filestorage.NewStorage(settings.Paths.Builds)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	ghOpts := []github.Option{github.WithTimeout(settings.HTTPTimeout)}
	if opts.GithubBaseURL != "" {
		ghOpts = append(ghOpts, github.WithBaseURL(opts.GithubBaseURL))
	}
	client, err := github.NewClient(ctx, settings.GithubToken, ghOpts...)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	if settings.GithubToken == "" {
		logger.Warn("No GitHub token configured; using the anonymous rate limit")
	}

	types := factories.NewTypeFactory()
	factories.RegisterDefaults(types)
	urls := factories.NewURLFactory()
	factories.RegisterDefaultURLProcessors(urls)

	a.Pipeline = services.NewPipeline(services.PipelineConfig{
		Processors: processors.Defaults(processors.Dependencies{
			Parser:  markdown.NewParser(),
			Fetcher: fetcher.New(settings.HTTPTimeout),
			Lister:  client,
			Readme:  client,
			URLs:    urls,
			Types:   types,
		}),
		Resolvers:   resolvers.Defaults(client, cache, resolvers.WithMaxAge(settings.Cache.MaxAge)),
		Concurrency: settings.ResolveConcurrency,
		Lists:       services.NewListStore(cache),
		Builds:      build.NewManager(builds, build.WithLockDir(builds.Root())),
		Collections: settings.Collections,
		Status:      opts.Status,
	})

	logger.Debug("Wired pipeline: cache=%s (%s), builds=%s",
		settings.Paths.Cache, settings.Cache.Backend, settings.Paths.Builds)
	return a, nil
}

func (a *App) openCache(settings *domain.Settings) (driven.Storage, error) {
	switch settings.Cache.Backend {
	case domain.CacheBackendSQLite:
		store, err := sqlite.NewStore(settings.Paths.Cache)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		store, err := filestorage.NewStorage(settings.Paths.Cache)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		return store, nil
	}
}

// Close releases every resource the app opened.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
