// Package driving defines the interfaces the CLI uses to run curation:
// Pipeline for the fetch, resolve and build stages and SettingsService for
// configuration.
//
// Implementations live in internal/core/services.
package driving
