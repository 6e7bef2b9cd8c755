package driving

import "github.com/custodia-labs/curator/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the configured settings over the defaults.
	// Returns an error wrapping domain.ErrInvalidInput if they don't validate.
	Get() (*domain.Settings, error)

	// Save persists settings. The GitHub token is only written when set.
	Save(settings *domain.Settings) error
}
