package services

import (
	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/logger"
)

// LoggerStatus returns a status sink that forwards messages to the logger,
// prefixed with scope.
func LoggerStatus(scope string) domain.StatusFunc {
	return func(level domain.StatusLevel, msg string) {
		switch level {
		case domain.StatusCritical:
			logger.Critical("%s: %s", scope, msg)
		case domain.StatusError:
			logger.Error("%s: %s", scope, msg)
		case domain.StatusWarning:
			logger.Warn("%s: %s", scope, msg)
		default:
			logger.Info("%s: %s", scope, msg)
		}
	}
}
