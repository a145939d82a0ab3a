package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// LoggerConfig is the subset of configuration the logger needs.
type LoggerConfig interface {
	LoggingLevel() string
	LoggingFormat() string
}

// NewLogger builds the process logger from cfg and installs it as the slog
// default. Format "text" selects the text handler; anything else is JSON.
func NewLogger(cfg LoggerConfig) *slog.Logger {
	return sharedobs.NewLogger(cfg.LoggingLevel(), cfg.LoggingFormat())
}
