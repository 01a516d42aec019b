package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the process-wide logger. Output is plain JSON so log shippers
// can pick it up; LOG_LEVEL overrides the default info level.
func New() zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
