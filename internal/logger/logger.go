package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// SetupLogging applies process-wide zerolog settings. Call once at startup.
func SetupLogging() {
	zerolog.TimestampFieldName = "timestamp"
}

// NewLogger returns a component-tagged logger. The level is taken from the
// CALLBOT_LOGLEVEL environment variable and defaults to info.
func NewLogger(component string) zerolog.Logger {
	level := zerolog.InfoLevel
	if v, ok := os.LookupEnv("CALLBOT_LOGLEVEL"); ok {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).
		With().
		Str("component", component).
		Timestamp().
		Logger().
		Level(level)
}
