// Package logging provides structured logging for the catalog mirror using zerolog.
// Terminals get human-readable console output; everything else gets JSON lines.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("category", "gloves").Msg("Fetching category")
//
//	ctx := logging.WithCategory(ctx, "gloves")
//	logging.FromContext(ctx).Debug().Int("added", 3).Msg("Applied diff")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables read before any configuration file is loaded.
const (
	EnvLevel  = "CATALOGMIRROR_LOG_LEVEL"
	EnvFormat = "CATALOGMIRROR_LOG_FORMAT"
)

var defaultLogger = NewLoggerFromConfig(envConfig())

// envConfig derives the bootstrap logger from the environment. The CLI
// replaces it once the configuration has been loaded.
func envConfig() *Config {
	cfg := DefaultConfig()
	if level := os.Getenv(EnvLevel); level != "" {
		cfg.Level = level
	} else if os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if format := os.Getenv(EnvFormat); format != "" {
		cfg.Format = format
	}
	return cfg
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts an info event on the default logger.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}
