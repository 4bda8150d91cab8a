// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

// Config represents logger configuration
type Config struct {
	Level  string    // debug, info, warn, error
	Pretty bool      // human-readable console output instead of JSON
	Output io.Writer // defaults to os.Stdout
}

// Configure replaces the default logger
func Configure(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	var writer io.Writer = cfg.Output
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = defaultLogger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the configured logger
func Get() *zerolog.Logger {
	return &defaultLogger
}

func Debug() *zerolog.Event { return defaultLogger.Debug() }
func Info() *zerolog.Event  { return defaultLogger.Info() }
func Warn() *zerolog.Event  { return defaultLogger.Warn() }
func Error() *zerolog.Event { return defaultLogger.Error() }

// Fatal logs and then exits the process
func Fatal() *zerolog.Event { return defaultLogger.Fatal() }

func init() {
	Configure(Config{Level: "info", Pretty: true})
}
