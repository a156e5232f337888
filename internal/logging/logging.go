// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds a logger writing to out at the given level and installs it as
// the global logger. format is "console" for human readable output or "json".
func Setup(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var logger zerolog.Logger
	switch format {
	case "json":
		logger = zerolog.New(out)
	case "console", "":
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		})
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	logger = logger.Level(lvl).With().Timestamp().Logger()
	log.Logger = logger
	return logger, nil
}

// ParseLevel accepts the usual level names, treating an empty string as info
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
