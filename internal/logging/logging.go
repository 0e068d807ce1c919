// Package logging builds the zerolog logger shared by the host and the
// plugin subsystem.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/backpack/internal/config"
)

// AppName is attached to every record as the "app" field.
const AppName = "backpack"

// ParseLevel maps a level name to a zerolog level. Unknown or empty
// names report false and InfoLevel.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

// VerbosityLevel maps a repeated -v flag count to a level name.
func VerbosityLevel(count int) string {
	switch {
	case count >= 2:
		return "trace"
	case count == 1:
		return "debug"
	default:
		return "info"
	}
}

// New returns a logger writing to w as configured by cfg.
// Quiet raises the level to warn unless it is already stricter.
func New(cfg config.Config, w io.Writer) zerolog.Logger {
	level, _ := ParseLevel(cfg.LogLevel)
	if cfg.Quiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}

	out := w
	if cfg.LogFormat != config.FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    cfg.NoColor,
			TimeFormat: time.TimeOnly,
		}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", AppName).
		Logger()
}
