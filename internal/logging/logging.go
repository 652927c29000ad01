// Package logging builds the zerolog loggers used by the CLI and services.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel keeps interactive sessions free of operation traces.
const DefaultLevel = "warn"

// ParseLevel maps a level name to a zerolog level. Supported values
// (case-insensitive): debug, info, warn, error, fatal, panic, disabled.
// An empty name selects DefaultLevel.
func ParseLevel(lvl string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "":
		return ParseLevel(DefaultLevel)
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	case "panic":
		return zerolog.PanicLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, &LevelError{Level: lvl}
	}
}

// LevelError reports an unrecognized level name.
type LevelError struct {
	Level string
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("unknown log level %q (valid: debug, info, warn, error, fatal, panic, disabled)", e.Level)
}

// New returns a human-readable console logger writing to w at the given level.
func New(w io.Writer, lvl string) (zerolog.Logger, error) {
	level, err := ParseLevel(lvl)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
