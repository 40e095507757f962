// Package logging builds the zerolog loggers used by the carsim commands.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level. An empty name means warn;
// ok is false for names it does not know, which also map to warn.
func ParseLevel(name string) (level zerolog.Level, ok bool) {
	switch name {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "fatal":
		return zerolog.FatalLevel, true
	case "panic":
		return zerolog.PanicLevel, true
	case "off":
		return zerolog.Disabled, true
	default:
		return zerolog.WarnLevel, false
	}
}

// New returns a timestamped logger writing JSON lines to w. If pretty is set
// the output goes through a zerolog console writer instead.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	}

	lvl, ok := ParseLevel(level)
	log := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if !ok {
		log.Warn().Str("log_level", level).Msg("unknown log level, setting level to warn")
	}
	return log
}
