package avfaudio

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the zerolog logger used across the module. level is a
// zerolog level name ("debug", "info", ...); the empty string means info.
// console switches to the human-readable writer.
func NewLogger(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), err
		}
		lvl = parsed
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
