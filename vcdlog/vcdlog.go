// Package vcdlog is a thin structured-logging wrapper around zerolog,
// used by the encoder/decoder drivers and the CLI. The core algorithm
// packages never import it directly; only the orchestration layer does,
// so the library stays silent unless a caller opts in.
package vcdlog

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger, defaulting to a no-op logger so a
// driver that never calls New() produces no output.
type Logger struct {
	zerolog.Logger
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return Logger{zerolog.Nop()}
}

// New returns a Logger writing JSON lines to w at the given level.
func New(w io.Writer, level zerolog.Level) Logger {
	return Logger{zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// WindowEmit logs one encoded window at Debug.
func (l Logger) WindowEmit(index int, targetLen, instCount int) {
	l.Debug().Int("window", index).Int("target_len", targetLen).Int("instructions", instCount).Msg("window_emit")
}

// WindowDecode logs one decoded window at Debug.
func (l Logger) WindowDecode(index int, targetLen int) {
	l.Debug().Int("window", index).Int("target_len", targetLen).Msg("window_decode")
}

// SecondarySelected logs the chosen secondary-compression backend at Info.
func (l Logger) SecondarySelected(id byte, section string) {
	l.Info().Uint8("secondary_id", id).Str("section", section).Msg("secondary_selected")
}

// ChecksumMismatch logs an Adler-32 verification failure at Warn.
func (l Logger) ChecksumMismatch(window int, expected, actual uint32) {
	l.Warn().Int("window", window).Uint32("expected", expected).Uint32("actual", actual).Msg("checksum_mismatch")
}

// Unsupported logs a rejected unsupported-feature condition at Error.
func (l Logger) Unsupported(feature string) {
	l.Error().Str("feature", feature).Msg("unsupported_feature")
}
