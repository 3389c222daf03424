// Package delta drives the match engine, instruction optimizer, window
// framer, and secondary dispatch into the encoder and decoder state
// machines: the top-level API this module exposes to a driver.
package delta

// StreamConfig is the driver-supplied option set for one encode or
// decode stream (SPEC_FULL.md 4.K/6 "Driver API").
type StreamConfig struct {
	Level            int  // 0-9, passed through to match.ConfigForLevel
	WindowSize       int  // target bytes per window
	SourceWindowSize int  // source bytes visible to one window's matches
	SourceOverlapMin int  // minimum overlap between consecutive source windows when sliding
	IoptCapacity     int  // currently advisory; the in-process iopt queue is unbounded
	Secondary        byte // 0 means "no secondary compression"; otherwise a secondary.* ID
	Checksum         bool // whether to compute and verify per-window Adler-32
	AppHeader        []byte
}

// DefaultStreamConfig returns the configuration a CLI would pick when
// the caller names no options explicitly.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Level:            6,
		WindowSize:       1 << 20,
		SourceWindowSize: 1 << 20,
		SourceOverlapMin: 4096,
		IoptCapacity:     1 << 16,
		Checksum:         true,
	}
}
