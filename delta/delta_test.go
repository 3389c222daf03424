package delta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/andybalholm/vcdiff/secondary"
	"github.com/andybalholm/vcdiff/vcdlog"
)

func roundTrip(t *testing.T, cfg StreamConfig, source, target []byte) []byte {
	t.Helper()
	enc, err := NewEncoder(cfg, secondary.DefaultRegistry(), vcdlog.Nop())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	wire, err := enc.EncodeStream(source, target)
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	dec := NewDecoder(secondary.DefaultRegistry(), vcdlog.Nop(), false)
	got, err := dec.DecodeStream(source, wire)
	if err != nil {
		t.Fatalf("DecodeStream: %v", err)
	}
	if !bytes.Equal(got, target) {
		t.Fatalf("round trip mismatch:\n got  %q\n want %q", got, target)
	}
	return wire
}

func TestRoundTripNoSource(t *testing.T) {
	cfg := DefaultStreamConfig()
	cfg.Checksum = true
	roundTrip(t, cfg, nil, []byte("hello, this is a target with no source at all"))
}

func TestRoundTripEmptyTarget(t *testing.T) {
	cfg := DefaultStreamConfig()
	roundTrip(t, cfg, []byte("some source"), nil)
}

func TestRoundTripIdenticalSourceAndTarget(t *testing.T) {
	cfg := DefaultStreamConfig()
	payload := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20))
	wire := roundTrip(t, cfg, payload, payload)
	if len(wire) >= len(payload) {
		t.Errorf("identical source/target should compress well: wire=%d payload=%d", len(wire), len(payload))
	}
}

func TestRoundTripSimilarSourceAndTarget(t *testing.T) {
	cfg := DefaultStreamConfig()
	source := []byte("the quick brown fox jumps over the lazy dog, again and again and again")
	target := []byte("the quick brown fox leaps over the lazy dog, again and again and again and again")
	roundTrip(t, cfg, source, target)
}

func TestRoundTripMultipleWindows(t *testing.T) {
	cfg := DefaultStreamConfig()
	cfg.WindowSize = 64
	source := []byte(strings.Repeat("abcdefghij", 50))
	target := []byte(strings.Repeat("abcdefghij", 30) + "SOME NEW STUFF HERE" + strings.Repeat("abcdefghij", 30))
	roundTrip(t, cfg, source, target)
}

func TestRoundTripWithSecondaryCompression(t *testing.T) {
	cfg := DefaultStreamConfig()
	cfg.Secondary = secondary.IDZstd
	payload := []byte(strings.Repeat("compress me please, over and over. ", 40))
	roundTrip(t, cfg, nil, payload)
}

func TestRoundTripSlidingSourceWindow(t *testing.T) {
	cfg := DefaultStreamConfig()
	cfg.WindowSize = 32
	cfg.SourceWindowSize = 48
	cfg.SourceOverlapMin = 8

	source := make([]byte, 0, 600)
	for i := 0; i < 600; i++ {
		source = append(source, byte('A'+(i%26)))
	}
	target := append([]byte{}, source[100:200]...)
	target = append(target, source[400:500]...)

	roundTrip(t, cfg, source, target)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	dec := NewDecoder(secondary.DefaultRegistry(), vcdlog.Nop(), false)
	_, err := dec.DecodeStream(nil, []byte{0, 1, 2, 3, 4})
	if err == nil {
		t.Fatalf("expected an error for a malformed file header")
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	cfg := DefaultStreamConfig()
	cfg.Checksum = true
	enc, err := NewEncoder(cfg, secondary.DefaultRegistry(), vcdlog.Nop())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	wire, err := enc.EncodeStream(nil, []byte("some target bytes to corrupt"))
	if err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}
	wire[bytes.Index(wire, []byte("some target"))] ^= 0xff // corrupt the first data byte

	dec := NewDecoder(secondary.DefaultRegistry(), vcdlog.Nop(), false)
	if _, err := dec.DecodeStream(nil, wire); err == nil {
		t.Fatalf("expected a checksum mismatch error")
	}
}
