package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/vcdiff/delta"
)

func TestApplyOverlaysOnlySetFields(t *testing.T) {
	base := delta.DefaultStreamConfig()
	level := 9
	f := File{Level: &level}
	got := f.Apply(base)
	if got.Level != 9 {
		t.Errorf("Level = %d, want 9", got.Level)
	}
	if got.WindowSize != base.WindowSize {
		t.Errorf("WindowSize changed unexpectedly: got %d, want %d", got.WindowSize, base.WindowSize)
	}
}

func TestApplySecondaryName(t *testing.T) {
	base := delta.DefaultStreamConfig()
	name := "zstd"
	f := File{Secondary: &name}
	got := f.Apply(base)
	if got.Secondary != 34 {
		t.Errorf("Secondary = %d, want 34", got.Secondary)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vcdiff.yaml")
	contents := "level: 3\nsecondary: lz4\nchecksum: false\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Level == nil || *f.Level != 3 {
		t.Errorf("Level = %v, want 3", f.Level)
	}
	if f.Secondary == nil || *f.Secondary != "lz4" {
		t.Errorf("Secondary = %v, want lz4", f.Secondary)
	}
	if f.Checksum == nil || *f.Checksum != false {
		t.Errorf("Checksum = %v, want false", f.Checksum)
	}
}

func TestSecondaryIDUnknown(t *testing.T) {
	if _, ok := SecondaryID("made-up"); ok {
		t.Errorf("expected ok=false for an unknown backend name")
	}
}
