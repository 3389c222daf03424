// Package config loads the driver-level StreamConfig and CLI defaults
// from YAML, the configuration surface the (out-of-core) command-line
// front-end binds its flags on top of.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andybalholm/vcdiff/delta"
)

// File is the on-disk shape of a vcdiff config file. Zero-valued fields
// are left unset so Apply can tell "not specified" from "explicitly
// zero" before falling back to delta.DefaultStreamConfig's values.
type File struct {
	Level            *int    `yaml:"level"`
	WindowSize       *int    `yaml:"window_size"`
	SourceWindowSize *int    `yaml:"source_window_size"`
	SourceOverlapMin *int    `yaml:"source_overlap_min"`
	IoptCapacity     *int    `yaml:"iopt_capacity"`
	Secondary        *string `yaml:"secondary"`
	Checksum         *bool   `yaml:"checksum"`
}

// secondaryIDs maps the config file's human-readable backend names to
// the stream secondary IDs in secondary/secondary.go. Kept here rather
// than imported from the secondary package to avoid a config->secondary
// dependency the CLI doesn't otherwise need.
var secondaryIDs = map[string]byte{
	"none":    0,
	"snappy":  32,
	"lz4":     33,
	"zstd":    34,
	"brotli":  35,
	"deflate": 36,
}

// Load reads and parses a YAML config file at path.
func Load(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, err
	}
	return f, nil
}

// Apply overlays f's explicitly-set fields onto base, returning the
// merged StreamConfig. Unset fields in f leave base's value untouched,
// so CLI flags can be layered on top of Apply's result afterward.
func (f File) Apply(base delta.StreamConfig) delta.StreamConfig {
	cfg := base
	if f.Level != nil {
		cfg.Level = *f.Level
	}
	if f.WindowSize != nil {
		cfg.WindowSize = *f.WindowSize
	}
	if f.SourceWindowSize != nil {
		cfg.SourceWindowSize = *f.SourceWindowSize
	}
	if f.SourceOverlapMin != nil {
		cfg.SourceOverlapMin = *f.SourceOverlapMin
	}
	if f.IoptCapacity != nil {
		cfg.IoptCapacity = *f.IoptCapacity
	}
	if f.Secondary != nil {
		if id, ok := secondaryIDs[*f.Secondary]; ok {
			cfg.Secondary = id
		}
	}
	if f.Checksum != nil {
		cfg.Checksum = *f.Checksum
	}
	return cfg
}

// SecondaryID resolves a human-readable backend name to its stream ID,
// for CLI flag parsing. ok is false for an unrecognized name.
func SecondaryID(name string) (id byte, ok bool) {
	id, ok = secondaryIDs[name]
	return id, ok
}
