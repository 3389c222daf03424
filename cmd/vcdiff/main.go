// Command vcdiff is the CLI front-end for the delta/vcdiff core. It is
// deliberately thin: flag parsing and file I/O live here, all
// algorithmic work happens in the library packages.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/vcdiff/config"
	"github.com/andybalholm/vcdiff/delta"
	"github.com/andybalholm/vcdiff/secondary"
	"github.com/andybalholm/vcdiff/vcdiff"
	"github.com/andybalholm/vcdiff/vcdlog"
)

// Exit codes per SPEC_FULL.md 6.
const (
	exitOK               = 0
	exitUsageOrIO        = 1
	exitInvalidDelta     = 2
	exitChecksumMismatch = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitUsageOrIO
	}

	switch args[0] {
	case "encode":
		return cmdEncode(args[1:])
	case "decode":
		return cmdDecode(args[1:])
	case "header", "headers":
		return cmdHeader(args[1:])
	case "delta", "recode", "merge", "config":
		fmt.Fprintf(os.Stderr, "vcdiff %s: not implemented; out of core scope (see SPEC_FULL.md section 1)\n", args[0])
		return exitUsageOrIO
	default:
		usage()
		return exitUsageOrIO
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vcdiff <encode|decode|header> [flags]")
}

type commonFlags struct {
	source           string
	stdout           bool
	force            bool
	noChecksum       bool
	checkOnly        bool
	secondaryName    string
	windowSize       int
	sourceWindowSize int
	level            int
	configPath       string
}

func bindCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.source, "source", "", "path to the source file")
	fs.BoolVar(&c.stdout, "stdout", false, "write output to stdout")
	fs.BoolVar(&c.force, "force", false, "overwrite an existing output file")
	fs.BoolVar(&c.noChecksum, "no-checksum", false, "disable Adler-32 verification on decode")
	fs.BoolVar(&c.checkOnly, "check-only", false, "decode and verify without writing output")
	fs.StringVar(&c.secondaryName, "secondary", "none", "secondary compression backend: none|snappy|lz4|zstd|brotli|deflate")
	fs.IntVar(&c.windowSize, "window-size", 0, "target bytes per window (0 = default)")
	fs.IntVar(&c.sourceWindowSize, "source-window-size", 0, "source bytes visible per window (0 = default)")
	fs.IntVar(&c.level, "level", 6, "compression level 0-9")
	fs.StringVar(&c.configPath, "config", "", "path to a YAML config file")
	return c
}

func (c *commonFlags) streamConfig() (delta.StreamConfig, error) {
	cfg := delta.DefaultStreamConfig()
	if c.configPath != "" {
		f, err := config.Load(c.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = f.Apply(cfg)
	}
	cfg.Level = c.level
	if c.windowSize > 0 {
		cfg.WindowSize = c.windowSize
	}
	if c.sourceWindowSize > 0 {
		cfg.SourceWindowSize = c.sourceWindowSize
	}
	cfg.Checksum = !c.noChecksum
	if c.secondaryName != "" && c.secondaryName != "none" {
		id, ok := config.SecondaryID(c.secondaryName)
		if !ok {
			return cfg, fmt.Errorf("unknown secondary backend %q", c.secondaryName)
		}
		cfg.Secondary = id
	}
	return cfg, nil
}

func readSource(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func cmdEncode(args []string) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	c := bindCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsageOrIO
	}
	positional := fs.Args()
	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: vcdiff encode [flags] <target> [output]")
		return exitUsageOrIO
	}

	source, err := readSource(c.source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff encode:", err)
		return exitUsageOrIO
	}
	target, err := os.ReadFile(positional[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff encode:", err)
		return exitUsageOrIO
	}

	cfg, err := c.streamConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff encode:", err)
		return exitUsageOrIO
	}

	enc, err := delta.NewEncoder(cfg, secondary.DefaultRegistry(), vcdlog.Nop())
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff encode:", err)
		return exitUsageOrIO
	}
	wire, err := enc.EncodeStream(source, target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff encode:", err)
		return exitUsageOrIO
	}

	return writeOutput(wire, positional, c)
}

func cmdDecode(args []string) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	c := bindCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsageOrIO
	}
	positional := fs.Args()
	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: vcdiff decode [flags] <delta> [output]")
		return exitUsageOrIO
	}

	source, err := readSource(c.source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff decode:", err)
		return exitUsageOrIO
	}
	wire, err := os.ReadFile(positional[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff decode:", err)
		return exitUsageOrIO
	}

	dec := delta.NewDecoder(secondary.DefaultRegistry(), vcdlog.Nop(), c.noChecksum)
	target, err := dec.DecodeStream(source, wire)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff decode:", err)
		if _, ok := err.(*vcdiff.ChecksumError); ok {
			return exitChecksumMismatch
		}
		return exitInvalidDelta
	}

	if c.checkOnly {
		return exitOK
	}
	return writeOutput(target, positional, c)
}

func cmdHeader(args []string) int {
	fs := flag.NewFlagSet("header", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return exitUsageOrIO
	}
	positional := fs.Args()
	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: vcdiff header <delta>")
		return exitUsageOrIO
	}
	data, err := os.ReadFile(positional[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff header:", err)
		return exitUsageOrIO
	}
	fh, n, err := vcdiff.ParseFileHeader(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff header:", err)
		return exitInvalidDelta
	}
	fmt.Printf("secondary: %v", fh.Secondary)
	if fh.Secondary {
		fmt.Printf(" (id=%d)", fh.SecondaryID)
	}
	fmt.Println()
	fmt.Printf("app_header: %d bytes\n", len(fh.AppHeader))

	rest := data[n:]
	for windowIndex := 0; len(rest) > 0; windowIndex++ {
		h, _, _, _, used, err := vcdiff.ParseWindow(rest)
		if err != nil {
			fmt.Fprintln(os.Stderr, "vcdiff header:", err)
			return exitInvalidDelta
		}
		fmt.Printf("window %d: target_len=%d has_source=%v has_checksum=%v\n",
			windowIndex, h.TargetLen, h.HasSource, h.HasChecksum)
		rest = rest[used:]
	}
	return exitOK
}

func writeOutput(data []byte, positional []string, c *commonFlags) int {
	if c.stdout || len(positional) < 2 {
		if _, err := io.Copy(os.Stdout, bytes.NewReader(data)); err != nil {
			fmt.Fprintln(os.Stderr, "vcdiff:", err)
			return exitUsageOrIO
		}
		return exitOK
	}

	out := positional[1]
	if !c.force {
		if _, err := os.Stat(out); err == nil {
			fmt.Fprintf(os.Stderr, "vcdiff: %s already exists; use --force to overwrite\n", out)
			return exitUsageOrIO
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "vcdiff:", err)
		return exitUsageOrIO
	}
	return exitOK
}
