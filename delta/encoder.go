package delta

import (
	"golang.org/x/sync/errgroup"

	"github.com/andybalholm/vcdiff/iopt"
	"github.com/andybalholm/vcdiff/match"
	"github.com/andybalholm/vcdiff/secondary"
	"github.com/andybalholm/vcdiff/vcdiff"
	"github.com/andybalholm/vcdiff/vcdlog"
)

// Encoder turns (source, target) pairs into a VCDIFF delta stream,
// driving the match engine (G), instruction optimizer (H), window
// framer (I), and optional secondary dispatch (J) per window.
type Encoder struct {
	cfg       StreamConfig
	backend   secondary.Backend // nil when cfg.Secondary == 0
	log       vcdlog.Logger
}

// NewEncoder constructs an encoder for one stream. If cfg.Secondary is
// non-zero, backends must contain a matching secondary.Backend or
// NewEncoder returns an error.
func NewEncoder(cfg StreamConfig, backends secondary.Registry, log vcdlog.Logger) (*Encoder, error) {
	e := &Encoder{cfg: cfg, log: log}
	if cfg.Secondary != 0 {
		b, err := backends.Lookup(cfg.Secondary)
		if err != nil {
			return nil, err
		}
		e.backend = b
		log.SecondarySelected(cfg.Secondary, "stream")
	}
	return e, nil
}

// EncodeStream encodes target against source in full, returning the
// complete delta byte stream. It is a synchronous convenience entry
// point over the windowed core; large streams are still processed one
// bounded window at a time internally.
func (e *Encoder) EncodeStream(source, target []byte) ([]byte, error) {
	fh := vcdiff.FileHeader{
		Secondary:   e.cfg.Secondary != 0,
		SecondaryID: e.cfg.Secondary,
		AppHeader:   e.cfg.AppHeader,
	}
	out := fh.AppendTo(nil)

	windowSize := e.cfg.WindowSize
	if windowSize <= 0 {
		windowSize = len(target)
		if windowSize == 0 {
			windowSize = 1
		}
	}
	srcWindowSize := uint64(e.cfg.SourceWindowSize)
	if srcWindowSize == 0 {
		srcWindowSize = uint64(len(source))
	}
	policy := NewSourceWindowPolicy(uint64(len(source)), srcWindowSize, uint64(e.cfg.SourceOverlapMin))
	matchCfg := match.ConfigForLevel(e.cfg.Level)

	for pos, idx := 0, 0; pos < len(target); idx++ {
		end := pos + windowSize
		if end > len(target) {
			end = len(target)
		}
		chunk := target[pos:end]

		srcOff, srcLen := policy.Window()
		srcSlice := source[srcOff : srcOff+srcLen]

		// Level 0 is store-only: no matching, the whole chunk becomes ADD.
		var matches []match.Match
		if e.cfg.Level > 0 {
			eng := match.NewEngine(matchCfg, len(srcSlice), windowSize)
			eng.IndexSource(srcSlice)
			eng.NewWindow()
			matches = eng.FindMatches(chunk)
		}

		maxMatched, hasSourceMatch := uint64(0), false
		for _, m := range matches {
			if !m.IsRun && m.Addr < uint64(len(srcSlice)) {
				global := srcOff + m.Addr + uint64(m.Len)
				if global > maxMatched {
					maxMatched = global
				}
				hasSourceMatch = true
			}
		}

		instructions := iopt.Resolve(chunk, matches)

		acache := vcdiff.NewAddressCache(4, 3)
		we := vcdiff.NewWindowEncoder(acache, vcdiff.SourceWindow{Offset: srcOff, Len: srcLen})
		for _, in := range instructions {
			switch in.Type {
			case vcdiff.InstAdd:
				we.Add(in.Data())
			case vcdiff.InstRun:
				we.Run(in.Len, in.Byte)
			case vcdiff.InstCopy:
				we.Copy(in.Len, in.Addr)
			}
		}
		sections := we.Finish(chunk, e.cfg.Checksum)

		data, inst, addr, deltaInd, err := e.compressSections(sections)
		if err != nil {
			return nil, err
		}

		out = sections.Assemble(out, deltaInd, data, inst, addr)
		e.log.WindowEmit(idx, len(chunk), len(instructions))

		policy.Advance(srcOff, maxMatched, hasSourceMatch)
		pos = end
	}

	return out, nil
}

// EncodeString is a convenience wrapper for callers working with text.
func (e *Encoder) EncodeString(source, target string) ([]byte, error) {
	return e.EncodeStream([]byte(source), []byte(target))
}

// compressSections applies the active secondary backend to DATA, INST,
// and ADDR independently. The three sections of a window never depend
// on one another, so when a backend is configured they run concurrently
// (SPEC_FULL.md 5 "optional parallelism").
func (e *Encoder) compressSections(s vcdiff.WindowSections) (data, inst, addr []byte, deltaInd byte, err error) {
	data, inst, addr = s.Data, s.Inst, s.Addr
	if e.backend == nil {
		return data, inst, addr, 0, nil
	}

	var compressedData, compressedInst, compressedAddr bool
	var g errgroup.Group
	g.Go(func() error {
		var err error
		data, compressedData, err = secondary.CompressSection(e.backend, s.Data)
		return err
	})
	g.Go(func() error {
		var err error
		inst, compressedInst, err = secondary.CompressSection(e.backend, s.Inst)
		return err
	})
	g.Go(func() error {
		var err error
		addr, compressedAddr, err = secondary.CompressSection(e.backend, s.Addr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, 0, err
	}

	if compressedData {
		deltaInd |= vcdiff.DeltaDataComp
	}
	if compressedInst {
		deltaInd |= vcdiff.DeltaInstComp
	}
	if compressedAddr {
		deltaInd |= vcdiff.DeltaAddrComp
	}
	return data, inst, addr, deltaInd, nil
}
