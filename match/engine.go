package match

import (
	"encoding/binary"
	"math/bits"
	"runtime"
)

// Match is one candidate found by the engine: either a source copy or a
// target-self copy, not yet committed to an instruction.
type Match struct {
	TargetPos int
	Len       int
	Addr      uint64 // combined address space: [0,sourceLen) source, [sourceLen,...) target-self
	IsRun     bool
	RunByte   byte
}

// Engine finds candidate matches for one stream. It can be reused across
// windows (mirroring the reference implementation's cross-window
// match_srcpos continuity) and indexes the source once via IndexSource.
// delta.Encoder builds a fresh Engine for each window.
type Engine struct {
	cfg    Config
	source []byte

	large     *LargeHash
	largeTab  *LargeTable
	small     *SmallTable

	matchSrcPos    uint64
	haveMatchSrcPos bool
}

// NewEngine returns an engine for a stream whose source is srcLen bytes
// (0 if there is no source) and whose windows are at most windowSize
// bytes.
func NewEngine(cfg Config, srcLen, windowSize int) *Engine {
	tableSize := 8
	if srcLen > 0 {
		tableSize = srcLen / max(cfg.LargeStep, 1)
		if tableSize < 8 {
			tableSize = 8
		}
	}
	return &Engine{
		cfg:      cfg,
		large:    NewLargeHash(cfg.LargeLook),
		largeTab: NewLargeTable(tableSize, cfg.MaxChain),
		small:    NewSmallTable(windowSize),
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// IndexSource populates the large hash table over source, indexing in
// reverse position order so that, on collision, the earliest occurrence
// of a given checksum is the one that survives (matching the reference
// implementation's indexing direction).
func (e *Engine) IndexSource(source []byte) {
	e.source = source
	look := e.cfg.LargeLook
	if len(source) < look {
		return
	}
	for pos := len(source) - look; pos >= 0; pos -= e.cfg.LargeStep {
		e.largeTab.Insert(e.large.Checksum(source[pos:]), uint64(pos))
	}
}

// NewWindow resets the per-window small table. The large table keeps the
// source index built by IndexSource. Call once before FindMatches for
// each window.
func (e *Engine) NewWindow() {
	e.small.Reset()
}

// FindMatches scans target, returning candidate Add gaps implicitly (the
// caller synthesizes ADD for anything not covered by a returned Match)
// and a list of non-overlapping Matches in increasing TargetPos order.
func (e *Engine) FindMatches(target []byte) []Match {
	var matches []Match
	pos := 0
	minMatch := e.cfg.MinMatch
	n := len(target)

	var largeBuf []uint64
	var smallBuf []int32

	// MATCH_TARGET continuity: try to keep the previous window's final
	// source match going into this one before any hash lookups happen.
	if e.haveMatchSrcPos && e.matchSrcPos+4 <= uint64(len(e.source)) && n >= 4 {
		l := commonPrefixLen(e.source[e.matchSrcPos:], target)
		if l >= e.cfg.MinMatch {
			matches = append(matches, Match{TargetPos: 0, Len: l, Addr: e.matchSrcPos})
			pos = l
		}
	}

	for pos < n {
		if pos+4 > n {
			break
		}

		var best Match
		bestLen := 0

		// RUN: a literal repeated-byte run.
		if runLen := runLength(target[pos:]); runLen >= e.cfg.RunThreshold {
			best = Match{TargetPos: pos, Len: runLen, IsRun: true, RunByte: target[pos]}
			bestLen = runLen
		}

		// LARGE: source matches, probed at every position unless a run
		// already reached LongEnough.
		if bestLen < e.cfg.LongEnough && pos+e.cfg.LargeLook <= n && len(e.source) >= e.cfg.LargeLook {
			cks := e.large.Checksum(target[pos:])
			largeBuf = e.largeTab.Lookup(largeBuf[:0], cks)
			for _, srcPos := range largeBuf {
				l := e.extendSource(srcPos, pos, target)
				if l > bestLen {
					best = Match{TargetPos: pos, Len: l, Addr: srcPos}
					bestLen = l
				}
			}
		}

		// SMALL: target-self matches via the chained small table.
		if bestLen < e.cfg.LongEnough {
			chainLen := e.cfg.SmallChain
			if e.cfg.MaxLazy > 0 && bestLen > 0 && bestLen < e.cfg.MaxLazy {
				chainLen = e.cfg.SmallLChain
			}
			cks := SmallChecksum(target[pos:])
			smallBuf = e.small.Chain(smallBuf[:0], cks, chainLen)
			for _, cand := range smallBuf {
				l := extendMatch(target, int(cand), pos) - pos
				if l > bestLen && !(l == 4 && pos-int(cand) >= 1<<14) {
					best = Match{TargetPos: pos, Len: l, Addr: uint64(len(e.source)) + uint64(cand)}
					bestLen = l
				}
			}
			e.small.Insert(cks, pos)
		}

		if bestLen < minMatch {
			minMatch--
			if minMatch < e.cfg.MinMatch {
				minMatch = e.cfg.MinMatch
			}
			pos++
			continue
		}

		// Lazy matching: if this match is short and more target remains,
		// peek one byte ahead for something strictly longer before
		// committing.
		if e.cfg.MaxLazy > 0 && bestLen < e.cfg.MaxLazy && pos+bestLen+2 <= n {
			if next := e.peekLonger(target, pos+1, bestLen); next.Len > bestLen {
				pos++
				minMatch = bestLen
				continue
			}
		}

		matches = append(matches, best)
		if !best.IsRun && best.Addr < uint64(len(e.source)) {
			e.matchSrcPos = best.Addr + uint64(bestLen)
			e.haveMatchSrcPos = true
		}
		pos += bestLen
		minMatch = e.cfg.MinMatch
	}

	return matches
}

// peekLonger re-runs the SMALL/LARGE probes at pos without mutating
// engine state, used only to decide whether to defer a commit by one
// byte (lazy matching).
func (e *Engine) peekLonger(target []byte, pos, floor int) Match {
	if pos+4 > len(target) {
		return Match{}
	}
	best := Match{}
	if pos+e.cfg.LargeLook <= len(target) && len(e.source) >= e.cfg.LargeLook {
		cks := e.large.Checksum(target[pos:])
		var buf []uint64
		buf = e.largeTab.Lookup(buf, cks)
		for _, srcPos := range buf {
			l := e.extendSource(srcPos, pos, target)
			if l > best.Len {
				best = Match{TargetPos: pos, Len: l, Addr: srcPos}
			}
		}
	}
	cks := SmallChecksum(target[pos:])
	var sbuf []int32
	sbuf = e.small.Chain(sbuf, cks, e.cfg.SmallLChain)
	for _, cand := range sbuf {
		l := extendMatch(target, int(cand), pos) - pos
		if l > best.Len {
			best = Match{TargetPos: pos, Len: l}
		}
	}
	if best.Len <= floor {
		return Match{}
	}
	return best
}

// extendSource extends a source match forward from srcPos/targetPos and
// returns its length. It does not extend backward.
func (e *Engine) extendSource(srcPos uint64, targetPos int, target []byte) int {
	src := e.source[srcPos:]
	limit := len(src)
	if len(target)-targetPos < limit {
		limit = len(target) - targetPos
	}
	l := commonPrefixLen(src[:limit], target[targetPos:targetPos+limit])
	return l
}

// runLength returns the number of leading bytes in b equal to b[0].
func runLength(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := 1
	for n < len(b) && b[n] == b[0] {
		n++
	}
	return n
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// extendMatch returns the largest k such that src[i:i+k-j] == src[j:k],
// assuming 0 <= i < j <= len(src). This is the forward-extension routine
// shared by every match finder in the teacher codebase; ported here
// unchanged for source and target-self extension alike.
func extendMatch(src []byte, i, j int) int {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		for j+8 < len(src) {
			iBytes := binary.LittleEndian.Uint64(src[i:])
			jBytes := binary.LittleEndian.Uint64(src[j:])
			if iBytes != jBytes {
				return j + bits.TrailingZeros64(iBytes^jBytes)>>3
			}
			i, j = i+8, j+8
		}
	case "386", "arm":
		for j+4 < len(src) {
			iBytes := binary.LittleEndian.Uint32(src[i:])
			jBytes := binary.LittleEndian.Uint32(src[j:])
			if iBytes != jBytes {
				return j + bits.TrailingZeros32(iBytes^jBytes)>>3
			}
			i, j = i+4, j+4
		}
	}
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}
