// Package iopt resolves a stream of candidate matches into the
// non-overlapping instruction sequence that is actually emitted, filling
// any gaps between matches with literal ADD data.
//
// The match engine already commits to non-overlapping matches as it
// scans, but upstream producers (a future parallel match finder, or a
// caller that merges matches from multiple engines) are not guaranteed
// to. Resolve trims overlap with the same FIFO discipline the teacher's
// overlap parser uses: when two candidates overlap, the one that covers
// more target bytes survives and the other is trimmed or dropped.
package iopt

import (
	"github.com/andybalholm/vcdiff/match"
	"github.com/andybalholm/vcdiff/vcdiff"
)

// Resolve converts matches (which must be sorted by TargetPos but may
// overlap) into a flat instruction list covering all of target, with
// literal ADD instructions synthesized for any uncovered byte ranges.
func Resolve(target []byte, matches []match.Match) []vcdiff.Instruction {
	clean := trimOverlaps(matches)
	clean = coalesceRuns(clean)

	var out []vcdiff.Instruction
	pos := 0
	flushAdd := func(end int) {
		if end > pos {
			out = append(out, vcdiff.Add(target[pos:end]))
		}
	}

	for _, m := range clean {
		if m.TargetPos < pos {
			continue // fully covered by a previous instruction; drop
		}
		flushAdd(m.TargetPos)
		if m.IsRun {
			out = append(out, vcdiff.Run(m.Len, m.RunByte))
		} else {
			out = append(out, vcdiff.Copy(m.Len, m.Addr))
		}
		pos = m.TargetPos + m.Len
	}
	flushAdd(len(target))

	return out
}

// trimOverlaps walks matches in TargetPos order, keeping a single active
// candidate (the FIFO "front" of the teacher's matchSet) and resolving
// overlap against it: a longer incoming match displaces the shorter
// active one, a shorter incoming match is trimmed to start where the
// active one ends, or dropped entirely if nothing would remain.
func trimOverlaps(matches []match.Match) []match.Match {
	var out []match.Match
	var active *match.Match

	for i := range matches {
		m := matches[i]
		if active == nil {
			active = &m
			continue
		}
		activeEnd := active.TargetPos + active.Len
		if m.TargetPos >= activeEnd {
			out = append(out, *active)
			active = &m
			continue
		}
		// Overlap: prefer whichever covers more target bytes. A longer
		// incoming match displaces the active one, which is dropped.
		if m.Len > active.Len {
			active = &m
			continue
		}
		trimmed := activeEnd - m.TargetPos
		if trimmed >= m.Len {
			continue // m is fully covered by active; drop it
		}
		m.TargetPos += trimmed
		m.Len -= trimmed
		if !m.IsRun {
			m.Addr += uint64(trimmed)
		}
		out = append(out, *active)
		active = &m
	}
	if active != nil {
		out = append(out, *active)
	}
	return out
}

// coalesceRuns merges a RUN match immediately followed by another RUN of
// the same byte with no gap into a single instruction, which keeps the
// delta package from emitting back-to-back RUN opcodes for what is
// logically one run.
func coalesceRuns(matches []match.Match) []match.Match {
	if len(matches) == 0 {
		return matches
	}
	out := matches[:1]
	for _, m := range matches[1:] {
		last := &out[len(out)-1]
		if last.IsRun && m.IsRun && last.RunByte == m.RunByte && last.TargetPos+last.Len == m.TargetPos {
			last.Len += m.Len
			continue
		}
		out = append(out, m)
	}
	return out
}
