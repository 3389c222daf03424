// Package match implements the rolling/small checksums, generation-tagged
// hash tables, and the match-finding engine used to discover candidate
// VCDIFF COPY/RUN instructions in a target relative to a source and to its
// own already-emitted history.
package match

// SmallChecksum computes the target-self four-byte checksum used to probe
// the small hash table. It is deliberately not an incrementally-rolled
// value: only four bytes are ever involved, so a fresh read-and-multiply
// at each position is both simpler and just as fast as maintaining rolling
// state for a four-byte window (see DESIGN.md).
func SmallChecksum(b []byte) uint32 {
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return v * smallMul
}

const smallMul = 1597334677

// LargeHash computes the polynomial rolling checksum used to probe the
// source hash table over a window of `Look` bytes, and supports the O(1)
// incremental update described in SPEC_FULL.md 4.D: dropping the outgoing
// byte and mixing in the incoming one without rescanning the window.
type LargeHash struct {
	Look int

	k      uint64
	kPowL1 uint64 // k^(Look-1), for removing the outgoing byte's contribution
}

// NewLargeHash returns a LargeHash for windows of `look` bytes.
func NewLargeHash(look int) *LargeHash {
	h := &LargeHash{Look: look, k: 0x100000001b3}
	p := uint64(1)
	for i := 0; i < look-1; i++ {
		p *= h.k
	}
	h.kPowL1 = p
	return h
}

// Checksum computes the hash of b[:h.Look] from scratch.
func (h *LargeHash) Checksum(b []byte) uint64 {
	var v uint64
	for i := 0; i < h.Look; i++ {
		v = v*h.k + uint64(b[i])
	}
	return v
}

// UpdateAt rolls prev forward by one byte: old is the byte leaving the
// window, new is the byte entering it.
func (h *LargeHash) UpdateAt(prev uint64, old, new byte) uint64 {
	return (prev-uint64(old)*h.kPowL1)*h.k + uint64(new)
}
