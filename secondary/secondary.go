// Package secondary implements the per-section secondary compression
// capability: a small set of real, general-purpose compressors that may
// be applied to a window's DATA, INST, or ADDR section after VCDIFF's
// own copy/run modeling has already removed the redundancy VCDIFF knows
// how to find.
package secondary

import "fmt"

// MinCompressSize is the byte threshold below which Worthwhile always
// declines: secondary compression's fixed per-call overhead (header
// bytes, dictionary reset cost) isn't paid back by tiny sections.
const MinCompressSize = 32

// Backend is the secondary-compression capability. Implementations wrap
// a single real third-party codec; nothing in this package implements
// compression itself.
type Backend interface {
	ID() byte
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	Worthwhile(src []byte) bool
}

// Registry maps a stream secondary ID to its backend, used by the
// decoder to resolve the ID byte written once per stream.
type Registry map[byte]Backend

// DefaultRegistry returns every backend this module ships, keyed by the
// stream secondary IDs in SPEC_FULL.md 4.J.
func DefaultRegistry() Registry {
	return Registry{
		IDSnappy: SnappyBackend{},
		IDLZ4:    LZ4Backend{},
		IDZstd:   ZstdBackend{},
		IDBrotli: BrotliBackend{},
		IDDeflate: DeflateBackend{},
	}
}

// Lookup resolves id, returning ErrUnknownID if no backend is
// registered for it.
func (r Registry) Lookup(id byte) (Backend, error) {
	b, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("%w: secondary id %d", ErrUnknownID, id)
	}
	return b, nil
}

// Stream secondary IDs. Standard xdelta3 IDs 1 (DJW), 2 (LZMA), and 16
// (FGK) are reserved and not implemented here: this module has no DJW,
// LZMA, or FGK codec anywhere in its dependency surface, and declaring
// one of those IDs without the matching codec would silently produce a
// stream no conforming decoder could read. The IDs below are this
// module's own extension block, mirroring how the reference
// implementation defines its own VCD_ZLIB_ID outside xdelta3's range.
const (
	IDSnappy  byte = 32
	IDLZ4     byte = 33
	IDZstd    byte = 34
	IDBrotli  byte = 35
	IDDeflate byte = 36
)

// CompressSection applies b to src if worthwhile, returning the
// (possibly unchanged) bytes and whether compression was applied. Ties
// — compressed output no smaller than the input — count as "not
// worthwhile" so the decoder never pays a decompression cost for zero
// benefit.
func CompressSection(b Backend, src []byte) (out []byte, compressed bool, err error) {
	if !b.Worthwhile(src) {
		return src, false, nil
	}
	compressedBytes, err := b.Compress(src)
	if err != nil {
		return nil, false, err
	}
	if len(compressedBytes) >= len(src) {
		return src, false, nil
	}
	return compressedBytes, true, nil
}

// DecompressSection reverses CompressSection given the flag it recorded.
func DecompressSection(b Backend, src []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return src, nil
	}
	return b.Decompress(src)
}
