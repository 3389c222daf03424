// Package varint implements the base-128 variable-length integer encoding
// used throughout the VCDIFF wire format (RFC 3284 section 2). Each byte
// contributes seven bits, most-significant group first; the high bit is
// set on every byte except the last.
package varint

import "errors"

// ErrOverflow is returned when a varint's continuation bytes would produce
// a value wider than the field it is being decoded into.
var ErrOverflow = errors.New("varint: value overflows target width")

// ErrTruncated is returned when the input ends before a varint's final
// (high-bit-clear) byte is seen.
var ErrTruncated = errors.New("varint: truncated")

// maxBytes is the longest a varint encoding of a 64-bit value can be:
// ceil(64/7) = 10 groups.
const maxBytes = 10

// AppendUint64 appends the varint encoding of v to dst and returns the
// extended slice.
func AppendUint64(dst []byte, v uint64) []byte {
	var buf [maxBytes]byte
	n := 0
	buf[len(buf)-1] = byte(v & 0x7f)
	n++
	v >>= 7
	for v > 0 {
		n++
		buf[len(buf)-n] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	return append(dst, buf[len(buf)-n:]...)
}

// AppendUint32 appends the varint encoding of v to dst.
func AppendUint32(dst []byte, v uint32) []byte {
	return AppendUint64(dst, uint64(v))
}

// Uint64 decodes a varint from the start of src, returning the value, the
// number of bytes consumed, and an error if the encoding is truncated or
// exceeds 64 bits.
func Uint64(src []byte) (v uint64, n int, err error) {
	for n < len(src) && n < maxBytes {
		b := src[n]
		n++
		if n == maxBytes && b&0x80 != 0 {
			// A 10th continuation byte cannot contribute to a 64-bit value
			// without overflowing (10 groups of 7 bits = 70 bits).
			return 0, 0, ErrOverflow
		}
		if v>>57 != 0 {
			// Shifting in another 7-bit group would push bits past 64.
			return 0, 0, ErrOverflow
		}
		v = (v << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, n, nil
		}
	}
	return 0, 0, ErrTruncated
}

// Uint32 decodes a varint from the start of src into a 32-bit field,
// failing with ErrOverflow if the value does not fit.
func Uint32(src []byte) (v uint32, n int, err error) {
	full, n, err := Uint64(src)
	if err != nil {
		return 0, 0, err
	}
	if full > 0xffffffff {
		return 0, 0, ErrOverflow
	}
	return uint32(full), n, nil
}

// Len returns the number of bytes AppendUint64 would produce for v.
func Len(v uint64) int {
	n := 1
	v >>= 7
	for v > 0 {
		n++
		v >>= 7
	}
	return n
}
