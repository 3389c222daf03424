package secondary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/flate"
)

// DeflateBackend wraps klauspost/compress's deflate implementation in a
// zlib frame (2-byte header, raw deflate stream, 4-byte big-endian
// Adler-32 trailer) by hand, since stdlib compress/zlib has no hook to
// swap in a third-party deflate implementation. The frame matches
// RFC 1950 exactly, so any standard zlib reader can decode it even
// though this backend never calls compress/zlib itself.
type DeflateBackend struct{}

func (DeflateBackend) ID() byte { return IDDeflate }

// zlibHeader is the fixed 2-byte header for a default-strategy,
// 32K-window deflate stream: CMF=0x78 (deflate, 32K window), FLG=0x9c
// (default compression level, no preset dictionary, checksum valid).
var zlibHeader = [2]byte{0x78, 0x9c}

func (DeflateBackend) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(zlibHeader[:])

	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], adler32.Checksum(src))
	buf.Write(trailer[:])
	return buf.Bytes(), nil
}

func (DeflateBackend) Decompress(src []byte) ([]byte, error) {
	if len(src) < 6 {
		return nil, fmt.Errorf("secondary: deflate frame too short")
	}
	body := src[2 : len(src)-4]
	wantSum := binary.BigEndian.Uint32(src[len(src)-4:])

	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if adler32.Checksum(out) != wantSum {
		return nil, fmt.Errorf("secondary: deflate frame checksum mismatch")
	}
	return out, nil
}

func (DeflateBackend) Worthwhile(src []byte) bool {
	return len(src) >= MinCompressSize
}
