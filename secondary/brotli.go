package secondary

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

// BrotliBackend wraps andybalholm/brotli.
type BrotliBackend struct{}

func (BrotliBackend) ID() byte { return IDBrotli }

func (BrotliBackend) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (BrotliBackend) Decompress(src []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(src))
	return io.ReadAll(r)
}

func (BrotliBackend) Worthwhile(src []byte) bool {
	return len(src) >= MinCompressSize
}
