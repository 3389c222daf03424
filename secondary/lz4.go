package secondary

import (
	"bytes"

	"github.com/pierrec/lz4/v4"
)

// LZ4Backend wraps the LZ4 frame codec.
type LZ4Backend struct{}

func (LZ4Backend) ID() byte { return IDLZ4 }

func (LZ4Backend) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (LZ4Backend) Decompress(src []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (LZ4Backend) Worthwhile(src []byte) bool {
	return len(src) >= MinCompressSize
}
