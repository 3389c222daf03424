package secondary

import "github.com/klauspost/compress/zstd"

// ZstdBackend wraps klauspost/compress's Zstandard implementation.
type ZstdBackend struct{}

func (ZstdBackend) ID() byte { return IDZstd }

func (ZstdBackend) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, nil), nil
}

func (ZstdBackend) Decompress(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, nil)
}

func (ZstdBackend) Worthwhile(src []byte) bool {
	return len(src) >= MinCompressSize
}
