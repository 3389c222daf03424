package secondary

import "github.com/golang/snappy"

// SnappyBackend wraps the reference Snappy codec.
type SnappyBackend struct{}

func (SnappyBackend) ID() byte { return IDSnappy }

func (SnappyBackend) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (SnappyBackend) Decompress(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

func (SnappyBackend) Worthwhile(src []byte) bool {
	return len(src) >= MinCompressSize
}
