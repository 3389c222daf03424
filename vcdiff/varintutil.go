package vcdiff

import "github.com/andybalholm/vcdiff/varint"

func appendVarint(dst []byte, v uint64) []byte {
	return varint.AppendUint64(dst, v)
}

func readVarint(src []byte) (uint64, int, error) {
	v, n, err := varint.Uint64(src)
	if err != nil {
		return 0, 0, err
	}
	return v, n, nil
}

func readVarint32(src []byte) (uint32, int, error) {
	return varint.Uint32(src)
}
