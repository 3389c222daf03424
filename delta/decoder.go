package delta

import (
	"fmt"
	"hash/adler32"

	"github.com/andybalholm/vcdiff/secondary"
	"github.com/andybalholm/vcdiff/vcdiff"
	"github.com/andybalholm/vcdiff/vcdlog"
)

func adler32Of(b []byte) uint32 { return adler32.Checksum(b) }

// Decoder parses a VCDIFF delta stream and reconstructs its target
// bytes against a supplied source.
type Decoder struct {
	backends      secondary.Registry
	log           vcdlog.Logger
	skipChecksum  bool
}

// NewDecoder constructs a decoder. backends resolves whatever secondary
// ID a stream's file header declares; pass secondary.DefaultRegistry()
// unless the caller has a narrower set. skipChecksum suppresses
// Adler-32 verification (the driver's "--no-checksum" equivalent).
func NewDecoder(backends secondary.Registry, log vcdlog.Logger, skipChecksum bool) *Decoder {
	return &Decoder{backends: backends, log: log, skipChecksum: skipChecksum}
}

// DecodeStream reconstructs the target bytes encoded in delta, given
// the original source.
func (d *Decoder) DecodeStream(source, delta []byte) ([]byte, error) {
	fh, n, err := vcdiff.ParseFileHeader(delta)
	if err != nil {
		return nil, err
	}
	delta = delta[n:]

	var backend secondary.Backend
	if fh.Secondary {
		backend, err = d.backends.Lookup(fh.SecondaryID)
		if err != nil {
			d.log.Unsupported(fmt.Sprintf("secondary id %d", fh.SecondaryID))
			return nil, err
		}
		d.log.SecondarySelected(fh.SecondaryID, "stream")
	}

	sourceReader := vcdiff.NewSliceSource(source)

	var out []byte
	for idx := 0; len(delta) > 0; idx++ {
		h, data, inst, addr, used, err := vcdiff.ParseWindow(delta)
		if err != nil {
			return nil, err
		}
		delta = delta[used:]

		if backend != nil {
			if data, err = secondary.DecompressSection(backend, data, h.DeltaInd&vcdiff.DeltaDataComp != 0); err != nil {
				return nil, err
			}
			if inst, err = secondary.DecompressSection(backend, inst, h.DeltaInd&vcdiff.DeltaInstComp != 0); err != nil {
				return nil, err
			}
			if addr, err = secondary.DecompressSection(backend, addr, h.DeltaInd&vcdiff.DeltaAddrComp != 0); err != nil {
				return nil, err
			}
		} else if h.DeltaInd != 0 {
			return nil, vcdiff.ErrUnsupported
		}

		acache := vcdiff.NewAddressCache(4, 3)
		startLen := len(out)
		out, err = vcdiff.Execute(h, data, inst, addr, sourceReader, acache, out)
		if err != nil {
			return nil, err
		}

		if h.HasChecksum && !d.skipChecksum {
			got := adler32Of(out[startLen:])
			if got != h.Checksum {
				d.log.ChecksumMismatch(idx, h.Checksum, got)
				return nil, &vcdiff.ChecksumError{Expected: h.Checksum, Actual: got}
			}
		}

		d.log.WindowDecode(idx, h.TargetLen)
	}

	return out, nil
}
