package vcdiff

// Magic is the four-byte VCDIFF file signature: 'V' 'C' 'D' followed by a
// version byte (0 for the format this package implements).
var Magic = [4]byte{0xd6, 0xc3, 0xc4, 0x00}

// File header indicator bits (VCD_* in RFC 3284 section 4.1).
const (
	HdrSecondary  = 0x01
	HdrCodeTable  = 0x02
	HdrAppHeader  = 0x04
)

// Window header indicator bits (RFC 3284 section 4.2).
const (
	WinSource  = 0x01
	WinTarget  = 0x02
	WinAdler32 = 0x04
)

// Delta indicator bits, set when a section has been secondary-compressed.
const (
	DeltaDataComp = 0x01
	DeltaInstComp = 0x02
	DeltaAddrComp = 0x04
)

// FileHeader is the VCDIFF stream header: the four magic bytes plus the
// optional secondary-compressor ID, custom code table, and application
// header. This package never sets HdrCodeTable: custom code tables are
// out of scope (see SPEC_FULL.md, Non-goals).
type FileHeader struct {
	SecondaryID byte // meaningful only if Secondary is true
	Secondary   bool
	AppHeader   []byte
}

// AppendTo serializes the file header and appends it to dst.
func (h *FileHeader) AppendTo(dst []byte) []byte {
	dst = append(dst, Magic[:]...)
	var ind byte
	if h.Secondary {
		ind |= HdrSecondary
	}
	if len(h.AppHeader) > 0 {
		ind |= HdrAppHeader
	}
	dst = append(dst, ind)
	if h.Secondary {
		dst = append(dst, h.SecondaryID)
	}
	if len(h.AppHeader) > 0 {
		dst = appendVarint(dst, uint64(len(h.AppHeader)))
		dst = append(dst, h.AppHeader...)
	}
	return dst
}

// ParseFileHeader reads a FileHeader from the start of src, returning the
// header, the number of bytes consumed, and an error.
func ParseFileHeader(src []byte) (h FileHeader, n int, err error) {
	if len(src) < 5 || src[0] != Magic[0] || src[1] != Magic[1] || src[2] != Magic[2] || src[3] != Magic[3] {
		return FileHeader{}, 0, ErrInvalidHeader
	}
	ind := src[4]
	n = 5
	if ind&HdrCodeTable != 0 {
		return FileHeader{}, 0, ErrUnsupported
	}
	if ind&HdrSecondary != 0 {
		if n >= len(src) {
			return FileHeader{}, 0, ErrInvalidHeader
		}
		h.Secondary = true
		h.SecondaryID = src[n]
		n++
	}
	if ind&HdrAppHeader != 0 {
		l, used, err := readVarint(src[n:])
		if err != nil {
			return FileHeader{}, 0, ErrInvalidHeader
		}
		n += used
		if uint64(len(src)-n) < l {
			return FileHeader{}, 0, ErrInvalidHeader
		}
		h.AppHeader = append([]byte(nil), src[n:n+int(l)]...)
		n += int(l)
	}
	return h, n, nil
}
