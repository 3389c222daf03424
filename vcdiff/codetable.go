package vcdiff

// InstType identifies the kind of a half-instruction in the VCDIFF code
// table (RFC 3284 section 5.4).
type InstType uint8

const (
	InstNoOp InstType = iota
	InstAdd
	InstRun
	InstCopy
)

// Inst is one half of a code table entry: an instruction type, an encoded
// size (0 meaning "read the size separately, as a varint"), and — for
// InstCopy — an address-cache mode.
type Inst struct {
	Type InstType
	Size uint8
	Mode uint8
}

// Opcode is a single entry of the 256-entry VCDIFF code table. Inst2.Type
// is InstNoOp for single-instruction opcodes.
type Opcode struct {
	Inst1, Inst2 Inst
}

// NumCopyModes is the number of address-cache modes (VCD_SELF, VCD_HERE,
// and s_near + s_same NEAR/SAME slots) assumed by the default code table.
const NumCopyModes = 9

// DefaultCodeTable is the code table used for every window. It is built
// once at init time by defaultCodeTableInit rather than listed literally.
// Opcodes 0..234 match the standard RFC 3284 table; opcodes 235..255 hold
// further ADD+COPY pairs for modes 6 and 7 and differ from the RFC table
// there (see DESIGN.md).
var DefaultCodeTable [256]Opcode

// singleAdd, singleRun and singleCopy map a half-instruction back to the
// opcode that encodes it alone, for the encoder's opcode-selection step.
var singleAdd [18]uint8   // index by size (0 = explicit, 1..17 literal)
var singleRun uint8       // RUN, size 0
var singleCopy [19][NumCopyModes]uint8 // index by size (0, 4..18), mode

// doubleKey identifies a double-instruction slot: a literal ADD size
// (1..4) paired with a COPY of the given size (4..6) and mode.
type doubleKey struct {
	addSize, copySize, mode uint8
}

var doubleOpcode = map[doubleKey]uint8{}

func init() {
	defaultCodeTableInit()
}

func defaultCodeTableInit() {
	opcode := 0

	// RUN, always explicit size.
	DefaultCodeTable[opcode] = Opcode{Inst1: Inst{Type: InstRun, Size: 0}}
	singleRun = uint8(opcode)
	opcode++

	// ADD with explicit size, then ADD with literal sizes 1..17.
	DefaultCodeTable[opcode] = Opcode{Inst1: Inst{Type: InstAdd, Size: 0}}
	singleAdd[0] = uint8(opcode)
	opcode++
	for size := 1; size <= 17; size++ {
		DefaultCodeTable[opcode] = Opcode{Inst1: Inst{Type: InstAdd, Size: uint8(size)}}
		singleAdd[size] = uint8(opcode)
		opcode++
	}

	// COPY alone, for every mode: explicit size, then literal sizes 4..18.
	for mode := 0; mode < NumCopyModes; mode++ {
		DefaultCodeTable[opcode] = Opcode{Inst1: Inst{Type: InstCopy, Size: 0, Mode: uint8(mode)}}
		singleCopy[0][mode] = uint8(opcode)
		opcode++
		for size := 4; size <= 18; size++ {
			DefaultCodeTable[opcode] = Opcode{Inst1: Inst{Type: InstCopy, Size: uint8(size), Mode: uint8(mode)}}
			singleCopy[size-3][mode] = uint8(opcode)
			opcode++
		}
	}

	// Double instructions fill the remaining opcodes (163..255): a
	// literal-size ADD (1..4 bytes) immediately followed by a COPY of a
	// short literal size (4..6) in some mode, which is the combination
	// most often adjacent in practice (a short insertion right before a
	// match).
	for mode := 0; mode < NumCopyModes && opcode < 256; mode++ {
		for addSize := 1; addSize <= 4 && opcode < 256; addSize++ {
			for copySize := 4; copySize <= 6 && opcode < 256; copySize++ {
				DefaultCodeTable[opcode] = Opcode{
					Inst1: Inst{Type: InstAdd, Size: uint8(addSize)},
					Inst2: Inst{Type: InstCopy, Size: uint8(copySize), Mode: uint8(mode)},
				}
				doubleOpcode[doubleKey{uint8(addSize), uint8(copySize), uint8(mode)}] = uint8(opcode)
				opcode++
			}
		}
	}
}

// copySizeIndex maps a size in 4..18 to the singleCopy row index, 0 to the
// explicit-size row 0, and any other size to -1 (encoded explicitly).
func copySizeIndex(size int) int {
	if size == 0 {
		return 0
	}
	if size < 4 || size > 18 {
		return -1
	}
	return size - 3
}

// lookupSingleAdd returns the opcode for a literal ADD of the given size,
// or the explicit-size opcode if size is 0 or too large to encode
// literally.
func lookupSingleAdd(size int) uint8 {
	if size >= 1 && size <= 17 {
		return singleAdd[size]
	}
	return singleAdd[0]
}

// lookupSingleCopy returns the opcode for a COPY of the given size and
// mode, using the explicit-size opcode when size does not fit 4..18.
func lookupSingleCopy(size int, mode uint8) uint8 {
	if idx := copySizeIndex(size); idx > 0 {
		return singleCopy[idx][mode]
	}
	return singleCopy[0][mode]
}

// lookupDouble returns the opcode packing a literal ADD of addSize bytes
// with a COPY of copySize bytes in mode, and whether such a packing
// exists in the default table.
func lookupDouble(addSize, copySize int, mode uint8) (uint8, bool) {
	if addSize < 1 || addSize > 4 || copySize < 4 || copySize > 6 {
		return 0, false
	}
	op, ok := doubleOpcode[doubleKey{uint8(addSize), uint8(copySize), mode}]
	return op, ok
}
