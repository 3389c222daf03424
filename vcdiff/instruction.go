package vcdiff

// Instruction is one VCDIFF half-instruction in application form: an ADD
// of literal bytes, a RUN of a repeated byte, or a COPY from the combined
// source-window/target-history address space. This is the shared currency
// between the match engine, the instruction optimizer, and the window
// framer.
type Instruction struct {
	Type InstType
	Len  int

	// Addr is meaningful only for InstCopy: an absolute position in the
	// window's address space, where [0, sourceLen) refers to the source
	// window and [sourceLen, sourceLen+targetPos) refers to target bytes
	// already emitted in this window.
	Addr uint64

	// Byte is meaningful only for InstRun.
	Byte byte

	// data holds the literal bytes for InstAdd; it aliases the caller's
	// target buffer and is not copied until the window is assembled.
	data []byte
}

// Add returns an ADD instruction for the given literal bytes.
func Add(data []byte) Instruction {
	return Instruction{Type: InstAdd, Len: len(data), data: data}
}

// Run returns a RUN instruction.
func Run(length int, b byte) Instruction {
	return Instruction{Type: InstRun, Len: length, Byte: b}
}

// Copy returns a COPY instruction.
func Copy(length int, addr uint64) Instruction {
	return Instruction{Type: InstCopy, Len: length, Addr: addr}
}

// Data returns the literal bytes of an ADD instruction.
func (in Instruction) Data() []byte { return in.data }
