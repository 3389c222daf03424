package vcdiff

import "hash/adler32"

// SourceWindow describes the portion of the source sequence a target
// window's COPY instructions may reference.
type SourceWindow struct {
	Offset uint64
	Len    uint64
}

// WindowEncoder assembles one VCDIFF window's INST/DATA/ADDR sections from
// a stream of Add/Run/Copy calls, packing an ADD immediately followed by a
// short COPY into a single double-instruction opcode when the default
// code table has one (the pending field below mirrors the deferred-emission
// pattern used by the original xdelta3-derived encoders: never emit an
// ADD until it's known whether the next call is a packable COPY).
type WindowEncoder struct {
	acache *AddressCache
	source SourceWindow

	targetLen int
	pending   *Instruction

	data, inst, addr []byte
}

// NewWindowEncoder returns an encoder for one window. acache must have
// just been Reset (or be freshly constructed): the address cache is
// logically per-window.
func NewWindowEncoder(acache *AddressCache, source SourceWindow) *WindowEncoder {
	return &WindowEncoder{acache: acache, source: source}
}

func (e *WindowEncoder) here() uint64 { return e.source.Len + uint64(e.targetLen) }

// Add buffers a literal ADD. It is not written to the sections until the
// encoder learns whether the next instruction can be packed with it.
func (e *WindowEncoder) Add(data []byte) {
	if len(data) == 0 {
		return
	}
	e.flushPending()
	in := Add(data)
	e.pending = &in
}

// Run emits a RUN instruction immediately; RUN never participates in
// double-opcode packing in the default code table.
func (e *WindowEncoder) Run(length int, b byte) {
	if length <= 0 {
		return
	}
	e.flushPending()
	e.emitRun(length, b)
	e.targetLen += length
}

// Copy emits a COPY instruction, packing it with a pending ADD when the
// default code table has a double opcode for the combination.
func (e *WindowEncoder) Copy(length int, srcAddr uint64) {
	if length <= 0 {
		return
	}
	if e.pending != nil && e.pending.Type == InstAdd {
		addSize := len(e.pending.data)
		here := e.source.Len + uint64(e.targetLen) + uint64(addSize)
		mode, _, _ := e.acache.Encode(srcAddr, here)
		if op, ok := lookupDouble(addSize, length, mode); ok {
			e.inst = append(e.inst, op)
			e.data = append(e.data, e.pending.data...)
			e.emitAddrAt(srcAddr, here)
			e.targetLen += addSize + length
			e.pending = nil
			return
		}
	}
	e.flushPending()
	e.emitCopy(length, srcAddr)
	e.targetLen += length
}

func (e *WindowEncoder) flushPending() {
	if e.pending == nil {
		return
	}
	p := *e.pending
	e.pending = nil
	e.emitAdd(p.data)
	e.targetLen += len(p.data)
}

func (e *WindowEncoder) emitAdd(data []byte) {
	op := lookupSingleAdd(len(data))
	e.inst = append(e.inst, op)
	if len(data) < 1 || len(data) > 17 {
		e.inst = appendVarint(e.inst, uint64(len(data)))
	}
	e.data = append(e.data, data...)
}

func (e *WindowEncoder) emitRun(length int, b byte) {
	e.inst = append(e.inst, singleRun)
	e.inst = appendVarint(e.inst, uint64(length))
	e.data = append(e.data, b)
}

func (e *WindowEncoder) emitCopy(length int, srcAddr uint64) {
	here := e.here()
	mode, _, _ := e.acache.Encode(srcAddr, here)
	op := lookupSingleCopy(length, mode)
	e.inst = append(e.inst, op)
	if copySizeIndex(length) <= 0 {
		e.inst = appendVarint(e.inst, uint64(length))
	}
	e.emitAddrAt(srcAddr, here)
}

// emitAddrAt resolves and writes the address for a COPY at the given
// "here" position, then updates the address cache with the real source
// address.
func (e *WindowEncoder) emitAddrAt(srcAddr, here uint64) {
	_, value, isByte := e.acache.Encode(srcAddr, here)
	if isByte {
		e.addr = append(e.addr, byte(value))
	} else {
		e.addr = appendVarint(e.addr, value)
	}
	e.acache.Update(srcAddr)
}

// WindowSections holds one window's fully-built sections, ready for
// optional secondary compression and assembly.
type WindowSections struct {
	Source    SourceWindow
	HasSource bool
	TargetLen int
	Checksum  uint32
	HasChecksum bool
	Data, Inst, Addr []byte
}

// Finish flushes any pending instruction and returns the window's
// sections. If checksum is true, the Adler-32 of target is computed and
// included.
func (e *WindowEncoder) Finish(target []byte, checksum bool) WindowSections {
	e.flushPending()
	s := WindowSections{
		Source:    e.source,
		HasSource: e.source.Len > 0,
		TargetLen: e.targetLen,
		Data:      e.data,
		Inst:      e.inst,
		Addr:      e.addr,
	}
	if checksum {
		s.HasChecksum = true
		s.Checksum = adler32.Checksum(target)
	}
	return s
}

// Assemble serializes WindowSections into the wire format for one window,
// applying deltaInd (the per-section secondary-compression flags) and
// appending the result to dst. data/inst/addr here are the (possibly
// secondary-compressed) section bytes actually written; callers that
// apply secondary compression pass the compressed bytes instead of
// s.Data/s.Inst/s.Addr.
func (s WindowSections) Assemble(dst []byte, deltaInd byte, data, inst, addr []byte) []byte {
	var winInd byte
	if s.HasSource {
		winInd |= WinSource
	}
	if s.HasChecksum {
		winInd |= WinAdler32
	}
	dst = append(dst, winInd)
	if s.HasSource {
		dst = appendVarint(dst, s.Source.Len)
		dst = appendVarint(dst, s.Source.Offset)
	}

	// encoding_length covers everything from target_len through the end
	// of the three sections.
	var body []byte
	body = appendVarint(body, uint64(s.TargetLen))
	body = append(body, deltaInd)
	body = appendVarint(body, uint64(len(data)))
	body = appendVarint(body, uint64(len(inst)))
	body = appendVarint(body, uint64(len(addr)))
	if s.HasChecksum {
		var cs [4]byte
		cs[0] = byte(s.Checksum >> 24)
		cs[1] = byte(s.Checksum >> 16)
		cs[2] = byte(s.Checksum >> 8)
		cs[3] = byte(s.Checksum)
		body = append(body, cs[:]...)
	}
	body = append(body, data...)
	body = append(body, inst...)
	body = append(body, addr...)

	dst = appendVarint(dst, uint64(len(body)))
	dst = append(dst, body...)
	return dst
}
