package vcdiff

import (
	"bytes"
	"hash/adler32"
	"testing"
)

func encodeWindow(t *testing.T, source, target []byte, instructions []Instruction, checksum bool) []byte {
	t.Helper()
	acache := NewAddressCache(4, 3)
	we := NewWindowEncoder(acache, SourceWindow{Len: uint64(len(source))})
	for _, in := range instructions {
		switch in.Type {
		case InstAdd:
			we.Add(in.data)
		case InstRun:
			we.Run(in.Len, in.Byte)
		case InstCopy:
			we.Copy(in.Len, in.Addr)
		}
	}
	sections := we.Finish(target, checksum)
	return sections.Assemble(nil, 0, sections.Data, sections.Inst, sections.Addr)
}

func decodeWindow(t *testing.T, wire []byte, source []byte) []byte {
	t.Helper()
	h, data, inst, addr, n, err := ParseWindow(wire)
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	if n != len(wire) {
		t.Fatalf("ParseWindow consumed %d of %d bytes", n, len(wire))
	}
	acache := NewAddressCache(4, 3)
	out, err := Execute(h, data, inst, addr, NewSliceSource(source), acache, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if h.HasChecksum {
		got := adler32.Checksum(out)
		if got != h.Checksum {
			t.Fatalf("checksum mismatch: got %x want %x", got, h.Checksum)
		}
	}
	return out
}

func TestAddOnly(t *testing.T) {
	target := []byte("hello world")
	wire := encodeWindow(t, nil, target, []Instruction{Add(target)}, true)
	got := decodeWindow(t, wire, nil)
	if !bytes.Equal(got, target) {
		t.Errorf("got %q, want %q", got, target)
	}
}

func TestRun(t *testing.T) {
	target := bytes.Repeat([]byte{'A'}, 4096)
	wire := encodeWindow(t, nil, target, []Instruction{Run(4096, 'A')}, true)
	if len(wire) > 32 {
		t.Errorf("run-length window too large: %d bytes", len(wire))
	}
	got := decodeWindow(t, wire, nil)
	if !bytes.Equal(got, target) {
		t.Errorf("got %d bytes, want %d", len(got), len(target))
	}
}

func TestSourceCopy(t *testing.T) {
	source := []byte("hello old world")
	target := []byte("hello new world")
	instructions := []Instruction{
		Add([]byte("hello ")),
		Add([]byte("new")),
		Copy(6, 9), // " world" at source offset 9
	}
	wire := encodeWindow(t, source, target, instructions, true)
	got := decodeWindow(t, wire, source)
	if !bytes.Equal(got, target) {
		t.Errorf("got %q, want %q", got, target)
	}
}

func TestTargetSelfOverlapCopy(t *testing.T) {
	// "abcdefgh" + self-copy of length 8 at address 8 (== len(source)+0)
	// should duplicate the whole first half.
	target := []byte("abcdefghabcdefgh")
	instructions := []Instruction{
		Add([]byte("abcdefgh")),
		Copy(8, 0), // source len is 0, so addr 0 is target offset 0
	}
	wire := encodeWindow(t, nil, target, instructions, true)
	got := decodeWindow(t, wire, nil)
	if !bytes.Equal(got, target) {
		t.Errorf("got %q, want %q", got, target)
	}
}

func TestSelfOverlapRunLikeExpansion(t *testing.T) {
	// ADD "a", then COPY 7 bytes starting 1 byte back: classic RLE via
	// self-overlapping copy.
	instructions := []Instruction{
		Add([]byte("a")),
		Copy(7, 0),
	}
	wire := encodeWindow(t, nil, []byte("aaaaaaaa"), instructions, true)
	got := decodeWindow(t, wire, nil)
	want := []byte("aaaaaaaa")
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInvalidHeaderRejected(t *testing.T) {
	_, n, err := ParseFileHeader([]byte("not a vcdiff file"))
	if err != ErrInvalidHeader {
		t.Errorf("got %v, want ErrInvalidHeader", err)
	}
	if n != 0 {
		t.Errorf("got n=%d, want 0", n)
	}
}

func TestFileHeaderRoundTrip(t *testing.T) {
	h := FileHeader{Secondary: true, SecondaryID: 32, AppHeader: []byte("app")}
	wire := h.AppendTo(nil)
	got, n, err := ParseFileHeader(wire)
	if err != nil {
		t.Fatalf("ParseFileHeader: %v", err)
	}
	if n != len(wire) {
		t.Errorf("consumed %d of %d", n, len(wire))
	}
	if got.Secondary != true || got.SecondaryID != 32 || !bytes.Equal(got.AppHeader, []byte("app")) {
		t.Errorf("got %+v", got)
	}
}

func TestAddressCacheTieBreak(t *testing.T) {
	c := NewAddressCache(4, 3)
	c.Update(100)

	// Re-encoding the exact same address must prefer SAME (one byte,
	// checked first) over every other mode.
	_, _, isByte := c.Encode(100, 1000)
	if !isByte {
		t.Errorf("expected SAME hit (byte-encoded) for the just-used address")
	}

	// A nearby address that SAME can't represent should prefer NEAR over
	// SELF when both would encode to the same length.
	mode, _, isByte := c.Encode(105, 1000)
	if isByte {
		t.Fatalf("address 105 unexpectedly hit SAME")
	}
	if mode != c.nearMode(0) {
		t.Errorf("expected a NEAR hit for address 105, got mode %d", mode)
	}
}

func TestAddressCacheSameSubtablesDontClobberEachOther(t *testing.T) {
	c := NewAddressCache(4, 3)
	c.Update(44)
	c.Update(300) // 300 % 256 == 44, shares a low byte with the first update

	mode44, value44, isByte44 := c.Encode(44, 1000)
	if !isByte44 {
		t.Fatalf("expected SAME hit for address 44, got mode %d", mode44)
	}
	addr, err := c.Decode(mode44, value44, 1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if addr != 44 {
		t.Errorf("decoded address = %d, want 44 (overwritten by the later Update(300))", addr)
	}

	mode300, value300, isByte300 := c.Encode(300, 1000)
	if !isByte300 {
		t.Fatalf("expected SAME hit for address 300, got mode %d", mode300)
	}
	addr300, err := c.Decode(mode300, value300, 1000)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if addr300 != 300 {
		t.Errorf("decoded address = %d, want 300", addr300)
	}
}
