package sourcecache

import (
	"bytes"
	"testing"
)

type fakeFetcher struct {
	data []byte
}

func (f fakeFetcher) FetchBlock(n int, buf []byte) (int, error) {
	start := n * len(buf)
	if start > len(f.data) {
		start = len(f.data)
	}
	end := start + len(buf)
	if end > len(f.data) {
		end = len(f.data)
	}
	return copy(buf, f.data[start:end]), nil
}

func TestCacheSliceWithinOneBlock(t *testing.T) {
	data := []byte("0123456789abcdef")
	c := NewCache(fakeFetcher{data}, 4, int64(len(data)))
	got, err := c.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if !bytes.Equal(got, []byte("123")) {
		t.Errorf("got %q, want %q", got, "123")
	}
}

func TestCacheSliceSpanningBlocks(t *testing.T) {
	data := []byte("0123456789abcdef")
	c := NewCache(fakeFetcher{data}, 4, int64(len(data)))
	got, err := c.Slice(2, 10)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if !bytes.Equal(got, data[2:12]) {
		t.Errorf("got %q, want %q", got, data[2:12])
	}
}

func TestCacheEvictionStillCorrect(t *testing.T) {
	data := make([]byte, 4*(MaxLRU+5))
	for i := range data {
		data[i] = byte(i)
	}
	c := NewCache(fakeFetcher{data}, 4, int64(len(data)))
	for b := 0; b < MaxLRU+5; b++ {
		off := uint64(b * 4)
		got, err := c.Slice(off, 4)
		if err != nil {
			t.Fatalf("Slice block %d: %v", b, err)
		}
		if !bytes.Equal(got, data[off:off+4]) {
			t.Fatalf("block %d mismatch", b)
		}
	}
	// Revisit an early block, now evicted; must re-fetch correctly.
	got, err := c.Slice(0, 4)
	if err != nil {
		t.Fatalf("re-fetch: %v", err)
	}
	if !bytes.Equal(got, data[0:4]) {
		t.Fatalf("re-fetch mismatch: got %v want %v", got, data[0:4])
	}
}

func TestDriverFedMissReturnsErrNeedBlock(t *testing.T) {
	c := NewCache(nil, 4, 16)
	_, err := c.Slice(0, 4)
	var needErr *ErrNeedBlock
	if err == nil {
		t.Fatalf("expected an error in driver-fed mode before Supply")
	}
	if ne, ok := err.(*ErrNeedBlock); !ok || ne.Block != 0 {
		t.Fatalf("expected *ErrNeedBlock{Block:0}, got %v (%T)", err, err)
	}
	_ = needErr

	c.Supply(0, []byte("abcd"))
	got, err := c.Slice(0, 4)
	if err != nil {
		t.Fatalf("Slice after Supply: %v", err)
	}
	if !bytes.Equal(got, []byte("abcd")) {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}

func TestPartialFinalBlock(t *testing.T) {
	data := []byte("0123456789") // 10 bytes, block size 4 -> last block is 2 bytes
	c := NewCache(fakeFetcher{data}, 4, int64(len(data)))
	got, err := c.Slice(8, 2)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if !bytes.Equal(got, []byte("89")) {
		t.Errorf("got %q, want %q", got, "89")
	}
}
