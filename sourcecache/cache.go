// Package sourcecache implements the block-addressed LRU cache over
// source bytes described in SPEC_FULL.md 4.F. It satisfies
// vcdiff.SourceReader, stitching one or more cached blocks together to
// answer an arbitrary [off, off+length) slice request.
//
// Two fetch modes are supported. A synchronous Fetcher (typically
// backed by an io.ReaderAt over a file) pulls missing blocks inline. In
// the absence of a Fetcher, the cache is driver-fed: a miss returns
// *ErrNeedBlock naming the missing block number, and the driver supplies
// it with Supply before retrying — the cooperative-suspension path a
// NeedSourceBlock yield from the encoder state machine drives.
package sourcecache

import (
	"fmt"

	"github.com/andybalholm/vcdiff/vcdiff"
)

// MaxLRU bounds the number of resident blocks; eviction is plain LRU
// over a single preallocated buffer partitioned into MaxLRU slots, so
// the cache never allocates per block.
const MaxLRU = 32

// Fetcher synchronously supplies source block n's bytes into buf,
// returning the number of bytes actually written (less than
// len(buf) only for the final, possibly-short block).
type Fetcher interface {
	FetchBlock(n int, buf []byte) (int, error)
}

// ErrNeedBlock is returned by Slice in driver-fed mode when a required
// block has not yet been supplied.
type ErrNeedBlock struct {
	Block int
}

func (e *ErrNeedBlock) Error() string {
	return fmt.Sprintf("sourcecache: block %d not available", e.Block)
}

// Cache is a block-addressed LRU cache over a source of known total
// length, implementing vcdiff.SourceReader.
type Cache struct {
	fetcher   Fetcher
	blockSize int
	totalLen  int64

	buf     []byte // MaxLRU*blockSize bytes, partitioned into fixed slots
	blockAt []int  // slot -> block number, -1 if empty
	slotLen []int  // slot -> bytes actually held (short for a final partial block)
	slotOf  map[int]int
	lru     []int // slot indices, index 0 is most-recently-used
}

// NewCache returns a cache over a source of totalLen bytes, addressed in
// blockSize-byte blocks. fetcher may be nil; in that case the cache is
// driver-fed via Supply.
func NewCache(fetcher Fetcher, blockSize int, totalLen int64) *Cache {
	c := &Cache{
		fetcher:   fetcher,
		blockSize: blockSize,
		totalLen:  totalLen,
		buf:       make([]byte, MaxLRU*blockSize),
		blockAt:   make([]int, MaxLRU),
		slotLen:   make([]int, MaxLRU),
		slotOf:    make(map[int]int, MaxLRU),
		lru:       make([]int, MaxLRU),
	}
	for i := range c.blockAt {
		c.blockAt[i] = -1
		c.lru[i] = i
	}
	return c
}

var _ vcdiff.SourceReader = (*Cache)(nil)

func (c *Cache) blockCount() int {
	if c.totalLen == 0 {
		return 0
	}
	return int((c.totalLen + int64(c.blockSize) - 1) / int64(c.blockSize))
}

func (c *Cache) blockLen(n int) int {
	start := int64(n) * int64(c.blockSize)
	remaining := c.totalLen - start
	if remaining > int64(c.blockSize) {
		return c.blockSize
	}
	return int(remaining)
}

// touch moves slot to the front of the LRU list.
func (c *Cache) touch(slot int) {
	for i, s := range c.lru {
		if s == slot {
			copy(c.lru[1:i+1], c.lru[0:i])
			c.lru[0] = slot
			return
		}
	}
}

// evictSlot returns the least-recently-used slot, removing its old
// block mapping if any.
func (c *Cache) evictSlot() int {
	slot := c.lru[len(c.lru)-1]
	if c.blockAt[slot] != -1 {
		delete(c.slotOf, c.blockAt[slot])
	}
	return slot
}

// Supply furnishes block n's bytes (driver-fed mode), evicting the LRU
// slot if the cache is full.
func (c *Cache) Supply(n int, data []byte) {
	if slot, ok := c.slotOf[n]; ok {
		copy(c.buf[slot*c.blockSize:], data)
		c.slotLen[slot] = len(data)
		c.touch(slot)
		return
	}
	slot := c.evictSlot()
	copy(c.buf[slot*c.blockSize:], data)
	c.blockAt[slot] = n
	c.slotLen[slot] = len(data)
	c.slotOf[n] = slot
	c.touch(slot)
}

// block returns block n's bytes, fetching or reporting a miss as
// appropriate.
func (c *Cache) block(n int) ([]byte, error) {
	if slot, ok := c.slotOf[n]; ok {
		c.touch(slot)
		return c.buf[slot*c.blockSize : slot*c.blockSize+c.slotLen[slot]], nil
	}
	if c.fetcher == nil {
		return nil, &ErrNeedBlock{Block: n}
	}
	slot := c.evictSlot()
	got, err := c.fetcher.FetchBlock(n, c.buf[slot*c.blockSize:(slot+1)*c.blockSize])
	if err != nil {
		return nil, err
	}
	if want := c.blockLen(n); got > want {
		got = want
	}
	c.blockAt[slot] = n
	c.slotLen[slot] = got
	c.slotOf[n] = slot
	c.touch(slot)
	return c.buf[slot*c.blockSize : slot*c.blockSize+got], nil
}

// Slice implements vcdiff.SourceReader, stitching together however many
// blocks [off, off+length) spans. In driver-fed mode it returns
// *ErrNeedBlock for the first missing block, and the caller is expected
// to Supply it and retry the whole call (whatever bytes earlier blocks
// in the span contributed before the miss are discarded; Slice is not
// partially satisfied).
func (c *Cache) Slice(off, length uint64) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if int64(off+length) > c.totalLen {
		return nil, fmt.Errorf("sourcecache: slice [%d,%d) exceeds source length %d", off, off+length, c.totalLen)
	}
	out := make([]byte, 0, length)
	pos := off
	end := off + length
	for pos < end {
		blockNum := int(pos / uint64(c.blockSize))
		blockBytes, err := c.block(blockNum)
		if err != nil {
			return nil, err
		}
		blockStart := uint64(blockNum) * uint64(c.blockSize)
		startInBlock := pos - blockStart
		available := uint64(len(blockBytes))
		if startInBlock >= available {
			return nil, fmt.Errorf("sourcecache: short block %d", blockNum)
		}
		take := available - startInBlock
		if pos+take > end {
			take = end - pos
		}
		out = append(out, blockBytes[startInBlock:startInBlock+take]...)
		pos += take
	}
	return out, nil
}

// Len reports the cache's source length, for callers that need to
// validate addresses before calling Slice.
func (c *Cache) Len() uint64 { return uint64(c.totalLen) }
