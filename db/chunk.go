package db

import (
	"fmt"

	"github.com/joshuapare/symdb/internal/format"
)

// Chunk is one materialized, cached chunk of the database file.
//
// Accessors take ABSOLUTE record offsets, exactly like the Database methods,
// so callers holding a chunk can keep working in file coordinates. An offset
// outside the chunk is a programming error and panics; use the Database
// accessors when the offset comes from disk and may be garbage.
type Chunk struct {
	index  int
	start  RecPtr
	buf    []byte
	mapped bool // buf is an mmap of the file region
	dirty  bool
}

// Index returns the chunk's position in the chunk table.
func (c *Chunk) Index() int { return c.index }

// Start returns the absolute offset of the chunk's first byte.
func (c *Chunk) Start() RecPtr { return c.start }

// Mapped reports whether the chunk is memory-mapped rather than buffered.
func (c *Chunk) Mapped() bool { return c.mapped }

// Dirty reports whether the chunk has unsaved writes.
func (c *Chunk) Dirty() bool { return c.dirty }

// Contains reports whether [off, off+n) lies inside the chunk.
func (c *Chunk) Contains(off RecPtr, n int) bool {
	l := int64(off) - int64(c.start)
	return l >= 0 && n >= 0 && l+int64(n) <= int64(len(c.buf))
}

func (c *Chunk) local(off RecPtr, n int) int {
	if !c.Contains(off, n) {
		panic(fmt.Sprintf("db: offset %s (+%d) outside chunk %d", off, n, c.index))
	}
	return int(off - c.start)
}

func (c *Chunk) Byte(off RecPtr) byte {
	return c.buf[c.local(off, 1)]
}

func (c *Chunk) PutByte(off RecPtr, v byte) {
	c.buf[c.local(off, 1)] = v
	c.dirty = true
}

// Char reads one UTF-16 code unit.
func (c *Chunk) Char(off RecPtr) uint16 {
	return format.ReadU16(c.buf, c.local(off, format.ShortSize))
}

func (c *Chunk) PutChar(off RecPtr, v uint16) {
	format.PutU16(c.buf, c.local(off, format.ShortSize), v)
	c.dirty = true
}

func (c *Chunk) Short(off RecPtr) int16 {
	return format.ReadI16(c.buf, c.local(off, format.ShortSize))
}

func (c *Chunk) PutShort(off RecPtr, v int16) {
	format.PutI16(c.buf, c.local(off, format.ShortSize), v)
	c.dirty = true
}

func (c *Chunk) Int(off RecPtr) int32 {
	return format.ReadI32(c.buf, c.local(off, format.IntSize))
}

func (c *Chunk) PutInt(off RecPtr, v int32) {
	format.PutI32(c.buf, c.local(off, format.IntSize), v)
	c.dirty = true
}

func (c *Chunk) RecPtr(off RecPtr) RecPtr {
	return RecPtr(format.ReadU32(c.buf, c.local(off, format.PtrSize)))
}

func (c *Chunk) PutRecPtr(off RecPtr, v RecPtr) {
	format.PutU32(c.buf, c.local(off, format.PtrSize), uint32(v))
	c.dirty = true
}

// Slice returns the live bytes [off, off+n). Writes through the slice are
// NOT tracked; call MarkDirty afterwards.
func (c *Chunk) Slice(off RecPtr, n int) []byte {
	l := c.local(off, n)
	return c.buf[l : l+n : l+n]
}

// PutBytes copies b into the chunk at off.
func (c *Chunk) PutBytes(off RecPtr, b []byte) {
	l := c.local(off, len(b))
	copy(c.buf[l:], b)
	c.dirty = true
}

// Zero clears n bytes at off.
func (c *Chunk) Zero(off RecPtr, n int) {
	l := c.local(off, n)
	clear(c.buf[l : l+n])
	c.dirty = true
}

// MarkDirty flags the chunk for the next Save.
func (c *Chunk) MarkDirty() { c.dirty = true }
