package typecodec

import (
	"fmt"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/internal/format"
)

// MaxDepth bounds the nesting of types and values in one stream.
const MaxDepth = 256

// Buffer is a cursor over an encoded stream. A Buffer made by NewBuffer
// appends; one made by NewReader consumes. A Buffer lives for one marshal or
// unmarshal call.
type Buffer struct {
	r       Resolver
	data    []byte
	pos     int
	reading bool
	depth   int
}

// NewBuffer returns an empty write buffer sized for one type slot.
func NewBuffer(r Resolver) *Buffer {
	return &Buffer{r: r, data: make([]byte, 0, format.TypeSlotSize)}
}

// NewReader returns a read buffer over data.
func NewReader(r Resolver, data []byte) *Buffer {
	return &Buffer{r: r, data: data, reading: true}
}

// Bytes returns the bytes written so far, or the whole input in read mode.
func (b *Buffer) Bytes() []byte { return b.data }

// Position returns the write length or the read cursor.
func (b *Buffer) Position() int {
	if b.reading {
		return b.pos
	}
	return len(b.data)
}

// Cap returns the capacity of the write buffer.
func (b *Buffer) Cap() int { return cap(b.data) }

// Remaining returns the unread byte count.
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// reserve extends data by n bytes, doubling the capacity until they fit,
// and returns the offset of the first new byte.
func (b *Buffer) reserve(n int) int {
	l := len(b.data)
	if l+n > cap(b.data) {
		c := max(cap(b.data), format.TypeSlotSize)
		for c < l+n {
			c *= 2
		}
		grown := make([]byte, l, c)
		copy(grown, b.data)
		b.data = grown
	}
	b.data = b.data[:l+n]
	return l
}

func (b *Buffer) PutByte(v byte) {
	off := b.reserve(1)
	b.data[off] = v
}

func (b *Buffer) PutShort(v int16) {
	off := b.reserve(format.ShortSize)
	format.PutI16(b.data, off, v)
}

func (b *Buffer) PutInt(v int32) {
	off := b.reserve(format.IntSize)
	format.PutI32(b.data, off, v)
}

// PutRecPtr writes a full-width record pointer.
func (b *Buffer) PutRecPtr(p db.RecPtr) {
	off := b.reserve(format.PtrSize)
	format.PutU32(b.data, off, uint32(p))
}

func (b *Buffer) putBytes(p []byte) {
	off := b.reserve(len(p))
	copy(b.data[off:], p)
}

// take advances the cursor past n bytes and returns their offset.
func (b *Buffer) take(n int) (int, error) {
	if n < 0 || b.pos+n > len(b.data) {
		return 0, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrUnmarshal, n, b.pos, len(b.data)-b.pos)
	}
	off := b.pos
	b.pos += n
	return off, nil
}

// PeekByte returns the next byte without consuming it.
func (b *Buffer) PeekByte() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, fmt.Errorf("%w: end of buffer at %d", ErrUnmarshal, b.pos)
	}
	return b.data[b.pos], nil
}

func (b *Buffer) GetByte() (byte, error) {
	off, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return b.data[off], nil
}

func (b *Buffer) GetShort() (int16, error) {
	off, err := b.take(format.ShortSize)
	if err != nil {
		return 0, err
	}
	return format.ReadI16(b.data, off), nil
}

func (b *Buffer) GetInt() (int32, error) {
	off, err := b.take(format.IntSize)
	if err != nil {
		return 0, err
	}
	return format.ReadI32(b.data, off), nil
}

func (b *Buffer) GetRecPtr() (db.RecPtr, error) {
	off, err := b.take(format.PtrSize)
	if err != nil {
		return db.Null, err
	}
	return db.RecPtr(format.ReadU32(b.data, off)), nil
}

// getBytes returns the next n bytes without copying.
func (b *Buffer) getBytes(n int) ([]byte, error) {
	off, err := b.take(n)
	if err != nil {
		return nil, err
	}
	return b.data[off : off+n], nil
}

// enter guards recursion; every successful enter must be paired with leave.
func (b *Buffer) enter(kind error) error {
	if b.depth >= MaxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", kind, MaxDepth)
	}
	b.depth++
	return nil
}

func (b *Buffer) leave() { b.depth-- }
