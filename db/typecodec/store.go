package typecodec

import (
	"fmt"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/db/alloc"
	"github.com/joshuapare/symdb/internal/format"
)

// Store keeps encoded types and values in fixed 6-byte slots inside
// database records.
//
// An encoding that fits the slot is stored inline. A longer one is copied to
// an allocated blob laid out as [int32 length][bytes], and the slot holds
//
//	[IndirectType][0][recptr blob]
//
// Inline encodings never start with IndirectType: type tags stop at
// ProblemType and an inline value's first byte is its repr length, at most 1.
type Store struct {
	d *db.Database
	a alloc.Allocator
	r Resolver
}

// NewStore returns a Store over d that allocates blobs from a and resolves
// entities through r.
func NewStore(d *db.Database, a alloc.Allocator, r Resolver) *Store {
	return &Store{d: d, a: a, r: r}
}

// StoreType writes t into slot, freeing any blob the slot pointed to.
func (s *Store) StoreType(slot db.RecPtr, t Type) error {
	data, err := Marshal(s.r, t)
	if err != nil {
		return err
	}
	return s.put(slot, data)
}

// LoadType reads the type in slot.
func (s *Store) LoadType(slot db.RecPtr) (Type, error) {
	data, err := s.get(slot)
	if err != nil {
		return nil, err
	}
	return Unmarshal(s.r, data)
}

// DeleteType frees any blob behind slot and zeroes it.
func (s *Store) DeleteType(slot db.RecPtr) error {
	return s.release(slot)
}

// StoreValue writes v into slot, freeing any blob the slot pointed to.
func (s *Store) StoreValue(slot db.RecPtr, v *Value) error {
	data, err := MarshalValue(s.r, v)
	if err != nil {
		return err
	}
	return s.put(slot, data)
}

// LoadValue reads the value in slot.
func (s *Store) LoadValue(slot db.RecPtr) (*Value, error) {
	data, err := s.get(slot)
	if err != nil {
		return nil, err
	}
	return UnmarshalValue(s.r, data)
}

// DeleteValue frees any blob behind slot and zeroes it.
func (s *Store) DeleteValue(slot db.RecPtr) error {
	return s.release(slot)
}

// Indirect reports whether slot points to a blob, and returns the blob.
func (s *Store) Indirect(slot db.RecPtr) (db.RecPtr, bool, error) {
	tag, err := s.d.Byte(slot)
	if err != nil {
		return db.Null, false, err
	}
	if tag != IndirectType {
		return db.Null, false, nil
	}
	blob, err := s.d.RecPtr(slot + 2)
	if err != nil {
		return db.Null, false, err
	}
	return blob, true, nil
}

func (s *Store) put(slot db.RecPtr, data []byte) error {
	if err := s.release(slot); err != nil {
		return err
	}
	if len(data) <= format.TypeSlotSize {
		return s.d.PutBytes(slot, data)
	}

	blob, err := s.a.Malloc(format.IntSize + len(data))
	if err != nil {
		return fmt.Errorf("%w: blob of %d bytes: %w", ErrMarshal, len(data), err)
	}
	if err := s.d.PutInt(blob, int32(len(data))); err != nil {
		return err
	}
	if err := s.d.PutBytes(blob+format.IntSize, data); err != nil {
		return err
	}
	if err := s.d.PutByte(slot, IndirectType); err != nil {
		return err
	}
	return s.d.PutRecPtr(slot+2, blob)
}

func (s *Store) get(slot db.RecPtr) ([]byte, error) {
	blob, indirect, err := s.Indirect(slot)
	if err != nil {
		return nil, err
	}
	if !indirect {
		return s.d.Bytes(slot, format.TypeSlotSize)
	}
	n, err := s.d.Int(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: blob %s: %w", ErrUnmarshal, blob, err)
	}
	if n < 0 || n > format.MaxAllocSize-format.IntSize {
		return nil, fmt.Errorf("%w: blob %s length %d", ErrUnmarshal, blob, n)
	}
	data, err := s.d.Bytes(blob+format.IntSize, int(n))
	if err != nil {
		return nil, fmt.Errorf("%w: blob %s: %w", ErrUnmarshal, blob, err)
	}
	return data, nil
}

func (s *Store) release(slot db.RecPtr) error {
	blob, indirect, err := s.Indirect(slot)
	if err != nil {
		return err
	}
	if indirect {
		if err := s.a.Free(blob); err != nil {
			return err
		}
	}
	return s.d.Zero(slot, format.TypeSlotSize)
}
