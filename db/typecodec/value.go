package typecodec

import (
	"fmt"
	"math"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/db/strstore"
	"github.com/joshuapare/symdb/internal/format"
)

// Value is a compile-time constant such as an array bound or a template
// argument. Repr is its symbolic text. Unknowns are the entities the
// expression refers to that were not yet resolved when it was recorded;
// a nil entry marks one the resolver could not store.
type Value struct {
	Repr     string
	Unknowns []Entity
}

// PutValue appends v as
//
//	int16 repr length (UTF-16 units), int16 unknown count,
//	repr units, one record pointer per unknown (0 when unresolved)
func (b *Buffer) PutValue(v *Value) error {
	if v == nil {
		return fmt.Errorf("%w: nil value", ErrMarshal)
	}
	if err := b.enter(ErrMarshal); err != nil {
		return err
	}
	defer b.leave()

	units, err := strstore.Encode(v.Repr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	n := len(units) / format.ShortSize
	if n > math.MaxInt16 {
		return fmt.Errorf("%w: value repr of %d units", ErrMarshal, n)
	}
	if len(v.Unknowns) > math.MaxInt16 {
		return fmt.Errorf("%w: %d unknown bindings", ErrMarshal, len(v.Unknowns))
	}

	recs := make([]db.RecPtr, len(v.Unknowns))
	for i, e := range v.Unknowns {
		if e == nil {
			continue
		}
		if recs[i], err = b.record(e); err != nil {
			return err
		}
	}

	b.PutShort(int16(n))
	b.PutShort(int16(len(recs)))
	b.putBytes(units)
	for _, p := range recs {
		b.PutRecPtr(p)
	}
	return nil
}

// GetValue reads a value written by PutValue. Unresolved unknowns come back
// as nil entries.
func (b *Buffer) GetValue() (*Value, error) {
	if err := b.enter(ErrUnmarshal); err != nil {
		return nil, err
	}
	defer b.leave()

	n, err := b.GetShort()
	if err != nil {
		return nil, err
	}
	count, err := b.GetShort()
	if err != nil {
		return nil, err
	}
	if n < 0 || count < 0 {
		return nil, fmt.Errorf("%w: value header %d/%d", ErrUnmarshal, n, count)
	}
	units, err := b.getBytes(int(n) * format.ShortSize)
	if err != nil {
		return nil, err
	}
	repr, err := strstore.Decode(units)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}

	v := &Value{Repr: repr}
	if count > 0 {
		v.Unknowns = make([]Entity, count)
		for i := range v.Unknowns {
			p, err := b.GetRecPtr()
			if err != nil {
				return nil, err
			}
			if p.IsNull() {
				continue
			}
			if v.Unknowns[i], err = b.entity(p); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

// putString writes an int16 unit count followed by the UTF-16 units.
func (b *Buffer) putString(s string) error {
	units, err := strstore.Encode(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	n := len(units) / format.ShortSize
	if n > math.MaxInt16 {
		return fmt.Errorf("%w: string of %d units", ErrMarshal, n)
	}
	b.PutShort(int16(n))
	b.putBytes(units)
	return nil
}

func (b *Buffer) getString() (string, error) {
	n, err := b.GetShort()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: string length %d", ErrUnmarshal, n)
	}
	units, err := b.getBytes(int(n) * format.ShortSize)
	if err != nil {
		return "", err
	}
	s, err := strstore.Decode(units)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnmarshal, err)
	}
	return s, nil
}

// MarshalValue encodes v into a fresh byte slice.
func MarshalValue(r Resolver, v *Value) ([]byte, error) {
	b := NewBuffer(r)
	if err := b.PutValue(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalValue decodes the single value at the start of data.
func UnmarshalValue(r Resolver, data []byte) (*Value, error) {
	return NewReader(r, data).GetValue()
}
