package strstore

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/db/alloc"
	"github.com/joshuapare/symdb/internal/format"
)

// MaxShortLength is the longest string, in UTF-16 code units, that is stored
// in a single block.
const MaxShortLength = format.MaxShortLength

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encode returns text as UTF-16LE bytes. Invalid UTF-8 becomes U+FFFD.
func Encode(text string) ([]byte, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("strstore: encode: %w", err)
	}
	return b, nil
}

// Decode turns UTF-16LE bytes back into a Go string.
func Decode(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("strstore: decode: %w", err)
	}
	return string(out), nil
}

// Store reads and writes string records.
type Store struct {
	d *db.Database
	a alloc.Allocator
}

// New returns a store that allocates from a over d.
func New(d *db.Database, a alloc.Allocator) *Store {
	return &Store{d: d, a: a}
}

// New stores text and returns the record pointer of its first block.
func (s *Store) New(text string) (db.RecPtr, error) {
	units, err := Encode(text)
	if err != nil {
		return db.Null, err
	}
	n := len(units) / format.ShortSize
	if n <= MaxShortLength {
		return s.newShort(units, n)
	}
	return s.newLong(units, n)
}

func (s *Store) newShort(units []byte, n int) (db.RecPtr, error) {
	p, err := s.a.Malloc(format.ShortCharsOffset + len(units))
	if err != nil {
		return db.Null, err
	}
	if err := s.d.PutInt(p+format.StrLengthOffset, int32(n)); err != nil {
		return db.Null, err
	}
	if err := s.d.PutBytes(p+format.ShortCharsOffset, units); err != nil {
		return db.Null, err
	}
	return p, nil
}

func (s *Store) newLong(units []byte, n int) (db.RecPtr, error) {
	first, err := s.a.Malloc(format.LongCharsOffset + format.LongFirstChars*format.ShortSize)
	if err != nil {
		return db.Null, err
	}
	if err := s.d.PutInt(first+format.StrLengthOffset, int32(n)); err != nil {
		return db.Null, err
	}
	cut := format.LongFirstChars * format.ShortSize
	if err := s.d.PutBytes(first+format.LongCharsOffset, units[:cut]); err != nil {
		return db.Null, err
	}
	units = units[cut:]

	link := first + format.LongNextOffset
	for len(units) > 0 {
		take := min(len(units), format.SegChars*format.ShortSize)
		seg, err := s.a.Malloc(format.SegCharsOffset + take)
		if err != nil {
			return db.Null, err
		}
		if err := s.d.PutRecPtr(link, seg); err != nil {
			return db.Null, err
		}
		if err := s.d.PutBytes(seg+format.SegCharsOffset, units[:take]); err != nil {
			return db.Null, err
		}
		// Malloc zeroed the link, so the newest segment already ends the chain.
		link = seg + format.SegNextOffset
		units = units[take:]
	}
	return first, nil
}

// Len returns the length of the string at p in UTF-16 code units.
func (s *Store) Len(p db.RecPtr) (int, error) {
	n, err := s.d.Int(p + format.StrLengthOffset)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: length %d at %s", ErrCorruptString, n, p)
	}
	return int(n), nil
}

// segments calls fn with the live UTF-16LE bytes of each segment of the
// string at p, in order. fn must not retain or modify the slice.
func (s *Store) segments(p db.RecPtr, fn func(seg db.RecPtr, units []byte) error) error {
	n, err := s.Len(p)
	if err != nil {
		return err
	}
	if n <= MaxShortLength {
		units, err := s.slice(p, p+format.ShortCharsOffset, n)
		if err != nil {
			return err
		}
		return fn(p, units)
	}

	units, err := s.slice(p, p+format.LongCharsOffset, format.LongFirstChars)
	if err != nil {
		return err
	}
	if err := fn(p, units); err != nil {
		return err
	}
	next, err := s.d.RecPtr(p + format.LongNextOffset)
	if err != nil {
		return err
	}
	for rem := n - format.LongFirstChars; rem > 0; {
		if next.IsNull() {
			return fmt.Errorf("%w: chain at %s ends %d units short", ErrCorruptString, p, rem)
		}
		take := min(rem, format.SegChars)
		units, err := s.slice(next, next+format.SegCharsOffset, take)
		if err != nil {
			return err
		}
		if err := fn(next, units); err != nil {
			return err
		}
		rem -= take
		if next, err = s.d.RecPtr(next + format.SegNextOffset); err != nil {
			return err
		}
	}
	if !next.IsNull() {
		return fmt.Errorf("%w: chain at %s continues past its length", ErrCorruptString, p)
	}
	return nil
}

func (s *Store) slice(seg, at db.RecPtr, units int) ([]byte, error) {
	c, err := s.d.Chunk(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: segment %s: %w", ErrCorruptString, seg, err)
	}
	n := units * format.ShortSize
	if !c.Contains(at, n) {
		return nil, fmt.Errorf("%w: %d units at %s overrun the chunk", ErrCorruptString, units, at)
	}
	return c.Slice(at, n), nil
}

// Units returns the raw UTF-16LE bytes of the string at p.
func (s *Store) Units(p db.RecPtr) ([]byte, error) {
	var out []byte
	err := s.segments(p, func(_ db.RecPtr, units []byte) error {
		out = append(out, units...)
		return nil
	})
	return out, err
}

// Get materializes the string at p.
func (s *Store) Get(p db.RecPtr) (string, error) {
	units, err := s.Units(p)
	if err != nil {
		return "", err
	}
	return Decode(units)
}

// Delete frees every block of the string at p.
func (s *Store) Delete(p db.RecPtr) error {
	var segs []db.RecPtr
	if err := s.segments(p, func(seg db.RecPtr, _ []byte) error {
		segs = append(segs, seg)
		return nil
	}); err != nil {
		return err
	}
	for _, seg := range segs {
		if err := s.a.Free(seg); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether the string at p equals text. Strings of different
// length are rejected without reading their characters.
func (s *Store) Equal(p db.RecPtr, text string) (bool, error) {
	want, err := Encode(text)
	if err != nil {
		return false, err
	}
	n, err := s.Len(p)
	if err != nil {
		return false, err
	}
	if n != len(want)/format.ShortSize {
		return false, nil
	}
	equal := true
	err = s.segments(p, func(_ db.RecPtr, units []byte) error {
		if equal && !bytes.Equal(units, want[:len(units)]) {
			equal = false
		}
		want = want[len(units):]
		return nil
	})
	return equal && err == nil, err
}

// Compare orders the string at p against text by UTF-16 code unit, returning
// -1, 0 or +1.
func (s *Store) Compare(p db.RecPtr, text string) (int, error) {
	want, err := Encode(text)
	if err != nil {
		return 0, err
	}
	cmp := 0
	err = s.segments(p, func(_ db.RecPtr, units []byte) error {
		for i := 0; cmp == 0 && i < len(units); i += format.ShortSize {
			if len(want) == 0 {
				cmp = 1
				break
			}
			a, b := format.ReadU16(units, i), format.ReadU16(want, 0)
			switch {
			case a < b:
				cmp = -1
			case a > b:
				cmp = 1
			}
			want = want[format.ShortSize:]
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if cmp == 0 && len(want) > 0 {
		cmp = -1
	}
	return cmp, nil
}

// Hash returns the xxhash64 of the string's UTF-16LE bytes, read segment by
// segment.
func (s *Store) Hash(p db.RecPtr) (uint64, error) {
	h := xxhash.New()
	err := s.segments(p, func(_ db.RecPtr, units []byte) error {
		_, _ = h.Write(units)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// HashString returns the hash Hash would return for a record holding text.
func HashString(text string) (uint64, error) {
	units, err := Encode(text)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(units), nil
}
