// Package verify checks the heap invariants of a database file. It reads the
// file through the db accessors only, so it does not depend on the allocator
// it is checking.
package verify

import (
	"fmt"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/internal/format"
)

// ValidationError describes the first invariant a check found broken.
type ValidationError struct {
	Type    string
	Message string
	Offset  int64 // -1 when the failure has no single location
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func fail(kind string, off db.RecPtr, msg string, args ...any) error {
	return &ValidationError{Type: kind, Message: fmt.Sprintf(msg, args...), Offset: int64(off)}
}

// Report is the heap summary gathered while checking.
type Report struct {
	Chunks          int
	AllocatedBlocks int
	AllocatedBytes  int64
	FreeBlocks      int
	FreeBytes       int64
	ListedFree      int // free blocks reachable from the free-list table
}

// scan is one block walk over every data chunk.
type scan struct {
	Report
	free map[db.RecPtr]int // free block -> size
}

// All runs Blocks, FreeLists and Accounting and returns the first failure.
func All(d *db.Database) (Report, error) {
	s, err := walk(d)
	if err != nil {
		return s.Report, err
	}
	if err := freeLists(d, s); err != nil {
		return s.Report, err
	}
	return s.Report, accounting(s)
}

// Blocks checks that every data chunk is tiled by blocks whose size words are
// nonzero multiples of 16 that stay inside the chunk.
func Blocks(d *db.Database) error {
	_, err := walk(d)
	return err
}

// FreeLists checks every size-class list: links mirror each other, each
// member is a free block of exactly that class, no list loops, and every free
// block found by the block walk is listed.
func FreeLists(d *db.Database) error {
	s, err := walk(d)
	if err != nil {
		return err
	}
	return freeLists(d, s)
}

// Accounting checks allocated + free bytes == (chunks-1) * ChunkSize.
func Accounting(d *db.Database) error {
	s, err := walk(d)
	if err != nil {
		return err
	}
	return accounting(s)
}

func walk(d *db.Database) (*scan, error) {
	s := &scan{Report: Report{Chunks: d.ChunkCount()}, free: make(map[db.RecPtr]int)}
	for i := 1; i < d.ChunkCount(); i++ {
		start := db.RecPtr(format.ChunkStart(i))
		end := start.Add(format.ChunkSize)
		for off := start; off < end; {
			word, err := d.Int(off)
			if err != nil {
				return s, fail("Blocks", off, "unreadable size word: %v", err)
			}
			size := int(word)
			if size < 0 {
				size = -size
			}
			switch {
			case size == 0:
				return s, fail("Blocks", off, "zero size word")
			case size%format.MinBlockSize != 0:
				return s, fail("Blocks", off, "size %d is not a multiple of %d", size, format.MinBlockSize)
			case int64(off)+int64(size) > int64(end):
				return s, fail("Blocks", off, "block of %d bytes overruns chunk %d", size, i)
			}
			if word > 0 {
				s.FreeBlocks++
				s.FreeBytes += int64(size)
				s.free[off] = size
			} else {
				s.AllocatedBlocks++
				s.AllocatedBytes += int64(size)
			}
			off = off.Add(size)
		}
	}
	return s, nil
}

func freeLists(d *db.Database, s *scan) error {
	listed := make(map[db.RecPtr]bool, len(s.free))
	for k := 1; k <= format.NumSizeClasses; k++ {
		size := k * format.MinBlockSize
		slot := db.RecPtr(format.FreeListHeadOffset(size))
		p, err := d.RecPtr(slot)
		if err != nil {
			return fail("FreeLists", slot, "unreadable head: %v", err)
		}
		prev := db.Null
		for !p.IsNull() {
			got, ok := s.free[p]
			switch {
			case !ok:
				return fail("FreeLists", p, "list for size %d links a non-free or unaligned block", size)
			case got != size:
				return fail("FreeLists", p, "block of %d bytes on the list for %d", got, size)
			case listed[p]:
				return fail("FreeLists", p, "block listed twice or list for size %d loops", size)
			}
			listed[p] = true
			back, err := d.RecPtr(p + format.FreePrevOffset)
			if err != nil {
				return fail("FreeLists", p, "unreadable prev: %v", err)
			}
			if back != prev {
				return fail("FreeLists", p, "prev is %s, expected %s", back, prev)
			}
			prev = p
			if p, err = d.RecPtr(p + format.FreeNextOffset); err != nil {
				return fail("FreeLists", prev, "unreadable next: %v", err)
			}
		}
	}
	s.ListedFree = len(listed)
	if len(listed) != len(s.free) {
		for off, size := range s.free {
			if !listed[off] {
				return fail("FreeLists", off, "free block of %d bytes is on no list", size)
			}
		}
	}
	return nil
}

func accounting(s *scan) error {
	want := int64(s.Chunks-1) * format.ChunkSize
	if got := s.AllocatedBytes + s.FreeBytes; got != want {
		return &ValidationError{
			Type:    "Accounting",
			Message: fmt.Sprintf("allocated %d + free %d = %d, expected %d", s.AllocatedBytes, s.FreeBytes, got, want),
			Offset:  -1,
		}
	}
	return nil
}
