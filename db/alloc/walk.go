package alloc

import (
	"fmt"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/internal/format"
)

// Block describes one block found by Walk.
type Block struct {
	Offset db.RecPtr // block start, the size word
	Size   int       // bytes including the size word
	Free   bool
}

// Payload returns the record pointer Malloc handed out for the block.
func (b Block) Payload() db.RecPtr { return b.Offset.Add(format.BlockHeaderSize) }

// Walk visits every block of every data chunk in file order. It stops at the
// first size word that breaks the chunk layout, or when fn returns an error.
func (a *BlockAllocator) Walk(fn func(Block) error) error {
	for i := 1; i < a.d.ChunkCount(); i++ {
		start := db.RecPtr(format.ChunkStart(i))
		c, err := a.d.Chunk(start)
		if err != nil {
			return err
		}
		end := start.Add(format.ChunkSize)
		for off := start; off < end; {
			word := c.Int(off)
			size := int(word)
			if size < 0 {
				size = -size
			}
			if size < format.MinBlockSize || size%format.MinBlockSize != 0 || !c.Contains(off, size) {
				return fmt.Errorf("%w: size word %d at %s", ErrCorruptBlock, word, off)
			}
			if err := fn(Block{Offset: off, Size: size, Free: word > 0}); err != nil {
				return err
			}
			off = off.Add(size)
		}
	}
	return nil
}

// Stats summarizes the heap.
type Stats struct {
	Chunks          int   // chunks in the file, header included
	FileBytes       int64 // file size
	AllocatedBlocks int
	AllocatedBytes  int64 // block bytes, headers included
	FreeBlocks      int
	FreeBytes       int64
	LargestFree     int
	FreeByClass     map[int]int // block size -> free blocks of that size

	Counters
}

// Stats walks the heap and returns its current accounting. For a consistent
// heap AllocatedBytes + FreeBytes == (Chunks-1) * format.ChunkSize.
func (a *BlockAllocator) Stats() (Stats, error) {
	s := Stats{
		Chunks:      a.d.ChunkCount(),
		FileBytes:   a.d.Size(),
		FreeByClass: make(map[int]int),
		Counters:    a.c,
	}
	err := a.Walk(func(b Block) error {
		if b.Free {
			s.FreeBlocks++
			s.FreeBytes += int64(b.Size)
			s.FreeByClass[b.Size]++
			s.LargestFree = max(s.LargestFree, b.Size)
		} else {
			s.AllocatedBlocks++
			s.AllocatedBytes += int64(b.Size)
		}
		return nil
	})
	return s, err
}
