package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/internal/format"
)

// Counters are running totals of allocator activity since New.
type Counters struct {
	Mallocs uint64 // successful Malloc calls
	Frees   uint64 // successful Free calls
	Grows   uint64 // chunks appended to satisfy a Malloc
	Splits  uint64 // blocks whose tail was returned to a free list
}

// BlockAllocator is the segregated free-list allocator over a database.
type BlockAllocator struct {
	d   *db.Database
	log *slog.Logger
	c   Counters
}

// New returns an allocator over d. The free-list table in d's header chunk
// is the allocator's only state, so any number of allocators over the same
// database observe the same heap.
func New(d *db.Database) *BlockAllocator {
	return &BlockAllocator{d: d, log: d.Logger().With("component", "alloc")}
}

// Database returns the database the allocator carves.
func (a *BlockAllocator) Database() *db.Database { return a.d }

// Counters returns a snapshot of the activity counters.
func (a *BlockAllocator) Counters() Counters { return a.c }

// Malloc returns a record pointer to size zeroed bytes.
//
// The request is rounded up to a block size, the size classes are searched
// upward for the first non-empty list, and a fresh chunk is appended when all
// of them are empty. A request above format.MaxAllocSize fails with
// ErrAllocationTooLarge and changes nothing.
func (a *BlockAllocator) Malloc(size int) (db.RecPtr, error) {
	if size < 0 {
		return db.Null, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size > format.MaxAllocSize {
		return db.Null, fmt.Errorf("%w: %d > %d", ErrAllocationTooLarge, size, format.MaxAllocSize)
	}
	need := format.BlockSizeFor(size)

	var block db.RecPtr
	blockSize := 0
	for bs := need; bs <= format.ChunkSize; bs += format.MinBlockSize {
		h, err := a.head(bs)
		if err != nil {
			return db.Null, err
		}
		if !h.IsNull() {
			block, blockSize = h, bs
			break
		}
	}

	if block.IsNull() {
		start, err := a.d.GrowChunk()
		if err != nil {
			return db.Null, err
		}
		block, blockSize = start, format.ChunkSize
		a.c.Grows++
		a.log.Debug("grew heap", "chunk", format.ChunkIndex(uint32(start)), "need", need)
	} else if err := a.removeBlock(block, blockSize); err != nil {
		return db.Null, err
	}

	if rest := blockSize - need; rest > 0 {
		if err := a.addBlock(block.Add(need), rest); err != nil {
			return db.Null, err
		}
		a.c.Splits++
	}

	c, err := a.d.Chunk(block)
	if err != nil {
		return db.Null, err
	}
	c.PutInt(block, int32(-need))
	rec := block.Add(format.BlockHeaderSize)
	c.Zero(rec, size)
	a.c.Mallocs++
	return rec, nil
}

// block validates rec as a payload pointer and returns its block offset and
// raw size word.
func (a *BlockAllocator) block(rec db.RecPtr) (db.RecPtr, int32, error) {
	block := rec - format.BlockHeaderSize
	if rec < format.ChunkSize+format.BlockHeaderSize || block%format.MinBlockSize != 0 {
		return db.Null, 0, fmt.Errorf("%w: %s", ErrBadRecPtr, rec)
	}
	c, err := a.d.Chunk(block)
	if err != nil {
		return db.Null, 0, fmt.Errorf("%w: %w", ErrBadRecPtr, err)
	}
	word := c.Int(block)
	size := int(word)
	if size < 0 {
		size = -size
	}
	if size < format.MinBlockSize || size%format.MinBlockSize != 0 || !c.Contains(block, size) {
		return db.Null, 0, fmt.Errorf("%w: size word %d at %s", ErrCorruptBlock, word, block)
	}
	return block, word, nil
}

// Free returns the block behind rec to the head of its size list.
// Freeing a block that is already free fails with ErrDoubleFree and leaves
// the heap untouched.
func (a *BlockAllocator) Free(rec db.RecPtr) error {
	block, word, err := a.block(rec)
	if err != nil {
		return err
	}
	if word > 0 {
		return fmt.Errorf("%w: %s", ErrDoubleFree, rec)
	}
	if err := a.addBlock(block, int(-word)); err != nil {
		return err
	}
	a.c.Frees++
	return nil
}

// BlockSize returns the size of the allocated block behind rec, header
// included. The usable payload is BlockSize - 4 bytes.
func (a *BlockAllocator) BlockSize(rec db.RecPtr) (int, error) {
	_, word, err := a.block(rec)
	if err != nil {
		return 0, err
	}
	if word > 0 {
		return 0, fmt.Errorf("%w: %s is free", ErrBadRecPtr, rec)
	}
	return int(-word), nil
}

// Clear drops every allocation. The free-list table is zeroed and each data
// chunk becomes one free chunk-sized block, added from the last chunk to the
// first so the lowest chunk ends up at the head. The chunk count and the
// stored version do not change.
func (a *BlockAllocator) Clear() error {
	if err := a.d.Zero(format.FreeListTableOffset, format.NumSizeClasses*format.PtrSize); err != nil {
		return err
	}
	for i := a.d.ChunkCount() - 1; i >= 1; i-- {
		if err := a.addBlock(db.RecPtr(format.ChunkStart(i)), format.ChunkSize); err != nil {
			return err
		}
	}
	a.log.Debug("cleared heap", "chunks", a.d.ChunkCount())
	return nil
}
