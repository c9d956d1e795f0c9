package alloc

import (
	"fmt"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/internal/format"
)

func headOffset(blockSize int) db.RecPtr {
	return db.RecPtr(format.FreeListHeadOffset(blockSize))
}

// head returns the first free block of exactly blockSize bytes.
func (a *BlockAllocator) head(blockSize int) (db.RecPtr, error) {
	return a.d.RecPtr(headOffset(blockSize))
}

func (a *BlockAllocator) setHead(blockSize int, block db.RecPtr) error {
	return a.d.PutRecPtr(headOffset(blockSize), block)
}

// addBlock marks block free with the given size and pushes it onto the head
// of its size list.
func (a *BlockAllocator) addBlock(block db.RecPtr, blockSize int) error {
	old, err := a.head(blockSize)
	if err != nil {
		return err
	}
	c, err := a.d.Chunk(block)
	if err != nil {
		return err
	}
	if !c.Contains(block, blockSize) {
		return fmt.Errorf("%w: %d bytes at %s cross a chunk", ErrCorruptBlock, blockSize, block)
	}
	c.PutInt(block+format.FreeSizeOffset, int32(blockSize))
	c.PutRecPtr(block+format.FreePrevOffset, db.Null)
	c.PutRecPtr(block+format.FreeNextOffset, old)
	if !old.IsNull() {
		if err := a.d.PutRecPtr(old+format.FreePrevOffset, block); err != nil {
			return err
		}
	}
	return a.setHead(blockSize, block)
}

// removeBlock unlinks a free block of blockSize bytes from its size list.
func (a *BlockAllocator) removeBlock(block db.RecPtr, blockSize int) error {
	c, err := a.d.Chunk(block)
	if err != nil {
		return err
	}
	if !c.Contains(block, format.FreeNextOffset+format.PtrSize) {
		return fmt.Errorf("%w: free block at %s truncated", ErrCorruptBlock, block)
	}
	if got := c.Int(block + format.FreeSizeOffset); int(got) != blockSize {
		return fmt.Errorf("%w: free block at %s has size %d on the %d list", ErrCorruptBlock, block, got, blockSize)
	}
	prev := c.RecPtr(block + format.FreePrevOffset)
	next := c.RecPtr(block + format.FreeNextOffset)

	if prev.IsNull() {
		if err := a.setHead(blockSize, next); err != nil {
			return err
		}
	} else if err := a.d.PutRecPtr(prev+format.FreeNextOffset, next); err != nil {
		return err
	}
	if !next.IsNull() {
		if err := a.d.PutRecPtr(next+format.FreePrevOffset, prev); err != nil {
			return err
		}
	}
	return nil
}

// FreeList returns the blocks on the list for blockSize, head first.
// The walk stops with ErrCorruptBlock after more entries than the file could
// hold, so a cycle cannot hang it.
func (a *BlockAllocator) FreeList(blockSize int) ([]db.RecPtr, error) {
	if blockSize < format.MinBlockSize || blockSize > format.ChunkSize || blockSize%format.MinBlockSize != 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidSize, blockSize)
	}
	limit := int(a.d.Size() / format.MinBlockSize)
	var out []db.RecPtr
	p, err := a.head(blockSize)
	if err != nil {
		return nil, err
	}
	for !p.IsNull() {
		if len(out) > limit {
			return out, fmt.Errorf("%w: free list for size %d does not terminate", ErrCorruptBlock, blockSize)
		}
		out = append(out, p)
		if p, err = a.d.RecPtr(p + format.FreeNextOffset); err != nil {
			return out, err
		}
	}
	return out, nil
}
