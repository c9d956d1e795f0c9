// Package alloc implements the block allocator that carves a database file
// into variable-sized records.
//
// # Layout
//
// Every chunk after the header chunk is a run of blocks. A block starts with
// a signed int32 size word: negative while the block is allocated, positive
// while it is free. Block sizes are multiples of 16 bytes and never exceed
// one chunk, so a block never straddles a chunk boundary.
//
// Free blocks are kept on 1024 segregated lists, one per exact block size.
// The head pointer for the list of blocks of size 16*k lives at offset 4*k of
// the header chunk. A free block stores its list links right after the size
// word:
//
//	+0  size (positive)
//	+4  prev free block of the same size, 0 at the head
//	+8  next free block of the same size, 0 at the tail
//
// # Allocation
//
// Malloc rounds the request plus header up to a block size, then walks the
// size classes upward and takes the head of the first non-empty list. When
// every list is empty a fresh chunk is appended and used as one 16384-byte
// block. Whatever the chosen block has beyond the request is split off and
// pushed onto the list for its own size. The first size bytes of the payload
// are zeroed.
//
// Free pushes the block onto the head of its size list. Neighbouring free
// blocks are not coalesced.
//
// # Usage
//
//	d, err := db.Open(path, nil)
//	if err != nil {
//	    return err
//	}
//	a := alloc.New(d)
//	rec, err := a.Malloc(24)
//	if err != nil {
//	    return err
//	}
//	// ... write 24 bytes at rec ...
//	err = a.Free(rec)
//
// A BlockAllocator is not safe for concurrent use; the database has a single
// owner.
package alloc
