package alloc

import "github.com/joshuapare/symdb/db"

// Allocator hands out and reclaims record storage.
//
// Malloc returns a pointer to at least size zeroed bytes. Free releases a
// pointer previously returned by Malloc.
type Allocator interface {
	Malloc(size int) (db.RecPtr, error)
	Free(rec db.RecPtr) error
}

var _ Allocator = (*BlockAllocator)(nil)
