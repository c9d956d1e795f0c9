package alloc

import "errors"

var (
	// ErrAllocationTooLarge indicates a request larger than one chunk can hold.
	ErrAllocationTooLarge = errors.New("alloc: allocation larger than a chunk")

	// ErrInvalidSize indicates a negative request size.
	ErrInvalidSize = errors.New("alloc: negative allocation size")

	// ErrDoubleFree indicates Free on a block whose size word is already positive.
	ErrDoubleFree = errors.New("alloc: block is already free")

	// ErrBadRecPtr indicates a record pointer that cannot be a block payload.
	ErrBadRecPtr = errors.New("alloc: bad record pointer")

	// ErrCorruptBlock indicates a size word or free-list link that breaks the
	// block layout.
	ErrCorruptBlock = errors.New("alloc: corrupt block")
)
