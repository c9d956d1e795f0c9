// Package format houses the on-disk layout of a symbol database file: chunk
// and block geometry, header offsets, and the little-endian helpers every
// higher layer uses to read and write records. It has no dependencies on the
// rest of the module so the layout can be reasoned about in one place.
package format

const (
	// ChunkSize is the size of every chunk in the file and the granularity of
	// in-memory caching. Chunk 0 is the header chunk.
	ChunkSize = 16384

	// MinBlockSize is the smallest block and the size-class granularity.
	// Every block size is a multiple of it.
	MinBlockSize = 16

	// BlockHeaderSize is the signed size word in front of every block.
	// Negative => allocated, positive => free.
	BlockHeaderSize = 4

	// MaxAllocSize is the largest payload a single Malloc can return.
	MaxAllocSize = ChunkSize - BlockHeaderSize

	// NumSizeClasses is the number of block-size classes (k = 1..NumSizeClasses).
	// Class k holds blocks of exactly k*MinBlockSize bytes.
	NumSizeClasses = ChunkSize / MinBlockSize

	// IntSize is the width of an int32 field.
	IntSize = 4

	// ShortSize is the width of an int16 / UTF-16 code unit.
	ShortSize = 2

	// PtrSize is the on-disk width of a record pointer.
	PtrSize = 4

	// VersionOffset is where the database version lives in chunk 0.
	VersionOffset = 0

	// FreeListTableOffset is the offset of the head pointer for class 1.
	// The head for class k lives at FreeListTableOffset + (k-1)*PtrSize == k*4.
	FreeListTableOffset = IntSize

	// DataArea is the first byte of chunk 0 past the free-list head table.
	DataArea = FreeListTableOffset + NumSizeClasses*PtrSize

	// MaxChunks bounds the chunk table so every offset fits a uint32 record pointer.
	MaxChunks = (1 << 32) / ChunkSize
)

// Free block layout, relative to the block start.
const (
	// FreeSizeOffset holds the positive block size.
	FreeSizeOffset = 0
	// FreePrevOffset holds the previous free block of the same class (0 = head).
	FreePrevOffset = BlockHeaderSize
	// FreeNextOffset holds the next free block of the same class (0 = tail).
	FreeNextOffset = BlockHeaderSize + PtrSize
)

// Ring list node record, relative to the payload start.
const (
	NodeItemOffset = 0
	NodePrevOffset = PtrSize
	NodeNextOffset = 2 * PtrSize
	NodeRecordSize = 3 * PtrSize
)

// String record layouts, relative to the payload start.
const (
	// StrLengthOffset holds the total length in UTF-16 code units.
	StrLengthOffset = 0

	// ShortCharsOffset is where the inline characters of a short string begin.
	ShortCharsOffset = IntSize

	// MaxShortLength is the longest string stored in a single block.
	MaxShortLength = (MaxAllocSize - ShortCharsOffset) / ShortSize

	// LongNextOffset is the continuation pointer in the first segment.
	LongNextOffset = IntSize
	// LongCharsOffset is where characters begin in the first segment.
	LongCharsOffset = IntSize + PtrSize
	// LongFirstChars is the number of code units carried by the first segment.
	LongFirstChars = (MaxAllocSize - LongCharsOffset) / ShortSize

	// SegNextOffset is the continuation pointer in every later segment.
	SegNextOffset = 0
	// SegCharsOffset is where characters begin in every later segment.
	SegCharsOffset = PtrSize
	// SegChars is the number of code units carried by a full later segment.
	SegChars = (MaxAllocSize - SegCharsOffset) / ShortSize
)

// TypeSlotSize is the inline width reserved in a record for a stored type:
// one tag byte, one alignment byte, one record pointer.
const TypeSlotSize = 2 + PtrSize
