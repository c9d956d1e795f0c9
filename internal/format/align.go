package format

// BlockSizeFor returns the smallest block size whose payload (size minus the
// 4-byte header) can hold n bytes.
//
// Example:
//
//	BlockSizeFor(0)  = 16
//	BlockSizeFor(12) = 16
//	BlockSizeFor(13) = 32
//	BlockSizeFor(MaxAllocSize) = ChunkSize
func BlockSizeFor(n int) int {
	return AlignBlock(n + BlockHeaderSize)
}

// AlignBlock returns n aligned up to the next MinBlockSize boundary.
func AlignBlock(n int) int {
	const mask = MinBlockSize - 1
	if n <= 0 {
		return MinBlockSize
	}
	return (n + mask) &^ mask
}

// SizeClass returns the class index k for a block size.
// The size must already be a multiple of MinBlockSize.
func SizeClass(blockSize int) int {
	return blockSize / MinBlockSize
}

// FreeListHeadOffset returns the chunk-0 offset of the free-list head for
// blocks of exactly blockSize bytes.
func FreeListHeadOffset(blockSize int) int {
	return SizeClass(blockSize) * PtrSize
}

// ChunkIndex maps an absolute offset to the index of the chunk covering it.
func ChunkIndex(off uint32) int {
	return int(off / ChunkSize)
}

// ChunkStart returns the absolute offset of chunk i.
func ChunkStart(i int) uint32 {
	return uint32(i) * ChunkSize
}
