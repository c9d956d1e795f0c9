package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockSizeFor(t *testing.T) {
	tests := []struct {
		need int
		want int
	}{
		{0, 16},
		{1, 16},
		{12, 16},
		{13, 32},
		{28, 32},
		{29, 48},
		{MaxAllocSize - 1, ChunkSize},
		{MaxAllocSize, ChunkSize},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, BlockSizeFor(tt.need), "need=%d", tt.need)
	}
}

func TestFreeListTableGeometry(t *testing.T) {
	require.Equal(t, 4, FreeListHeadOffset(MinBlockSize))
	require.Equal(t, 4096, FreeListHeadOffset(ChunkSize))
	require.Equal(t, 4100, DataArea)
	require.Equal(t, 1024, NumSizeClasses)
	require.Less(t, DataArea, ChunkSize)
}

func TestStringGeometry(t *testing.T) {
	require.Equal(t, 8188, MaxShortLength)
	require.Equal(t, 8186, LongFirstChars)
	require.Equal(t, 8188, SegChars)
	// A full short string must fit in one block.
	require.LessOrEqual(t, ShortCharsOffset+MaxShortLength*ShortSize, MaxAllocSize)
	require.LessOrEqual(t, LongCharsOffset+LongFirstChars*ShortSize, MaxAllocSize)
}

func TestChunkIndex(t *testing.T) {
	require.Equal(t, 0, ChunkIndex(0))
	require.Equal(t, 0, ChunkIndex(ChunkSize-1))
	require.Equal(t, 1, ChunkIndex(ChunkSize))
	require.Equal(t, uint32(3*ChunkSize), ChunkStart(3))
}

func TestEncodingRoundTrip(t *testing.T) {
	b := make([]byte, 8)
	PutI32(b, 0, -16)
	require.Equal(t, int32(-16), ReadI32(b, 0))
	require.Equal(t, []byte{0xF0, 0xFF, 0xFF, 0xFF}, b[:4])

	PutI16(b, 4, -2)
	require.Equal(t, int16(-2), ReadI16(b, 4))
	PutU16(b, 6, 0xBEEF)
	require.Equal(t, uint16(0xBEEF), ReadU16(b, 6))
}
