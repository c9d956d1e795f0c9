package alloc

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/internal/format"
)

func newTestAllocator(t *testing.T) *BlockAllocator {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "heap.pdom"), &db.Options{DisableMmap: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return New(d)
}

func requireHead(t *testing.T, a *BlockAllocator, blockSize int, want db.RecPtr) {
	t.Helper()
	got, err := a.head(blockSize)
	require.NoError(t, err)
	require.Equal(t, want, got, "head of %d-byte list", blockSize)
}

func requireAccounting(t *testing.T, a *BlockAllocator) Stats {
	t.Helper()
	s, err := a.Stats()
	require.NoError(t, err)
	require.Equal(t, int64(s.Chunks-1)*format.ChunkSize, s.AllocatedBytes+s.FreeBytes)
	return s
}

func Test_Malloc_FirstAllocationGrowsAndSplits(t *testing.T) {
	a := newTestAllocator(t)

	rec, err := a.Malloc(12)
	require.NoError(t, err)
	require.Equal(t, db.RecPtr(format.ChunkSize+4), rec)
	require.Equal(t, 2, a.d.ChunkCount())

	word, err := a.d.Int(db.RecPtr(format.ChunkSize))
	require.NoError(t, err)
	require.Equal(t, int32(-16), word)

	// Tail of the fresh chunk sits on its own list.
	tail := db.RecPtr(format.ChunkSize + 16)
	requireHead(t, a, format.ChunkSize-16, tail)
	size, err := a.d.Int(tail)
	require.NoError(t, err)
	require.Equal(t, int32(format.ChunkSize-16), size)

	require.Equal(t, Counters{Mallocs: 1, Grows: 1, Splits: 1}, a.Counters())
	requireAccounting(t, a)
}

func Test_Malloc_SizeRounding(t *testing.T) {
	tests := []struct {
		size      int
		blockSize int
	}{
		{0, 16},
		{1, 16},
		{12, 16},
		{13, 32},
		{28, 32},
		{29, 48},
		{format.MaxAllocSize, format.ChunkSize},
	}
	for _, tt := range tests {
		a := newTestAllocator(t)
		rec, err := a.Malloc(tt.size)
		require.NoError(t, err)
		bs, err := a.BlockSize(rec)
		require.NoError(t, err)
		require.Equal(t, tt.blockSize, bs, "size %d", tt.size)
	}
}

func Test_Malloc_MaxSizeTakesWholeChunk(t *testing.T) {
	a := newTestAllocator(t)
	rec, err := a.Malloc(format.MaxAllocSize)
	require.NoError(t, err)
	require.Equal(t, db.RecPtr(format.ChunkSize+4), rec)
	require.Equal(t, uint64(0), a.Counters().Splits)

	s := requireAccounting(t, a)
	require.Equal(t, 0, s.FreeBlocks)
	require.Equal(t, 1, s.AllocatedBlocks)
}

func Test_Malloc_TooLargeHasNoSideEffects(t *testing.T) {
	a := newTestAllocator(t)
	_, err := a.Malloc(100)
	require.NoError(t, err)
	before, err := a.Stats()
	require.NoError(t, err)

	_, err = a.Malloc(format.MaxAllocSize + 1)
	require.ErrorIs(t, err, ErrAllocationTooLarge)
	_, err = a.Malloc(-1)
	require.ErrorIs(t, err, ErrInvalidSize)

	after, err := a.Stats()
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Equal(t, uint64(1), a.Counters().Mallocs)
}

func Test_Malloc_FirstFitAscendingClass(t *testing.T) {
	a := newTestAllocator(t)

	r32, err := a.Malloc(28) // 32-byte block
	require.NoError(t, err)
	r64, err := a.Malloc(60) // 64-byte block
	require.NoError(t, err)
	_, err = a.Malloc(12) // guard
	require.NoError(t, err)

	require.NoError(t, a.Free(r32))
	require.NoError(t, a.Free(r64))

	// No 16-byte blocks exist; the 32-byte block is the smallest that fits.
	rec, err := a.Malloc(12)
	require.NoError(t, err)
	require.Equal(t, r32, rec)
	bs, err := a.BlockSize(rec)
	require.NoError(t, err)
	require.Equal(t, 16, bs)

	// Its 16-byte tail went to the 16-byte list and is reused next.
	requireHead(t, a, 16, r32-4+16)
	rec, err = a.Malloc(12)
	require.NoError(t, err)
	require.Equal(t, r32+16, rec)

	// The 64-byte block is still waiting.
	requireHead(t, a, 64, r64-4)
	requireAccounting(t, a)
}

func Test_Malloc_ExactFitDoesNotSplit(t *testing.T) {
	a := newTestAllocator(t)
	r, err := a.Malloc(44)
	require.NoError(t, err)
	_, err = a.Malloc(4)
	require.NoError(t, err)
	require.NoError(t, a.Free(r))
	splits := a.Counters().Splits

	got, err := a.Malloc(44)
	require.NoError(t, err)
	require.Equal(t, r, got)
	require.Equal(t, splits, a.Counters().Splits)
	requireHead(t, a, 48, db.Null)
}

func Test_Malloc_ZeroFillsReusedBlock(t *testing.T) {
	a := newTestAllocator(t)
	rec, err := a.Malloc(100)
	require.NoError(t, err)

	junk := make([]byte, 100)
	for i := range junk {
		junk[i] = 0xFF
	}
	require.NoError(t, a.d.PutBytes(rec, junk))
	require.NoError(t, a.Free(rec))

	again, err := a.Malloc(100)
	require.NoError(t, err)
	require.Equal(t, rec, again)
	raw, err := a.d.Bytes(again, 100)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 100), raw)
}

func Test_Free_IsLIFOPerClass(t *testing.T) {
	a := newTestAllocator(t)
	var recs []db.RecPtr
	for range 4 {
		r, err := a.Malloc(20)
		require.NoError(t, err)
		recs = append(recs, r)
	}
	for _, r := range recs {
		require.NoError(t, a.Free(r))
	}

	list, err := a.FreeList(32)
	require.NoError(t, err)
	require.Equal(t, []db.RecPtr{recs[3] - 4, recs[2] - 4, recs[1] - 4, recs[0] - 4}, list)

	for i := 3; i >= 0; i-- {
		r, err := a.Malloc(20)
		require.NoError(t, err)
		require.Equal(t, recs[i], r)
	}
	requireHead(t, a, 32, db.Null)
}

func Test_Free_RemovesFromMiddleOfList(t *testing.T) {
	a := newTestAllocator(t)
	var recs []db.RecPtr
	for range 3 {
		r, err := a.Malloc(20)
		require.NoError(t, err)
		recs = append(recs, r)
	}
	for _, r := range recs {
		require.NoError(t, a.Free(r))
	}
	// Unlink the middle entry directly and check both neighbours are patched.
	require.NoError(t, a.removeBlock(recs[1]-4, 32))
	list, err := a.FreeList(32)
	require.NoError(t, err)
	require.Equal(t, []db.RecPtr{recs[2] - 4, recs[0] - 4}, list)

	prev, err := a.d.RecPtr(recs[0] - 4 + format.FreePrevOffset)
	require.NoError(t, err)
	require.Equal(t, recs[2]-4, prev)
}

func Test_Free_DoubleFreeLeavesStateUnchanged(t *testing.T) {
	a := newTestAllocator(t)
	r, err := a.Malloc(40)
	require.NoError(t, err)
	require.NoError(t, a.Free(r))

	before, err := a.Stats()
	require.NoError(t, err)
	head, err := a.head(48)
	require.NoError(t, err)

	err = a.Free(r)
	require.ErrorIs(t, err, ErrDoubleFree)

	after, err := a.Stats()
	require.NoError(t, err)
	require.Equal(t, before, after)
	requireHead(t, a, 48, head)
	require.Equal(t, uint64(1), a.Counters().Frees)
}

func Test_Free_RejectsBadPointers(t *testing.T) {
	a := newTestAllocator(t)
	r, err := a.Malloc(40)
	require.NoError(t, err)

	for _, bad := range []db.RecPtr{db.Null, 4, format.DataArea, r + 4, r + 16*1024*10} {
		require.ErrorIs(t, a.Free(bad), ErrBadRecPtr, "rec %s", bad)
	}
}

func Test_Clear_RebuildsChunkBlocks(t *testing.T) {
	a := newTestAllocator(t)
	require.NoError(t, a.d.SetVersion(3))

	// Fill three chunks.
	for range 3 {
		_, err := a.Malloc(format.MaxAllocSize)
		require.NoError(t, err)
	}
	for range 20 {
		_, err := a.Malloc(100)
		require.NoError(t, err)
	}
	chunks := a.d.ChunkCount()

	require.NoError(t, a.Clear())
	require.Equal(t, chunks, a.d.ChunkCount())
	v, err := a.d.Version()
	require.NoError(t, err)
	require.Equal(t, int32(3), v)

	s := requireAccounting(t, a)
	require.Equal(t, 0, s.AllocatedBlocks)
	require.Equal(t, chunks-1, s.FreeBlocks)
	require.Equal(t, map[int]int{format.ChunkSize: chunks - 1}, s.FreeByClass)

	// Lowest chunk first, and only the chunk-sized list is populated.
	list, err := a.FreeList(format.ChunkSize)
	require.NoError(t, err)
	require.Len(t, list, chunks-1)
	for i, p := range list {
		require.Equal(t, db.RecPtr(format.ChunkStart(i+1)), p)
	}
	for bs := format.MinBlockSize; bs < format.ChunkSize; bs += format.MinBlockSize {
		requireHead(t, a, bs, db.Null)
	}

	rec, err := a.Malloc(12)
	require.NoError(t, err)
	require.Equal(t, db.RecPtr(format.ChunkSize+4), rec)
	require.Equal(t, chunks, a.d.ChunkCount())
}

func Test_Clear_EmptyHeap(t *testing.T) {
	a := newTestAllocator(t)
	require.NoError(t, a.Clear())
	s := requireAccounting(t, a)
	require.Equal(t, 1, s.Chunks)
	require.Zero(t, s.FreeBlocks)
}

func Test_Malloc_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.pdom")
	d, err := db.Open(path, nil)
	require.NoError(t, err)
	a := New(d)
	r1, err := a.Malloc(30)
	require.NoError(t, err)
	r2, err := a.Malloc(30)
	require.NoError(t, err)
	require.NoError(t, a.Free(r1))
	require.NoError(t, d.Close())

	d, err = db.Open(path, nil)
	require.NoError(t, err)
	defer d.Close()
	a = New(d)

	got, err := a.Malloc(30)
	require.NoError(t, err)
	require.Equal(t, r1, got)
	bs, err := a.BlockSize(r2)
	require.NoError(t, err)
	require.Equal(t, 48, bs)
}

// Test_Property_RandomWorkload mixes mallocs and frees and checks after every
// step that live payloads never overlap, every pointer is non-null, and the
// block accounting covers each data chunk exactly.
func Test_Property_RandomWorkload(t *testing.T) {
	a := newTestAllocator(t)
	rng := rand.New(rand.NewSource(7))

	type live struct {
		rec  db.RecPtr
		size int
	}
	var lives []live

	overlaps := func(x, y live) bool {
		return x.rec < y.rec.Add(y.size) && y.rec < x.rec.Add(x.size)
	}

	for step := range 600 {
		if len(lives) > 0 && rng.Intn(3) == 0 {
			i := rng.Intn(len(lives))
			require.NoError(t, a.Free(lives[i].rec))
			lives[i] = lives[len(lives)-1]
			lives = lives[:len(lives)-1]
		} else {
			var size int
			switch rng.Intn(10) {
			case 0:
				size = 2000 + rng.Intn(format.MaxAllocSize-2000)
			default:
				size = rng.Intn(200)
			}
			rec, err := a.Malloc(size)
			require.NoError(t, err)
			require.False(t, rec.IsNull())
			n := live{rec: rec, size: max(size, 1)}
			for _, o := range lives {
				require.False(t, overlaps(n, o), "step %d: %s+%d overlaps %s+%d", step, n.rec, n.size, o.rec, o.size)
			}
			lives = append(lives, n)
		}
		if step%25 == 0 {
			s := requireAccounting(t, a)
			require.Equal(t, len(lives), s.AllocatedBlocks)
		}
	}

	s := requireAccounting(t, a)
	require.Equal(t, len(lives), s.AllocatedBlocks)
	t.Logf("chunks=%d allocated=%d free=%d", s.Chunks, s.AllocatedBlocks, s.FreeBlocks)
}
