package verify

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/db/alloc"
	"github.com/joshuapare/symdb/internal/format"
)

func newHeap(t *testing.T) (*db.Database, *alloc.BlockAllocator) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "verify.pdom"), &db.Options{DisableMmap: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, alloc.New(d)
}

// churn runs a fixed random workload and returns the live records.
func churn(t *testing.T, a *alloc.BlockAllocator) []db.RecPtr {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	var live []db.RecPtr
	for range 300 {
		if len(live) > 0 && rng.Intn(3) == 0 {
			i := rng.Intn(len(live))
			require.NoError(t, a.Free(live[i]))
			live = append(live[:i], live[i+1:]...)
			continue
		}
		p, err := a.Malloc(rng.Intn(600))
		require.NoError(t, err)
		live = append(live, p)
	}
	return live
}

func requireViolation(t *testing.T, err error, kind string) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	require.Equal(t, kind, ve.Type)
	return ve
}

func Test_All_HealthyHeap(t *testing.T) {
	d, a := newHeap(t)
	r, err := All(d)
	require.NoError(t, err)
	require.Equal(t, 1, r.Chunks)

	live := churn(t, a)
	r, err = All(d)
	require.NoError(t, err)

	s, err := a.Stats()
	require.NoError(t, err)
	require.Equal(t, len(live), r.AllocatedBlocks)
	require.Equal(t, s.FreeBlocks, r.FreeBlocks)
	require.Equal(t, r.FreeBlocks, r.ListedFree)
	require.Equal(t, s.AllocatedBytes, r.AllocatedBytes)

	require.NoError(t, a.Clear())
	r, err = All(d)
	require.NoError(t, err)
	require.Zero(t, r.AllocatedBlocks)
	require.Equal(t, d.ChunkCount()-1, r.FreeBlocks)
}

func Test_Blocks_ZeroSizeWord(t *testing.T) {
	d, a := newHeap(t)
	p, err := a.Malloc(40)
	require.NoError(t, err)
	require.NoError(t, d.PutInt(p-4, 0))

	ve := requireViolation(t, Blocks(d), "Blocks")
	require.Equal(t, int64(p-4), ve.Offset)
}

func Test_Blocks_MisalignedAndOverrun(t *testing.T) {
	d, a := newHeap(t)
	p, err := a.Malloc(40)
	require.NoError(t, err)

	require.NoError(t, d.PutInt(p-4, -40))
	requireViolation(t, Blocks(d), "Blocks")

	require.NoError(t, d.PutInt(p-4, -2*format.ChunkSize))
	requireViolation(t, Blocks(d), "Blocks")
}

func Test_FreeLists_UnlistedFreeBlock(t *testing.T) {
	d, a := newHeap(t)
	p, err := a.Malloc(40)
	require.NoError(t, err)
	_, err = a.Malloc(40)
	require.NoError(t, err)

	// Flip the size word without listing the block.
	require.NoError(t, d.PutInt(p-4, 48))
	ve := requireViolation(t, FreeLists(d), "FreeLists")
	require.Equal(t, int64(p-4), ve.Offset)
}

func Test_FreeLists_BrokenLinks(t *testing.T) {
	d, a := newHeap(t)
	var recs []db.RecPtr
	for range 3 {
		p, err := a.Malloc(40)
		require.NoError(t, err)
		recs = append(recs, p)
	}
	_, err := a.Malloc(40)
	require.NoError(t, err)
	for _, p := range recs {
		require.NoError(t, a.Free(p))
	}
	require.NoError(t, FreeLists(d))

	// List order is recs[2], recs[1], recs[0]; break a prev link.
	require.NoError(t, d.PutRecPtr(recs[0]-4+format.FreePrevOffset, db.Null))
	requireViolation(t, FreeLists(d), "FreeLists")
	require.NoError(t, d.PutRecPtr(recs[0]-4+format.FreePrevOffset, recs[1]-4))
	require.NoError(t, FreeLists(d))

	// A self loop.
	require.NoError(t, d.PutRecPtr(recs[0]-4+format.FreeNextOffset, recs[0]-4))
	requireViolation(t, FreeLists(d), "FreeLists")
}

func Test_FreeLists_WrongClass(t *testing.T) {
	d, a := newHeap(t)
	p, err := a.Malloc(40)
	require.NoError(t, err)
	_, err = a.Malloc(40)
	require.NoError(t, err)
	require.NoError(t, a.Free(p))

	// Move the 48-byte block to the 64-byte list.
	require.NoError(t, d.PutRecPtr(db.RecPtr(format.FreeListHeadOffset(48)), db.Null))
	require.NoError(t, d.PutRecPtr(db.RecPtr(format.FreeListHeadOffset(64)), p-4))
	ve := requireViolation(t, FreeLists(d), "FreeLists")
	require.Contains(t, ve.Message, "48 bytes")
}

func Test_ValidationError_Format(t *testing.T) {
	e := &ValidationError{Type: "Blocks", Message: "bad", Offset: 0x4010}
	require.Equal(t, "Blocks at offset 0x4010: bad", e.Error())
	e.Offset = -1
	require.Equal(t, "Blocks: bad", e.Error())
}
