package typecodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/symdb/db"
	"github.com/joshuapare/symdb/internal/format"
)

func Test_Buffer_StartsAtSlotSizeAndDoubles(t *testing.T) {
	b := NewBuffer(nil)
	require.Equal(t, format.TypeSlotSize, b.Cap())
	require.Zero(t, b.Position())

	b.PutShort(1)
	b.PutInt(2)
	require.Equal(t, 6, b.Cap())
	b.PutByte(3)
	require.Equal(t, 12, b.Cap())
	b.PutRecPtr(4)
	b.PutRecPtr(5)
	require.Equal(t, 24, b.Cap())
	require.Equal(t, 15, b.Position())
}

func Test_Buffer_PrimitivesRoundTrip(t *testing.T) {
	w := NewBuffer(nil)
	w.PutByte(0xAB)
	w.PutShort(-300)
	w.PutInt(-70000)
	w.PutRecPtr(db.RecPtr(0xFFFFFFF0))

	r := NewReader(nil, w.Bytes())
	peek, err := r.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), peek)
	require.Zero(t, r.Position())

	v8, err := r.GetByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), v8)
	v16, err := r.GetShort()
	require.NoError(t, err)
	require.Equal(t, int16(-300), v16)
	v32, err := r.GetInt()
	require.NoError(t, err)
	require.Equal(t, int32(-70000), v32)
	p, err := r.GetRecPtr()
	require.NoError(t, err)
	require.Equal(t, db.RecPtr(0xFFFFFFF0), p)
	require.Zero(t, r.Remaining())
}

func Test_Buffer_ReadPastEnd(t *testing.T) {
	r := NewReader(nil, []byte{1, 2, 3})
	_, err := r.GetInt()
	require.ErrorIs(t, err, ErrUnmarshal)
	require.Zero(t, r.Position(), "failed read must not advance")

	_, err = r.GetShort()
	require.NoError(t, err)
	_, err = r.GetShort()
	require.ErrorIs(t, err, ErrUnmarshal)
	_, err = r.GetByte()
	require.NoError(t, err)
	_, err = r.GetByte()
	require.ErrorIs(t, err, ErrUnmarshal)
	_, err = r.PeekByte()
	require.ErrorIs(t, err, ErrUnmarshal)
	_, err = r.GetRecPtr()
	require.ErrorIs(t, err, ErrUnmarshal)
}
