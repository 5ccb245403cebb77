package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func bmWith(size uint64, bits ...uint64) *Bitmap {
	b := New(size)
	for _, i := range bits {
		b.Set(i)
	}

	return b
}

func TestOrAndAndNotNot(t *testing.T) {
	a := bmWith(128, 0, 1, 64, 100)
	b := bmWith(128, 1, 2, 100, 127)

	or := a.Or(b)
	for _, i := range []uint64{0, 1, 2, 64, 100, 127} {
		require.True(t, or.Get(i))
	}
	require.Equal(t, uint64(6), or.Cnt())

	and := a.And(b)
	require.Equal(t, uint64(2), and.Cnt())
	require.True(t, and.Get(1))
	require.True(t, and.Get(100))

	andNot := a.AndNot(b)
	require.Equal(t, uint64(2), andNot.Cnt())
	require.True(t, andNot.Get(0))
	require.True(t, andNot.Get(64))

	not := a.Not()
	require.Equal(t, uint64(128-4), not.Cnt())
	require.False(t, not.Get(0))
	require.True(t, not.Get(2))
}

func TestOrIntoAccumulates(t *testing.T) {
	res := New(64)
	res.OrInto(bmWith(64, 1, 2))
	res.OrInto(bmWith(64, 2, 3))
	require.Equal(t, uint64(3), res.Cnt())
}

func TestOrWithLazyAllZeroOperands(t *testing.T) {
	empty := New(64)
	other := bmWith(64, 5)
	require.True(t, empty.Or(other).Equal(other))
	require.True(t, empty.Or(empty).IsEmpty())
}
