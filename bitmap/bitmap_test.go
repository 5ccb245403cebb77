package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastbit/ibis/endian"
)

func TestSetGetCnt(t *testing.T) {
	b := New(100)
	require.True(t, b.IsEmpty())

	for _, i := range []uint64{0, 5, 63, 64, 99} {
		b.Set(i)
	}
	require.Equal(t, uint64(5), b.Cnt())
	for _, i := range []uint64{0, 5, 63, 64, 99} {
		require.True(t, b.Get(i), "bit %d should be set", i)
	}
	require.False(t, b.Get(1))

	b.Clear(5)
	require.False(t, b.Get(5))
	require.Equal(t, uint64(4), b.Cnt())
}

func TestNewOnes(t *testing.T) {
	b := NewOnes(70)
	require.Equal(t, uint64(70), b.Cnt())
	for i := uint64(0); i < 70; i++ {
		require.True(t, b.Get(i))
	}
}

func TestCompressExpandRoundTrip(t *testing.T) {
	b := New(1000)
	for _, i := range []uint64{0, 1, 2, 500, 501, 999} {
		b.Set(i)
	}

	buf := b.WriteTo(nil, endian.GetLittleEndianEngine())
	got := ReadBitmap(buf, 1000, endian.GetLittleEndianEngine())

	require.True(t, b.Equal(got))
	require.Equal(t, b.Cnt(), got.Cnt())
}

func TestCompressAllZeroAndAllOnes(t *testing.T) {
	zero := New(257)
	require.Equal(t, uint64(0), zero.Cnt())
	require.Equal(t, 8, zero.Bytes()) // single marker word covering the whole run

	ones := NewOnes(257)
	require.Equal(t, uint64(257), ones.Cnt())

	engine := endian.GetLittleEndianEngine()
	buf := ones.WriteTo(nil, engine)
	got := ReadBitmap(buf, 257, engine)
	require.True(t, ones.Equal(got))
}

func TestEnsureSizePreservesBits(t *testing.T) {
	b := New(10)
	b.Set(3)
	b.EnsureSize(200)
	require.Equal(t, uint64(200), b.Size())
	require.True(t, b.Get(3))
	require.False(t, b.Get(150))
}
