package section

import (
	"testing"

	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/errs"
	"github.com/stretchr/testify/require"
)

func TestBuildOffsetsCumulative(t *testing.T) {
	o := BuildOffsets([]uint64{10, 20, 5})
	require.Equal(t, 4, o.Len())
	require.Equal(t, uint64(0), o.At(0))
	require.Equal(t, uint64(10), o.At(1))
	require.Equal(t, uint64(30), o.At(2))
	require.Equal(t, uint64(35), o.At(3))
	require.Equal(t, uint64(10), o.Size(0))
	require.False(t, o.IsWide())
}

func TestOffsetsBytesRoundTrip32(t *testing.T) {
	o := NewOffsets32([]uint32{0, 4, 10})
	engine := endian.GetLittleEndianEngine()
	b := o.Bytes(OffsetSize32, engine)
	require.Len(t, b, 3*4)

	got, err := ParseOffsets(b, 3, OffsetSize32, engine)
	require.NoError(t, err)
	require.False(t, got.IsWide())
	require.Equal(t, uint64(10), got.At(2))
}

func TestOffsetsBytesRoundTrip64(t *testing.T) {
	o := NewOffsets64([]uint64{0, 4, 1 << 40})
	engine := endian.GetLittleEndianEngine()
	b := o.Bytes(OffsetSize64, engine)
	require.Len(t, b, 3*8)

	got, err := ParseOffsets(b, 3, OffsetSize64, engine)
	require.NoError(t, err)
	require.True(t, got.IsWide())
	require.Equal(t, uint64(1<<40), got.At(2))
}

func TestOffsetsValidateDetectsNonMonotonic(t *testing.T) {
	o := NewOffsets32([]uint32{0, 10, 10})
	require.ErrorIs(t, o.Validate(10), errs.ErrOffsetOutOfRange)
}

func TestOffsetsValidateDetectsPayloadMismatch(t *testing.T) {
	o := NewOffsets32([]uint32{0, 10, 20})
	require.ErrorIs(t, o.Validate(99), errs.ErrShortRead)
}

func TestOffsetsValidateAcceptsMatchingPayload(t *testing.T) {
	o := NewOffsets32([]uint32{0, 10, 20})
	require.NoError(t, o.Validate(20))
}

func TestParseOffsetsShortDataErrors(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	_, err := ParseOffsets(make([]byte, 4), 3, OffsetSize32, engine)
	require.ErrorIs(t, err, errs.ErrShortRead)
}
