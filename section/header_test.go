package section

import (
	"testing"

	"github.com/fastbit/ibis/errs"
	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := NewCompressedHeader(format.VariantMesa, format.CompressionZstd, 100, 7)
	b := h.Bytes()
	require.Len(t, b, HeaderSize)

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHeaderLegacyZeroByteIsCompressionNone(t *testing.T) {
	h := NewHeader(format.VariantBin, 10, 3)
	b := h.Bytes()
	b[7] = 0

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, format.CompressionNone, got.Compression)
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	h := NewHeader(format.VariantBin, 10, 3)
	b := h.Bytes()
	b[0] = 'X'

	_, err := ParseHeader(b)
	require.ErrorIs(t, err, errs.ErrCorruptHeader)
}

func TestHeaderRejectsUnsupportedCompressionByte(t *testing.T) {
	h := NewHeader(format.VariantBin, 10, 3)
	b := h.Bytes()
	b[7] = 0xFE

	_, err := ParseHeader(b)
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestHeaderRejectsShortData(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestHeaderRejectsUnknownVariant(t *testing.T) {
	h := NewHeader(format.VariantBin, 10, 3)
	b := h.Bytes()
	b[5] = 0xFF

	_, err := ParseHeader(b)
	require.ErrorIs(t, err, errs.ErrUnsupportedVariant)
}
