package compress

import (
	"bytes"
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func payload() []byte {
	return bytes.Repeat([]byte("bitmap payload bytes, some repetition helps ratio. "), 64)
}

func TestNoOpRoundTrip(t *testing.T) {
	c := NewNoOpCompressor()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)

	got, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestZstdRoundTrip(t *testing.T) {
	c := NewZstdCompressor()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	got, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestS2RoundTrip(t *testing.T) {
	c := NewS2Compressor()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	got, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestLZ4RoundTrip(t *testing.T) {
	c := NewLZ4Compressor()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	got, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestLZ4RoundTripIncompressible(t *testing.T) {
	c := NewLZ4Compressor()
	data := []byte{1, 2, 3}

	compressed, err := c.Compress(data)
	require.NoError(t, err)

	got, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestGetCodecKnownTypes(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}
}

func TestGetCodecUnknownType(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0xFE))
	require.Error(t, err)
}

func TestCreateCodecUnknownTypeIncludesTarget(t *testing.T) {
	_, err := CreateCodec(format.CompressionType(0xFE), "bitmap payload")
	require.ErrorContains(t, err, "bitmap payload")
}

func TestEmptyPayloadRoundTrip(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		got, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, got)
	}
}
