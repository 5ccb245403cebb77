package section

import (
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/errs"
	"github.com/fastbit/ibis/format"
)

// Header is the fixed-size section at the start of every index file.
type Header struct {
	Variant     format.VariantTag
	OffsetSize  OffsetSize
	Compression format.CompressionType
	NRows       uint32
	NBitmaps    uint32
}

// NewHeader creates a header for a freshly built index, with bitmap
// payloads stored uncompressed. Use NewCompressedHeader to select a codec.
func NewHeader(variant format.VariantTag, nrows, nbitmaps uint32) Header {
	return NewCompressedHeader(variant, format.CompressionNone, nrows, nbitmaps)
}

// NewCompressedHeader creates a header recording which codec compresses the
// payload section (spec §4.B "[variant-specific trailer]" layout note: the
// payload bytes following the offset table are codec-dependent).
func NewCompressedHeader(variant format.VariantTag, compression format.CompressionType, nrows, nbitmaps uint32) Header {
	return Header{
		Variant:     variant,
		OffsetSize:  OffsetSize32,
		Compression: compression,
		NRows:       nrows,
		NBitmaps:    nbitmaps,
	}
}

// Bytes serializes the header using little-endian byte order for the
// numeric fields; the magic bytes themselves are endianness-agnostic.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:5], magicPrefix[:])
	b[5] = byte(h.Variant)
	b[6] = byte(h.OffsetSize)
	b[7] = byte(h.Compression)

	engine := endian.GetLittleEndianEngine()
	engine.PutUint32(b[8:12], h.NRows)
	engine.PutUint32(b[12:16], h.NBitmaps)

	return b
}

// ParseHeader decodes a Header from the first HeaderSize bytes of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	var h Header
	if data[0] != magicPrefix[0] || data[1] != magicPrefix[1] || data[2] != magicPrefix[2] ||
		data[3] != magicPrefix[3] || data[4] != magicPrefix[4] {
		return Header{}, errs.ErrCorruptHeader
	}

	h.Variant = format.VariantTag(data[5])
	if !validVariant(h.Variant) {
		return Header{}, errs.ErrUnsupportedVariant
	}

	switch data[6] {
	case byte(OffsetSize32):
		h.OffsetSize = OffsetSize32
	case byte(OffsetSize64):
		h.OffsetSize = OffsetSize64
	default:
		return Header{}, errs.ErrUnsupportedOffsetSize
	}

	switch data[7] {
	case 0, byte(format.CompressionNone):
		h.Compression = format.CompressionNone
	case byte(format.CompressionZstd):
		h.Compression = format.CompressionZstd
	case byte(format.CompressionS2):
		h.Compression = format.CompressionS2
	case byte(format.CompressionLZ4):
		h.Compression = format.CompressionLZ4
	default:
		return Header{}, errs.ErrUnsupportedCompression
	}

	engine := endian.GetLittleEndianEngine()
	h.NRows = engine.Uint32(data[8:12])
	h.NBitmaps = engine.Uint32(data[12:16])

	return h, nil
}

func validVariant(v format.VariantTag) bool {
	return v >= format.VariantBin && v <= format.VariantKeywords
}

// ChooseOffsetSize picks the offset-table width for a file of the given
// total size, per spec §4.B.
func ChooseOffsetSize(fileSize uint64) OffsetSize {
	if fileSize < offsetSizeThreshold {
		return OffsetSize32
	}

	return OffsetSize64
}
