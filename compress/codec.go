// Package compress provides the byte-level compression backends applied to
// a bitmap index's concatenated payload sections (the bytes following the
// offset table in the on-disk layout). It mirrors the teacher's payload
// compression split between timestamp and value sections: here a single
// payload section holds every bitmap's bytes back to back, and one codec
// choice applies to the whole section.
package compress

import "github.com/fastbit/ibis/format"

// Compressor compresses a byte slice.
//
// Memory management: the returned slice is owned by the caller; the input
// slice is never modified. NoOpCompressor returns the input slice itself,
// the other codecs return a newly allocated slice.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte slice previously produced by the
// matching Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines compression and decompression.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec constructs a Codec for the given compression type.
//
// Parameters:
//   - compressionType: None, Zstd, S2, or LZ4
//   - target: description of the payload being compressed, used in error
//     messages (e.g. "bitmap payload")
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, errInvalidCompression(target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the given compression type without
// needing a target description.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, errInvalidCompression("payload", compressionType)
}
