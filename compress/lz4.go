package compress

import (
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; they hold internal
// match-finding state that is expensive to allocate per call.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor provides LZ4 block compression, a fast middle ground
// between NoOp and Zstd for bitmap payload sections.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data using LZ4 block compression.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible input: lz4 signals this by writing nothing.
		// Fall back to storing the raw block behind a one-byte tag (0 =
		// stored raw, 1 = lz4 block) so Decompress can tell them apart.
		return append([]byte{0}, data...), nil
	}

	return append([]byte{1}, dst[:n]...), nil
}

// Decompress decompresses LZ4-compressed data.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	tag, body := data[0], data[1:]
	if tag == 0 {
		out := make([]byte, len(body))
		copy(out, body)

		return out, nil
	}

	// Decompressed size is not stored out of band; grow a buffer until it
	// fits, doubling on each ErrInvalidSourceShortBuffer-style failure.
	dst := make([]byte, len(body)*4+64)
	for {
		n, err := lz4.UncompressBlock(body, dst)
		if err == nil {
			return dst[:n], nil
		}
		if len(dst) > 1<<30 {
			return nil, err
		}
		dst = make([]byte, len(dst)*2)
	}
}
