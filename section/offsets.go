package section

import (
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/errs"
)

// Offsets is a sum-typed byte-offset table: on load exactly one of off32 or
// off64 is populated (64-bit takes precedence per spec when both exist);
// accessors hide the distinction from callers (spec §9 design note).
type Offsets struct {
	off32 []uint32
	off64 []uint64
}

// NewOffsets32 wraps a 32-bit offset table.
func NewOffsets32(v []uint32) Offsets { return Offsets{off32: v} }

// NewOffsets64 wraps a 64-bit offset table.
func NewOffsets64(v []uint64) Offsets { return Offsets{off64: v} }

// Len returns the number of entries (nbitmaps + 1).
func (o Offsets) Len() int {
	if o.off64 != nil {
		return len(o.off64)
	}

	return len(o.off32)
}

// At returns the i'th offset as a uint64 regardless of backing width.
func (o Offsets) At(i int) uint64 {
	if o.off64 != nil {
		return o.off64[i]
	}

	return uint64(o.off32[i])
}

// Size returns the byte span of bitmap i: At(i+1) - At(i).
func (o Offsets) Size(i int) uint64 {
	return o.At(i+1) - o.At(i)
}

// IsWide reports whether the 64-bit table is in effect.
func (o Offsets) IsWide() bool {
	return o.off64 != nil
}

// Validate checks offsets[0] < offsets[1] < ... and that the final entry
// matches the expected payload length (spec invariant 6).
func (o Offsets) Validate(payloadLen uint64) error {
	n := o.Len()
	if n == 0 {
		return nil
	}
	for i := 1; i < n; i++ {
		if o.At(i) <= o.At(i-1) {
			return errs.ErrOffsetOutOfRange
		}
	}
	if o.At(n-1) != payloadLen {
		return errs.ErrShortRead
	}

	return nil
}

// Bytes serializes the offset table using the given width and byte order.
func (o Offsets) Bytes(width OffsetSize, engine endian.EndianEngine) []byte {
	n := o.Len()
	out := make([]byte, n*int(width))
	for i := 0; i < n; i++ {
		v := o.At(i)
		switch width {
		case OffsetSize32:
			engine.PutUint32(out[i*4:i*4+4], uint32(v)) //nolint:gosec
		case OffsetSize64:
			engine.PutUint64(out[i*8:i*8+8], v)
		}
	}

	return out
}

// ParseOffsets decodes an offset table of n entries with the given width.
func ParseOffsets(data []byte, n int, width OffsetSize, engine endian.EndianEngine) (Offsets, error) {
	need := n * int(width)
	if len(data) < need {
		return Offsets{}, errs.ErrShortRead
	}

	switch width {
	case OffsetSize32:
		v := make([]uint32, n)
		for i := 0; i < n; i++ {
			v[i] = engine.Uint32(data[i*4 : i*4+4])
		}

		return NewOffsets32(v), nil
	case OffsetSize64:
		v := make([]uint64, n)
		for i := 0; i < n; i++ {
			v[i] = engine.Uint64(data[i*8 : i*8+8])
		}

		return NewOffsets64(v), nil
	default:
		return Offsets{}, errs.ErrUnsupportedOffsetSize
	}
}

// BuildOffsets computes an offset table from per-bitmap byte lengths,
// choosing 32- vs 64-bit width based on the total payload size.
func BuildOffsets(lengths []uint64) Offsets {
	cum := make([]uint64, len(lengths)+1)
	for i, l := range lengths {
		cum[i+1] = cum[i] + l
	}
	if ChooseOffsetSize(cum[len(cum)-1]) == OffsetSize64 {
		return NewOffsets64(cum)
	}
	v := make([]uint32, len(cum))
	for i, c := range cum {
		v[i] = uint32(c) //nolint:gosec
	}

	return NewOffsets32(v)
}
