// Package section implements the on-disk layout shared by every bitmap
// index variant (spec §4.B): the fixed magic/header, the ascending bounds
// and per-bin extrema arrays, and the 32-/64-bit offset table that locates
// each bitmap's compressed payload. The layout mirrors the teacher's
// section package (fixed header struct + delta-aware index entries), scaled
// up from "one entry per metric" to "one offset per bin bitmap".
package section

// HeaderSize is the fixed byte size of the header that precedes the
// variable-length bounds/minval/maxval/offset arrays.
//
//	magic      8 bytes
//	nrows      4 bytes
//	nbitmaps   4 bytes
const HeaderSize = 16

// magicPrefix is the fixed first 5 bytes of every index file.
var magicPrefix = [5]byte{'#', 'I', 'B', 'I', 'S'}

// OffsetSize selects the width of each entry in the offset table.
type OffsetSize uint8

const (
	OffsetSize32 OffsetSize = 4
	OffsetSize64 OffsetSize = 8
)

// offsetSizeThreshold is the file-size boundary past which the writer
// switches from a 32-bit to a 64-bit offset table (spec §4.B: "emit 32-bit
// offsets when the file size is < 2^31, else 64-bit").
const offsetSizeThreshold = uint64(1) << 31
