// Package format defines the small value types shared by every on-disk
// section and every index variant: the column type tag, the variant tag
// recorded in the file header, and the compression type applied to bitmap
// payloads.
package format

// ColumnType identifies the element type of an indexed column. Every bin
// boundary and observed min/max value is representable as a float64 without
// loss for all of these types; this is an assumed invariant the rest of the
// package relies on.
type ColumnType uint8

const (
	ColumnUnknown ColumnType = iota
	ColumnInt8
	ColumnUint8
	ColumnInt16
	ColumnUint16
	ColumnInt32
	ColumnUint32
	ColumnInt64
	ColumnUint64
	ColumnFloat32
	ColumnFloat64
	ColumnCategory // low-cardinality string category
	ColumnText     // free-text string
)

func (c ColumnType) String() string {
	switch c {
	case ColumnInt8:
		return "int8"
	case ColumnUint8:
		return "uint8"
	case ColumnInt16:
		return "int16"
	case ColumnUint16:
		return "uint16"
	case ColumnInt32:
		return "int32"
	case ColumnUint32:
		return "uint32"
	case ColumnInt64:
		return "int64"
	case ColumnUint64:
		return "uint64"
	case ColumnFloat32:
		return "float32"
	case ColumnFloat64:
		return "float64"
	case ColumnCategory:
		return "category"
	case ColumnText:
		return "text"
	default:
		return "unknown"
	}
}

// IsInteger reports whether the column type holds integral values.
func (c ColumnType) IsInteger() bool {
	switch c {
	case ColumnInt8, ColumnUint8, ColumnInt16, ColumnUint16,
		ColumnInt32, ColumnUint32, ColumnInt64, ColumnUint64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether the column type holds floating point values.
func (c ColumnType) IsFloat() bool {
	return c == ColumnFloat32 || c == ColumnFloat64
}

// IsSmallInteger reports whether the column type is an 8- or 16-bit integer,
// which the default variant selection heuristic steers toward relic.
func (c ColumnType) IsSmallInteger() bool {
	switch c {
	case ColumnInt8, ColumnUint8, ColumnInt16, ColumnUint16:
		return true
	default:
		return false
	}
}

// VariantTag identifies the bitmap-index encoding scheme. It is stored as
// the sixth byte of the on-disk magic and drives factory reconstruction.
type VariantTag uint8

const (
	VariantUnknown VariantTag = iota
	VariantBin                // equality-binned
	VariantRange              // range-binned (cumulative)
	VariantMesa               // interval-binned
	VariantAmbit              // two-level: cumulative coarse, cumulative fine
	VariantPale               // two-level: cumulative coarse, equality fine
	VariantPack               // two-level: equality coarse, cumulative fine
	VariantZone               // two-level: equality coarse, equality fine
	VariantFuge               // two-level: equality coarse, interval fine
	VariantEgale              // multicomponent, equality per digit
	VariantMoins              // multicomponent, range per digit
	VariantEntre              // multicomponent, interval per digit
	VariantFade               // multicomponent, unbinned equality
	VariantSapid              // multicomponent, unbinned range
	VariantSbiad              // multicomponent, unbinned interval
	VariantBak                // reduced precision
	VariantBak2               // reduced precision, two-pass
	VariantRelic              // basic bitmap, one per distinct value
	VariantSlice              // bit-sliced
	VariantDirekte            // direct
	VariantKeywords           // term-document
)

func (v VariantTag) String() string {
	switch v {
	case VariantBin:
		return "bin"
	case VariantRange:
		return "range"
	case VariantMesa:
		return "mesa"
	case VariantAmbit:
		return "ambit"
	case VariantPale:
		return "pale"
	case VariantPack:
		return "pack"
	case VariantZone:
		return "zone"
	case VariantFuge:
		return "fuge"
	case VariantEgale:
		return "egale"
	case VariantMoins:
		return "moins"
	case VariantEntre:
		return "entre"
	case VariantFade:
		return "fade"
	case VariantSapid:
		return "sapid"
	case VariantSbiad:
		return "sbiad"
	case VariantBak:
		return "bak"
	case VariantBak2:
		return "bak2"
	case VariantRelic:
		return "relic"
	case VariantSlice:
		return "slice"
	case VariantDirekte:
		return "direkte"
	case VariantKeywords:
		return "keywords"
	default:
		return "unknown"
	}
}

// IsTwoLevel reports whether the variant uses a coarse/fine two-level
// bitmap layout.
func (v VariantTag) IsTwoLevel() bool {
	switch v {
	case VariantAmbit, VariantPale, VariantPack, VariantZone, VariantFuge:
		return true
	default:
		return false
	}
}

// IsMulticomponent reports whether the variant decomposes values into
// mixed-radix digits.
func (v VariantTag) IsMulticomponent() bool {
	switch v {
	case VariantEgale, VariantMoins, VariantEntre, VariantFade, VariantSapid, VariantSbiad:
		return true
	default:
		return false
	}
}

// CompressionType identifies the byte-level compression applied to a
// concatenated bitmap-payload section, mirroring the teacher's payload
// compression choices.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1
	CompressionZstd CompressionType = 0x2
	CompressionS2   CompressionType = 0x3
	CompressionLZ4  CompressionType = 0x4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
