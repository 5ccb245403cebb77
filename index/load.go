package index

import (
	"fmt"
	"math"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/errs"
	"github.com/fastbit/ibis/format"
)

// LoadVariant reopens a persisted index file and reconstructs the Variant
// that wrote it, in the requested read mode. Bitmaps stay absent until
// activated (spec §4.B "Three load modes").
//
// Every variant round-trips: Equality, RangeEncoded, Direct, Relic, Slice
// and the reduced-precision tags (Bak/Bak2, which persist as a plain
// equality-binned file) query their persisted Base fields directly. Mesa,
// the two-level family and Multicomponent query their own persisted
// coarse/window/digit bitmaps the same way (see mesa.go, twolevel.go,
// multicomponent.go); only their Append path falls back to a coarser
// in-place update once reloaded, since the original raw values that built
// their fine-grained delegate are never persisted.
func LoadVariant(path string, mode ReadMode) (Variant, error) {
	engine := endian.GetLittleEndianEngine()
	loaded, err := Load(path, mode, engine)
	if err != nil {
		return nil, err
	}

	base := Base{
		Tag:    loaded.Header.Variant,
		NRows:  uint64(loaded.Header.NRows),
		Bound:  loaded.Bound,
		MinVal: loaded.MinVal,
		MaxVal: loaded.MaxVal,
		Bits:   make([]*bitmap.Bitmap, loaded.Header.NBitmaps),
		Off:    loaded.Off,
		Engine: engine,
		loader: loaded.Loader,
	}

	switch {
	case loaded.Header.Variant == format.VariantBin, loaded.Header.Variant == format.VariantBak, loaded.Header.Variant == format.VariantBak2:
		return &Equality{Base: base}, nil
	case loaded.Header.Variant == format.VariantRange:
		return &RangeEncoded{Base: base}, nil
	case loaded.Header.Variant == format.VariantMesa:
		return &Mesa{Base: base}, nil
	case loaded.Header.Variant.IsTwoLevel():
		return &TwoLevel{
			Base:             base,
			coarseCumulative: loaded.Header.Variant == format.VariantAmbit || loaded.Header.Variant == format.VariantPale,
		}, nil
	case loaded.Header.Variant.IsMulticomponent():
		return loadMulticomponent(loaded, base)
	case loaded.Header.Variant == format.VariantDirekte:
		return &Direct{Base: base}, nil
	case loaded.Header.Variant == format.VariantRelic:
		return &Relic{Base: base}, nil
	case loaded.Header.Variant == format.VariantSlice:
		return &Slice{Base: base}, nil
	case loaded.Header.Variant == format.VariantKeywords:
		return &Keywords{Base: base, nbuckets: int(loaded.Header.NBitmaps)}, nil //nolint:gosec
	default:
		_ = loaded.Loader.Close()
		return nil, fmt.Errorf("index: %s: unrecognized variant tag", loaded.Header.Variant)
	}
}

// multicomponentKindOf derives a Multicomponent's digit encoding from its
// on-disk tag, the same fixed mapping the factory uses to build one.
func multicomponentKindOf(tag format.VariantTag) componentKind {
	switch tag {
	case format.VariantMoins, format.VariantSapid:
		return componentCumulative
	case format.VariantEntre, format.VariantSbiad:
		return componentInterval
	default:
		return componentEquality
	}
}

// loadMulticomponent parses the bases+fineBound trailer Multicomponent.Persist
// writes and reconstructs a queryable instance: bases splits the flattened
// Base.Bits back into per-component bitmaps, fineBound lets query methods
// map a value-domain range back onto bin codes.
func loadMulticomponent(loaded *Loaded, base Base) (Variant, error) {
	raw, err := loaded.Loader.ReadTrailer(loaded.Off, int(loaded.Header.NBitmaps))
	if err != nil {
		_ = loaded.Loader.Close()
		return nil, fmt.Errorf("index: multicomponent: read trailer: %w", err)
	}

	const u32, u64 = 4, 8
	if len(raw) < u32 {
		_ = loaded.Loader.Close()
		return nil, errs.ErrShortRead
	}
	nbases := int(base.Engine.Uint32(raw[0:u32])) //nolint:gosec
	off := u32
	if len(raw) < off+u64*nbases+u32 {
		_ = loaded.Loader.Close()
		return nil, errs.ErrShortRead
	}
	bases := make([]uint64, nbases)
	for i := range bases {
		bases[i] = base.Engine.Uint64(raw[off : off+u64])
		off += u64
	}
	nfine := int(base.Engine.Uint32(raw[off : off+u32])) //nolint:gosec
	off += u32
	if len(raw) < off+u64*nfine {
		_ = loaded.Loader.Close()
		return nil, errs.ErrShortRead
	}
	fineBound := make([]float64, nfine)
	for i := range fineBound {
		fineBound[i] = math.Float64frombits(base.Engine.Uint64(raw[off : off+u64]))
		off += u64
	}

	return &Multicomponent{
		Base:      base,
		fineBound: fineBound,
		kind:      multicomponentKindOf(loaded.Header.Variant),
		bases:     bases,
	}, nil
}
