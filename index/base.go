package index

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/combine"
	"github.com/fastbit/ibis/compress"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
	"github.com/fastbit/ibis/section"
)

// Logger is the package-level logger used for "log and continue" failure
// paths (spec §7 propagation policy). Callers may override it.
var Logger = slog.Default()

// SetLogger overrides the package-level logger.
func SetLogger(l *slog.Logger) { Logger = l }

// Base holds the fields common to every variant (spec §3 "Index instance")
// and implements the activation/locate machinery shared by all of them.
// Concrete variants embed Base and add their own Estimate/Evaluate logic.
type Base struct {
	Tag    format.VariantTag
	NRows  uint64
	Bound  []float64 // ascending bin right-edges
	MinVal []float64 // per-bin observed minimum
	MaxVal []float64 // per-bin observed maximum
	Bits   []*bitmap.Bitmap
	Off    section.Offsets
	Engine endian.EndianEngine

	// Compression selects the codec applied to each bitmap's payload bytes
	// on Persist (spec §4.B payload section). Zero value (CompressionNone
	// is 0x1, so the Go zero value 0 is distinct) is normalized to
	// CompressionNone by persistCommon.
	Compression format.CompressionType

	loader *Loader   // non-nil only in lazy/metadata-only mode
	mu     column.Mutex
}

// VariantTag implements Variant.
func (b *Base) VariantTag() format.VariantTag { return b.Tag }

// NBins implements Variant.
func (b *Base) NBins() uint32 { return uint32(len(b.Bits)) } //nolint:gosec

// Bounds implements Variant.
func (b *Base) Bounds() []float64 { return b.Bound }

// BinWeights implements Variant.
func (b *Base) BinWeights() []uint32 {
	w := make([]uint32, len(b.Bits))
	for i, bm := range b.Bits {
		if bm != nil {
			w[i] = uint32(bm.Cnt()) //nolint:gosec
		}
	}

	return w
}

// activate materializes Bits[i] if absent, per spec §4.B "Activation".
// Idempotent; serialized by the per-column mutex so concurrent queries never
// observe a partially-populated entry.
func (b *Base) activate(i int) {
	if i < 0 || i >= len(b.Bits) || b.Bits[i] != nil || b.loader == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Bits[i] != nil {
		return
	}

	bm, err := b.loader.Activate(i, b.Off, b.NRows, b.Engine)
	if err != nil {
		Logger.Warn("bitmap activation failed, substituting empty bitmap",
			"bin", i, "error", err)
		b.Bits[i] = bitmap.New(b.NRows)

		return
	}
	b.Bits[i] = bm
}

// activateRange activates every bin in [lo, hi), identifying contiguous
// runs of absent bitmaps so each run is a single I/O (spec §4.B
// "activate(i,j)").
func (b *Base) activateRange(lo, hi int) {
	if b.loader == nil {
		return
	}

	i := lo
	for i < hi {
		if b.Bits[i] != nil {
			i++
			continue
		}
		j := i
		for j < hi && b.Bits[j] == nil {
			j++
		}
		b.mu.Lock()
		bms, err := b.loader.ActivateRange(i, j, b.Off, b.NRows, b.Engine)
		if err != nil {
			// ActivateRange already isolates per-bin decode failures to an
			// empty bitmap for that bin alone; reaching here means the
			// batch's bytes couldn't be read at all, so the whole run
			// substitutes empty.
			Logger.Warn("bitmap range activation failed, substituting empty bitmaps",
				"lo", i, "hi", j, "error", err)
			for k := i; k < j; k++ {
				if b.Bits[k] == nil {
					b.Bits[k] = bitmap.New(b.NRows)
				}
			}
		} else {
			for k := i; k < j; k++ {
				if b.Bits[k] == nil {
					b.Bits[k] = bms[k-i]
				}
			}
		}
		b.mu.Unlock()
		i = j
	}
}

// ActivateAll materializes every bitmap.
func (b *Base) ActivateAll() {
	b.activateRange(0, len(b.Bits))
}

// sumRange ORs bits[lo:hi), activating any absent bitmaps first.
func (b *Base) sumRange(lo, hi int) *bitmap.Bitmap {
	if lo >= hi {
		return bitmap.New(b.NRows)
	}
	b.activateRange(lo, hi)

	return combine.Or(b.Bits, lo, hi, len(b.Bits), b.NRows)
}

// estimateUpperCountFromBins implements a default EstimateUpperCount for variants
// whose upper bound is OR(bits[candLo:candHi]): sum the per-bin popcounts
// without constructing the unioned bitmap.
func (b *Base) estimateUpperCountFromBins(candLo, candHi int) uint64 {
	b.activateRange(candLo, candHi)
	var total uint64
	for i := candLo; i < candHi; i++ {
		if b.Bits[i] != nil {
			total += b.Bits[i].Cnt()
		}
	}

	return total
}

// persistCommon writes the shared header+bounds+minval+maxval+offsets+
// payload layout (spec §4.B) to path using write-temp-then-rename (spec §5
// "Transaction discipline"). trailer is appended verbatim after the
// payloads for variant-specific data (coarse-level offsets, cnts[],
// bases[], etc. per spec §4.B).
func (b *Base) persistCommon(path string, trailer []byte) (err error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("index: persist create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	compression := b.Compression
	if compression == 0 {
		compression = format.CompressionNone
	}
	codec, err := compress.GetCodec(compression)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("index: persist: %w", err)
	}

	// Compress every payload and build the offset table before writing the
	// header: the header's OffsetSize byte must reflect the width
	// BuildOffsets actually chose (spec §4.B), which depends on the total
	// compressed payload size and so can't be known up front.
	lengths := make([]uint64, len(b.Bits))
	payloads := make([][]byte, len(b.Bits))
	for i, bm := range b.Bits {
		if bm == nil {
			payloads[i] = nil
			continue
		}
		raw := bm.WriteTo(nil, b.Engine)
		payloads[i], err = codec.Compress(raw)
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("index: persist compress payload: %w", err)
		}
		lengths[i] = uint64(len(payloads[i]))
	}
	off := section.BuildOffsets(lengths)
	width := section.OffsetSize32
	if off.IsWide() {
		width = section.OffsetSize64
	}

	header := section.NewCompressedHeader(b.Tag, compression, uint32(b.NRows), uint32(len(b.Bits))) //nolint:gosec
	header.OffsetSize = width
	if _, err = f.Write(header.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("index: persist write header: %w", err)
	}

	for _, arr := range [][]float64{b.Bound, b.MinVal, b.MaxVal} {
		buf := make([]byte, 8*len(arr))
		for i, v := range arr {
			b.Engine.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
		}
		if _, err = f.Write(buf); err != nil {
			_ = f.Close()
			return fmt.Errorf("index: persist write array: %w", err)
		}
	}

	if _, err = f.Write(off.Bytes(width, b.Engine)); err != nil {
		_ = f.Close()
		return fmt.Errorf("index: persist write offsets: %w", err)
	}
	for _, p := range payloads {
		if _, err = f.Write(p); err != nil {
			_ = f.Close()
			return fmt.Errorf("index: persist write payload: %w", err)
		}
	}
	if len(trailer) > 0 {
		if _, err = f.Write(trailer); err != nil {
			_ = f.Close()
			return fmt.Errorf("index: persist write trailer: %w", err)
		}
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("index: persist close temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("index: persist rename: %w", err)
	}

	return nil
}
