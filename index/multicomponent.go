package index

import (
	"math"

	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// componentKind selects what each digit's own bitmap set looks like.
type componentKind int

const (
	componentEquality componentKind = iota
	componentCumulative
	componentInterval
)

// Multicomponent covers egale (equality digits, pre-binned), moins (range
// digits, pre-binned), entre (interval digits, pre-binned), fade (equality
// digits, unbinned/one-bin-per-distinct-value), sapid (range digits,
// unbinned) and sbiad (interval digits, unbinned) — spec §3
// "Multicomponent" and spec §9's base-selection note. A column's bin index
// is decomposed into digits of a mixed-radix positional system
// (binning.ChooseMulticomponentBases); each digit gets its own small set of
// bitmaps, flattened component-major into Base.Bits for persistence. Queries
// resolve directly against those persisted per-digit bitmaps (spec §4.E
// "intersect across components for equality queries, union-then-intersect
// for range queries"), the same bit-plane-style comparator index/slice.go
// uses for binary digits, generalized here to mixed-radix ones. fine is
// retained only for Append/construction and is nil once reloaded from disk;
// fineBound (the fine-grained bin boundary array the digits were computed
// from) is always populated, since without it a reloaded instance would
// have no way to map a value-domain query range back to bin codes.
type Multicomponent struct {
	Base
	fine       *Equality
	fineBound  []float64
	kind       componentKind
	bases      []uint64
	components [][]*bitmap.Bitmap // components[c][d]
}

var _ Variant = (*Multicomponent)(nil)

// NewMulticomponent builds a multicomponent index. When unbinned is true
// (fade/sapid/sbiad) nbins is the number of distinct values observed;
// otherwise (egale/moins/entre) nbins is the caller-chosen pre-binning
// granularity fed to DivideCounts.
func NewMulticomponent(values []float64, nbins, components, resolution int, tag format.VariantTag, kind componentKind, unbinned bool) *Multicomponent {
	if unbinned {
		nbins = len(distinctSorted(values))
		if resolution < nbins {
			resolution = nbins
		}
	}
	if nbins < 1 {
		nbins = 1
	}

	fine := NewEquality(values, nbins, resolution)
	card := uint64(len(fine.Bound)) //nolint:gosec

	bases := binning.ChooseMulticomponentBases(card, components)
	if len(bases) == 0 {
		bases = []uint64{card}
	}

	mc := &Multicomponent{
		Base: Base{
			Tag: tag, NRows: fine.NRows, Engine: endian.GetLittleEndianEngine(),
		},
		fine:      fine,
		fineBound: fine.Bound,
		kind:      kind,
		bases:     bases,
	}
	mc.build(values)

	return mc
}

// digitsOf decomposes code into len(bases) digits, least-significant first
// (bases[0] is the lowest-order digit, per binning.ChooseMulticomponentBases).
func digitsOf(code uint64, bases []uint64) []uint64 {
	digits := make([]uint64, len(bases))
	for i, b := range bases {
		digits[i] = code % b
		code /= b
	}

	return digits
}

func (mc *Multicomponent) build(values []float64) {
	nb := len(mc.fineBound)
	codes := make([]uint64, len(values))
	for row, v := range values {
		bin := binning.Locate(mc.fineBound, v)
		if bin >= nb {
			bin = nb - 1
		}
		if bin < 0 {
			bin = 0
		}
		codes[row] = uint64(bin) //nolint:gosec
	}

	mc.components = make([][]*bitmap.Bitmap, len(mc.bases))
	for c, b := range mc.bases {
		mc.components[c] = make([]*bitmap.Bitmap, b)
		for d := range mc.components[c] {
			mc.components[c][d] = bitmap.New(mc.NRows)
		}
	}

	for row, code := range codes {
		digits := digitsOf(code, mc.bases)
		for c, d := range digits {
			mc.components[c][d].Set(uint64(row)) //nolint:gosec
		}
	}

	if mc.kind != componentInterval {
		if mc.kind == componentCumulative {
			for c := range mc.components {
				for d := 1; d < len(mc.components[c]); d++ {
					mc.components[c][d] = mc.components[c][d].Or(mc.components[c][d-1])
				}
			}
		}

		mc.flattenForPersist()

		return
	}

	// interval: replace each component's equality bitmaps with adjacent-pair
	// windows, mirroring Mesa.
	for c := range mc.components {
		eq := mc.components[c]
		nw := len(eq) - 1
		if nw < 0 {
			nw = 0
		}
		windows := make([]*bitmap.Bitmap, nw)
		for d := 0; d < nw; d++ {
			windows[d] = eq[d].Or(eq[d+1])
		}
		mc.components[c] = windows
	}
	mc.flattenForPersist()
}

// flattenForPersist concatenates every component's bitmaps, component-major,
// into Base.Bits so persistCommon's shared layout can store them. Bound is a
// synthetic monotonically increasing index, not a value-domain boundary —
// fineBound (persisted separately in the trailer) is what query methods use
// to map a value range onto bin codes.
func (mc *Multicomponent) flattenForPersist() {
	var flat []*bitmap.Bitmap
	for _, comp := range mc.components {
		flat = append(flat, comp...)
	}
	mc.Bits = flat
	mc.Bound = make([]float64, len(flat))
	mc.MinVal = make([]float64, len(flat))
	mc.MaxVal = make([]float64, len(flat))
	for i := range flat {
		mc.Bound[i] = float64(i + 1)
	}
}

// componentSize returns the number of persisted bitmaps for component c:
// its base, except for interval digits which persist one fewer (adjacent-
// pair windows instead of one-hot equality bitmaps).
func (mc *Multicomponent) componentSize(c int) int {
	n := int(mc.bases[c]) //nolint:gosec
	if mc.kind == componentInterval && n > 0 {
		n--
	}

	return n
}

// componentOffset returns component c's starting index into the flattened
// Base.Bits array.
func (mc *Multicomponent) componentOffset(c int) int {
	off := 0
	for i := 0; i < c; i++ {
		off += mc.componentSize(i)
	}

	return off
}

// componentBit activates and returns component c's persisted bitmap for
// digit/window index d, or nil if out of range.
func (mc *Multicomponent) componentBit(c, d int) *bitmap.Bitmap {
	if d < 0 || d >= mc.componentSize(c) {
		return nil
	}
	idx := mc.componentOffset(c) + d
	mc.activate(idx)

	return mc.Bits[idx]
}

// componentDigitRange returns the OR of rows whose component-c digit falls
// in [lo, hi), dispatching on how that component's bitmaps are encoded.
func (mc *Multicomponent) componentDigitRange(c, lo, hi int) *bitmap.Bitmap {
	base := int(mc.bases[c]) //nolint:gosec
	if lo < 0 {
		lo = 0
	}
	if hi > base {
		hi = base
	}
	if hi <= lo {
		return bitmap.New(mc.NRows)
	}

	switch mc.kind {
	case componentCumulative:
		return mc.cumulativeComponentBin(c, hi-1).AndNot(mc.cumulativeComponentBin(c, lo-1))
	case componentInterval:
		return mc.intervalComponentRange(c, lo, hi)
	default:
		res := bitmap.New(mc.NRows)
		for d := lo; d < hi; d++ {
			if bm := mc.componentBit(c, d); bm != nil {
				res = res.Or(bm)
			}
		}

		return res
	}
}

// cumulativeComponentBin mirrors RangeEncoded's cumulativeBin, scoped to one
// component's digit bitmaps.
func (mc *Multicomponent) cumulativeComponentBin(c, d int) *bitmap.Bitmap {
	if d < 0 {
		return bitmap.New(mc.NRows)
	}
	if d >= mc.componentSize(c) {
		return bitmap.NewOnes(mc.NRows)
	}

	return mc.componentBit(c, d)
}

// intervalComponentRange returns a safe superset for "digit in [lo, hi)"
// when the component stores adjacent-pair windows instead of exact digit
// membership: every window that can touch a digit in range is OR'd in.
// Exact only when the range spans the whole digit domain.
func (mc *Multicomponent) intervalComponentRange(c, lo, hi int) *bitmap.Bitmap {
	base := int(mc.bases[c]) //nolint:gosec
	if lo <= 0 && hi >= base {
		return bitmap.NewOnes(mc.NRows)
	}
	nw := mc.componentSize(c)
	wlo := lo - 1
	if wlo < 0 {
		wlo = 0
	}
	whi := hi
	if whi > nw {
		whi = nw
	}
	res := bitmap.New(mc.NRows)
	for w := wlo; w < whi; w++ {
		if bm := mc.componentBit(c, w); bm != nil {
			res = res.Or(bm)
		}
	}

	return res
}

// codeLE returns the exact set of rows whose decomposed bin code is <= code,
// an exact comparator generalizing Slice's MSB-first bit-plane comparator to
// mixed-radix digits (spec §4.E "standard positional-encoding query
// decomposition"). Only exact for equality/cumulative digit kinds, where
// "digit < d" and "digit == d" partition the domain cleanly.
func (mc *Multicomponent) codeLE(code uint64) *bitmap.Bitmap {
	digits := digitsOf(code, mc.bases)
	eq := bitmap.NewOnes(mc.NRows)
	res := bitmap.New(mc.NRows)
	for c := len(mc.bases) - 1; c >= 0; c-- {
		d := int(digits[c]) //nolint:gosec
		lt := mc.componentDigitRange(c, 0, d)
		res = res.Or(eq.And(lt))
		eqC := mc.componentDigitRange(c, d, d+1)
		eq = eq.And(eqC)
	}

	return res.Or(eq)
}

// codeRangeSandbox returns (lower, upper) for the set of rows whose bin code
// falls in [loCode, hiCode). For equality/cumulative digits this is exact
// (lower == upper): code assignment is itself a disjoint partition of rows,
// so a contiguous code range is resolvable without a raw-value read. For
// interval digits, codeLE's digit-equality step isn't exact (windows
// overlap), so the bound is built conservatively instead: upper is the
// AND across components of each component's own digit range (a safe
// superset, since a row whose code is in range necessarily has every digit
// in range, though the converse doesn't hold), and lower is only claimed
// when the range spans the entire code domain.
func (mc *Multicomponent) codeRangeSandbox(loCode, hiCode uint64) (lower, upper *bitmap.Bitmap) {
	if hiCode <= loCode {
		empty := bitmap.New(mc.NRows)
		return empty, empty.Clone()
	}

	if mc.kind != componentInterval {
		upper = mc.codeLE(hiCode - 1)
		if loCode > 0 {
			upper = upper.AndNot(mc.codeLE(loCode - 1))
		}

		return upper, upper.Clone()
	}

	loDigits := digitsOf(loCode, mc.bases)
	hiDigits := digitsOf(hiCode-1, mc.bases)
	upper = bitmap.NewOnes(mc.NRows)
	for c := range mc.bases {
		upper = upper.And(mc.componentDigitRange(c, int(loDigits[c]), int(hiDigits[c])+1)) //nolint:gosec
	}

	card := uint64(1)
	for _, b := range mc.bases {
		card *= b
	}
	if loCode == 0 && hiCode >= card {
		return upper.Clone(), upper
	}

	return bitmap.New(mc.NRows), upper
}

// Estimate implements Variant: r is mapped onto a bin-code range via
// fineBound (spec §4.E "locate"), then resolved against the per-component
// digit bitmaps.
func (mc *Multicomponent) Estimate(r Range) (lower, upper *bitmap.Bitmap) {
	candLo, candHi, hitLo, hitHi := locateBins(mc.fineBound, r)
	_, upper = mc.codeRangeSandbox(uint64(candLo), uint64(candHi)) //nolint:gosec
	lower, _ = mc.codeRangeSandbox(uint64(hitLo), uint64(hitHi))   //nolint:gosec

	return lower, upper
}

// EstimateUpperCount implements Variant.
func (mc *Multicomponent) EstimateUpperCount(r Range) uint64 {
	_, upper := mc.Estimate(r)

	return upper.Cnt()
}

// Undecidable implements Variant.
func (mc *Multicomponent) Undecidable(r Range) (*bitmap.Bitmap, float32) {
	lower, upper := mc.Estimate(r)

	return equalityUndecidable(lower, upper)
}

// Evaluate implements Variant: the undecidable rows left by Estimate's
// sandwich are candidate-checked against reader, the same resolution
// mechanism every other variant uses for its straddling region.
func (mc *Multicomponent) Evaluate(r Range, reader column.Reader) (*bitmap.Bitmap, error) {
	lower, upper := mc.Estimate(r)
	undecidable := upper.AndNot(lower)
	if undecidable.IsEmpty() || reader == nil {
		return lower, nil
	}

	rows := rowsOf(undecidable)
	vals := reader.ReadRows(rows)
	res := lower.Clone()
	for k, row := range rows {
		if r.Contains(vals[k]) {
			res.Set(row)
		}
	}

	return res, nil
}

// ExpandRange implements Variant.
func (mc *Multicomponent) ExpandRange(r *Range) { equalityExpandRange(mc.fineBound, r) }

// ContractRange implements Variant.
func (mc *Multicomponent) ContractRange(r *Range) { equalityContractRange(mc.fineBound, r) }

// Append implements Variant: rebuilds the fine index and every component's
// bitmaps. Multicomponent's bases are chosen from the fine cardinality at
// construction time and are not re-derived on append, matching how the
// original keeps a column's multicomponent base fixed once chosen. A
// reloaded instance has no fine delegate or cached raw values, so new rows
// are placed directly into the existing components via appendDigits instead.
func (mc *Multicomponent) Append(newValues []float64) error {
	if mc.fine == nil {
		return mc.appendDigits(newValues)
	}

	values := append(append([]float64(nil), mc.fine.values...), newValues...)
	if err := mc.fine.Append(newValues); err != nil {
		return err
	}
	mc.NRows = mc.fine.NRows
	mc.fineBound = mc.fine.Bound
	mc.build(values)

	return nil
}

// appendDigits places newValues into mc's persisted per-digit bitmaps
// directly, using fineBound to locate each value's bin code.
func (mc *Multicomponent) appendDigits(newValues []float64) error {
	mc.ActivateAll()
	base := mc.NRows
	mc.NRows += uint64(len(newValues)) //nolint:gosec
	for _, bm := range mc.Bits {
		if bm != nil {
			bm.EnsureSize(mc.NRows)
		}
	}

	card := len(mc.fineBound)
	for i, v := range newValues {
		bin := binning.Locate(mc.fineBound, v)
		if bin >= card {
			bin = card - 1
		}
		if bin < 0 {
			bin = 0
		}
		mc.setDigits(uint64(bin), base+uint64(i)) //nolint:gosec
	}

	return nil
}

// setDigits marks row in every component's bitmap(s) for code's digits,
// matching how build() populates each component kind.
func (mc *Multicomponent) setDigits(code, row uint64) {
	digits := digitsOf(code, mc.bases)
	for c, d := range digits {
		dd := int(d) //nolint:gosec
		switch mc.kind {
		case componentCumulative:
			n := mc.componentSize(c)
			for k := dd; k < n; k++ {
				mc.Bits[mc.componentOffset(c)+k].Set(row)
			}
		case componentInterval:
			n := mc.componentSize(c)
			for _, w := range [2]int{dd - 1, dd} {
				if w >= 0 && w < n {
					mc.Bits[mc.componentOffset(c)+w].Set(row)
				}
			}
		default:
			mc.Bits[mc.componentOffset(c)+dd].Set(row)
		}
	}
}

// Persist implements Variant: the trailer records the component count and
// per-component base, followed by the fine-bin boundary array, so a loader
// can split the flattened bitmap array back into components and map value
// ranges back onto bin codes (spec §4.B "[variant-specific trailer]").
func (mc *Multicomponent) Persist(path string) error {
	trailer := make([]byte, 4+8*len(mc.bases)+4+8*len(mc.fineBound))
	mc.Engine.PutUint32(trailer[0:4], uint32(len(mc.bases))) //nolint:gosec
	off := 4
	for _, b := range mc.bases {
		mc.Engine.PutUint64(trailer[off:off+8], b)
		off += 8
	}
	mc.Engine.PutUint32(trailer[off:off+4], uint32(len(mc.fineBound))) //nolint:gosec
	off += 4
	for _, v := range mc.fineBound {
		mc.Engine.PutUint64(trailer[off:off+8], math.Float64bits(v))
		off += 8
	}

	return mc.persistCommon(path, trailer)
}
