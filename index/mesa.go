package index

import (
	"github.com/fastbit/ibis/binning"
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// Mesa is the interval-binned variant: each on-disk bitmap marks a
// contiguous 2-wide window of fine-grained equality bins (spec §3
// "Interval-binned (mesa)"): window w is fine.Bits[w] OR fine.Bits[w+1], so
// it actually covers fine value range [fineBound[w-1], fineBound[w+1)).
// Queries resolve directly against these persisted, overlapping windows
// (locateWindows below); fine is kept only to rebuild the windows on Append
// and is nil once the index has been reloaded from disk, since the
// fine-grained bins themselves are never persisted.
type Mesa struct {
	Base
	fine *Equality // underlying disjoint fine bins, never persisted directly
}

var _ Variant = (*Mesa)(nil)

// NewMesa builds an interval-binned index: nbins fine equality bins, with
// one on-disk bitmap per adjacent pair of fine bins.
func NewMesa(values []float64, nbins int, resolution int) *Mesa {
	fine := NewEquality(values, nbins, resolution)

	nw := len(fine.Bits) - 1
	if nw < 0 {
		nw = 0
	}
	m := &Mesa{
		Base: Base{
			Tag: format.VariantMesa, NRows: fine.NRows,
			Engine: endian.GetLittleEndianEngine(),
		},
		fine: fine,
	}
	m.Bits = make([]*bitmap.Bitmap, nw)
	m.Bound = make([]float64, nw)
	m.MinVal = make([]float64, nw)
	m.MaxVal = make([]float64, nw)
	for i := 0; i < nw; i++ {
		m.Bound[i] = fine.Bound[i+1]
		m.Bits[i] = fine.Bits[i].Or(fine.Bits[i+1])
		m.MinVal[i] = fine.MinVal[i]
		m.MaxVal[i] = fine.MaxVal[i+1]
	}

	return m
}

// windowEdges returns window w's [left, right) value-domain edges. Window
// w's right edge is always m.Bound[w] (persisted directly). Its left edge is
// fineBound[w-1]: for w==0 that's always -inf; for w>=2 it equals
// m.Bound[w-2] (since m.Bound[k] records fineBound[k+1]); for w==1 it's
// fineBound[0], which Mesa never persists (the window array only starts
// recording edges from fineBound[1] on), so knownLeft is false and callers
// must treat window 1's left extent conservatively.
func (m *Mesa) windowEdges(w int) (left, right float64, knownLeft bool) {
	right = posInf
	if w >= 0 && w < len(m.Bound) {
		right = m.Bound[w]
	}
	switch {
	case w <= 0:
		return negInf, right, true
	case w == 1:
		return negInf, right, false
	default:
		return m.Bound[w-2], right, true
	}
}

// locateWindows is locateBins' counterpart for Mesa's overlapping windows
// (spec §4.E "locate"): candLo..candHi are windows that might overlap r (any
// window touching a fine bin r also touches), hitLo..hitHi are windows
// provably fully inside r given the edges Mesa actually persisted. Window 1
// is never classified as a hit when r has a lower bound, since its true left
// edge cannot be recovered and treating it as a hit could claim rows outside
// r (spec's lower ⊆ truth invariant).
func (m *Mesa) locateWindows(r Range) (candLo, candHi, hitLo, hitHi int) {
	nw := len(m.Bits)
	candLo, candHi = 0, nw
	if r.HasHi() {
		// Window idx-1 covers the fine bin holding r.Hi, whether or not
		// r.Hi itself is included.
		idx := binning.Locate(m.Bound, r.Hi) + 1
		if idx < 0 {
			idx = 0
		}
		if idx > nw {
			idx = nw
		}
		candHi = idx
	}
	if r.HasLo() {
		idx := binning.Locate(m.Bound, r.Lo) - 1
		if idx < 0 {
			idx = 0
		}
		candLo = idx
	}
	if candHi < candLo {
		candHi = candLo
	}

	hitLo, hitHi = candLo, candHi
	for hitLo < hitHi {
		left, _, known := m.windowEdges(hitLo)
		if !known {
			hitLo++
			continue
		}
		if r.HasLo() {
			loOK := r.Lo < left || (r.Lo == left && r.LoInclusive)
			if !loOK {
				hitLo++
				continue
			}
		}
		break
	}
	for hitHi > hitLo {
		_, right, _ := m.windowEdges(hitHi - 1)
		if r.HasHi() {
			hiOK := r.Hi > right || (r.Hi == right && !r.HiInclusive)
			if !hiOK {
				hitHi--
				continue
			}
		}
		break
	}

	return candLo, candHi, hitLo, hitHi
}

// sumRange ORs windows [lo, hi) one by one. Windows overlap, so
// combine.Or's complement shortcut, which treats the bitmaps as a partition
// of the rows, does not apply to them.
func (m *Mesa) sumRange(lo, hi int) *bitmap.Bitmap {
	m.activateRange(lo, hi)

	return orRange(m.Bits, lo, hi, m.NRows)
}

// Estimate implements Variant against Mesa's own persisted windows.
func (m *Mesa) Estimate(r Range) (lower, upper *bitmap.Bitmap) {
	candLo, candHi, hitLo, hitHi := m.locateWindows(r)
	lower = m.sumRange(hitLo, hitHi)
	upper = m.sumRange(candLo, candHi)

	return lower, upper
}

// EstimateUpperCount implements Variant. Adjacent windows share rows, so the
// upper bitmap is built and counted rather than summing window counts.
func (m *Mesa) EstimateUpperCount(r Range) uint64 {
	_, upper := m.Estimate(r)

	return upper.Cnt()
}

// Undecidable implements Variant.
func (m *Mesa) Undecidable(r Range) (*bitmap.Bitmap, float32) {
	lower, upper := m.Estimate(r)

	return equalityUndecidable(lower, upper)
}

// Evaluate implements Variant: exact hits from fully-contained windows,
// candidate-checking straddling windows against reader.
func (m *Mesa) Evaluate(r Range, reader column.Reader) (*bitmap.Bitmap, error) {
	candLo, candHi, hitLo, hitHi := m.locateWindows(r)
	res := m.sumRange(hitLo, hitHi)

	for _, straddle := range [][2]int{{candLo, hitLo}, {hitHi, candHi}} {
		lo, hi := straddle[0], straddle[1]
		for i := lo; i < hi; i++ {
			m.activate(i)
			bm := m.Bits[i]
			if bm == nil || bm.IsEmpty() || reader == nil {
				continue
			}
			rows := rowsOf(bm)
			vals := reader.ReadRows(rows)
			for k, row := range rows {
				if r.Contains(vals[k]) {
					res.Set(row)
				}
			}
		}
	}

	return res, nil
}

// ExpandRange implements Variant: widens against the windows' right-edge
// array, the same coarser-but-safe approach TwoLevel uses.
func (m *Mesa) ExpandRange(r *Range) { equalityExpandRange(m.Bound, r) }

// ContractRange implements Variant.
func (m *Mesa) ContractRange(r *Range) { equalityContractRange(m.Bound, r) }

// Append implements Variant: rebuilds the fine index and re-derives the
// window bitmaps. A reloaded instance has no fine delegate, so new rows are
// placed directly into the existing windows via appendWindows instead.
func (m *Mesa) Append(newValues []float64) error {
	if m.fine == nil {
		return m.appendWindows(newValues)
	}
	if err := m.fine.Append(newValues); err != nil {
		return err
	}
	nw := len(m.fine.Bits) - 1
	if nw < 0 {
		nw = 0
	}
	m.Bits = make([]*bitmap.Bitmap, nw)
	m.Bound = make([]float64, nw)
	for i := 0; i < nw; i++ {
		m.Bound[i] = m.fine.Bound[i+1]
		m.Bits[i] = m.fine.Bits[i].Or(m.fine.Bits[i+1])
	}
	m.NRows = m.fine.NRows

	return nil
}

// appendWindows places newValues into m's persisted windows directly,
// approximating the fine bin a value falls into from the window boundary
// array itself (window w's right edge is fineBound[w+1]) and marking both
// windows that can touch it. Window 1's ambiguity (spec §4.E; see
// windowEdges) means a value near that boundary may be marked in one extra
// window; that is safe for estimate's sandwich invariant, just slightly
// looser than a full rebuild from raw values.
func (m *Mesa) appendWindows(newValues []float64) error {
	m.ActivateAll()
	base := m.NRows
	m.NRows += uint64(len(newValues)) //nolint:gosec
	for _, bm := range m.Bits {
		if bm != nil {
			bm.EnsureSize(m.NRows)
		}
	}
	nw := len(m.Bits)
	for i, v := range newValues {
		idx := binning.Locate(m.Bound, v)
		row := base + uint64(i) //nolint:gosec
		for _, w := range [2]int{idx, idx + 1} {
			if w >= 0 && w < nw {
				m.Bits[w].Set(row)
			}
		}
	}

	return nil
}

// Persist implements Variant.
func (m *Mesa) Persist(path string) error {
	return m.persistCommon(path, nil)
}
