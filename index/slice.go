package index

import (
	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/column"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/format"
)

// Slice is the bit-sliced variant: bit plane k's bitmap marks rows whose
// k-th bit (0 = least significant) is set (spec §3 "Bit-sliced"). Range
// queries are answered by the MSB-first comparison circuit described in
// spec §4.E.
type Slice struct {
	Base
}

var _ Variant = (*Slice)(nil)

// NewSlice builds a bit-sliced index over non-negative integer values.
func NewSlice(values []float64) *Slice {
	var maxV uint64
	for _, v := range values {
		u := uint64(v)
		if u > maxV {
			maxV = u
		}
	}
	nbits := 1
	for (uint64(1) << nbits) <= maxV {
		nbits++
	}

	s := &Slice{Base: Base{
		Tag: format.VariantSlice, NRows: uint64(len(values)), //nolint:gosec
		Bound:  make([]float64, nbits),
		Engine: endian.GetLittleEndianEngine(),
	}}
	for i := range s.Bound {
		s.Bound[i] = float64(i)
	}
	s.Bits = make([]*bitmap.Bitmap, nbits)
	s.MinVal = make([]float64, nbits)
	s.MaxVal = make([]float64, nbits)
	for p := range s.Bits {
		s.Bits[p] = bitmap.New(s.NRows)
	}
	for row, v := range values {
		u := uint64(v)
		for p := 0; p < nbits; p++ {
			if (u>>uint(p))&1 == 1 {
				s.Bits[p].Set(uint64(row)) //nolint:gosec
			}
		}
	}

	return s
}

func (s *Slice) nbits() int { return len(s.Bits) }

// compareLE returns the bitmap of rows whose value is <= c, using the
// standard MSB-first bit-plane comparator.
func (s *Slice) compareLE(c uint64) *bitmap.Bitmap {
	s.ActivateAll()
	eq := bitmap.NewOnes(s.NRows)
	res := bitmap.New(s.NRows)
	for p := s.nbits() - 1; p >= 0; p-- {
		bit := (c >> uint(p)) & 1
		if bit == 1 {
			res = res.Or(eq.AndNot(s.Bits[p]))
			eq = eq.And(s.Bits[p])
		} else {
			eq = eq.AndNot(s.Bits[p])
		}
	}

	return res.Or(eq)
}

func (s *Slice) evaluateOp(op binOp, c float64) *bitmap.Bitmap {
	cu := uint64(c)
	switch op {
	case opLE:
		return s.compareLE(cu)
	case opLT:
		if cu == 0 {
			return bitmap.New(s.NRows)
		}

		return s.compareLE(cu - 1)
	case opGE:
		if cu == 0 {
			return bitmap.NewOnes(s.NRows)
		}

		return bitmap.NewOnes(s.NRows).AndNot(s.compareLE(cu - 1))
	case opGT:
		return bitmap.NewOnes(s.NRows).AndNot(s.compareLE(cu))
	default:
		return bitmap.New(s.NRows)
	}
}

type binOp int

const (
	opLE binOp = iota
	opLT
	opGE
	opGT
)

// Estimate implements Variant: bit-sliced comparisons are exact, so
// lower == upper always.
func (s *Slice) Estimate(r Range) (lower, upper *bitmap.Bitmap) {
	res := bitmap.NewOnes(s.NRows)
	if r.HasLo() {
		op := opGE
		if !r.LoInclusive {
			op = opGT
		}
		res = res.And(s.evaluateOp(op, r.Lo))
	}
	if r.HasHi() {
		op := opLE
		if !r.HiInclusive {
			op = opLT
		}
		res = res.And(s.evaluateOp(op, r.Hi))
	}

	return res, res.Clone()
}

// EstimateUpperCount implements Variant.
func (s *Slice) EstimateUpperCount(r Range) uint64 {
	_, upper := s.Estimate(r)

	return upper.Cnt()
}

// Undecidable implements Variant: always empty, bit-sliced evaluation is
// exact.
func (s *Slice) Undecidable(_ Range) (*bitmap.Bitmap, float32) {
	return bitmap.New(s.NRows), 0
}

// Evaluate implements Variant.
func (s *Slice) Evaluate(r Range, _ column.Reader) (*bitmap.Bitmap, error) {
	lower, _ := s.Estimate(r)

	return lower, nil
}

// ExpandRange implements Variant: a no-op, bit-sliced evaluation is exact.
func (s *Slice) ExpandRange(_ *Range) {}

// ContractRange implements Variant.
func (s *Slice) ContractRange(_ *Range) {}

// Append implements Variant.
func (s *Slice) Append(newValues []float64) error {
	base := s.NRows
	var maxV uint64
	for _, v := range newValues {
		if u := uint64(v); u > maxV {
			maxV = u
		}
	}
	needBits := s.nbits()
	for (uint64(1) << needBits) <= maxV {
		needBits++
	}
	for needBits > len(s.Bits) {
		s.Bits = append(s.Bits, bitmap.New(s.NRows))
		s.Bound = append(s.Bound, float64(len(s.Bound)))
	}

	s.NRows += uint64(len(newValues)) //nolint:gosec
	for _, bm := range s.Bits {
		bm.EnsureSize(s.NRows)
	}
	for i, v := range newValues {
		u := uint64(v)
		for p := 0; p < len(s.Bits); p++ {
			if (u>>uint(p))&1 == 1 {
				s.Bits[p].Set(base + uint64(i)) //nolint:gosec
			}
		}
	}

	return nil
}

// Persist implements Variant.
func (s *Slice) Persist(path string) error {
	return s.persistCommon(path, nil)
}
