// Package index implements the shared variant contract (spec §4.E), the
// factory that selects and constructs one of the ~20 encoding schemes, and
// the three-mode loader. It is the largest component of the module (spec
// §2 budgets it at roughly 60% of the core) and is built on the bitmap,
// binning, combine, and section packages beneath it.
package index

import (
	"math"

	"github.com/fastbit/ibis/format"
)

// Range is a query predicate over a column's value domain: rows r with
// Lo (op) r (op) Hi, where each endpoint's inclusivity is independent.
type Range struct {
	Lo, Hi                   float64
	LoInclusive, HiInclusive bool
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// HasLo reports whether the range has a finite lower bound.
func (r Range) HasLo() bool { return r.Lo > negInf }

// HasHi reports whether the range has a finite upper bound.
func (r Range) HasHi() bool { return r.Hi < posInf }

// Full returns a range matching every value (equivalent to no predicate).
func Full() Range {
	return Range{Lo: negInf, Hi: posInf, LoInclusive: true, HiInclusive: true}
}

// Contains reports whether x satisfies the range's predicate.
func (r Range) Contains(x float64) bool {
	if r.LoInclusive {
		if x < r.Lo {
			return false
		}
	} else if x <= r.Lo {
		return false
	}
	if r.HiInclusive {
		if x > r.Hi {
			return false
		}
	} else if x >= r.Hi {
		return false
	}

	return true
}

// ColumnTypeCompatible reports whether t can be queried with a float64-typed
// Range without loss, per spec §3's "every bin/boundary value is
// representable as a 64-bit float" invariant.
func ColumnTypeCompatible(t format.ColumnType) bool {
	return t != format.ColumnUnknown && t != format.ColumnText
}
