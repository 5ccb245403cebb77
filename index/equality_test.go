package index

import (
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

// fakeReader is an in-memory column.Reader backed by a plain slice, used to
// exercise candidate checks against straddling bins.
type fakeReader struct {
	values []float64
	typ    format.ColumnType
}

func (f *fakeReader) Type() format.ColumnType { return f.typ }

func (f *fakeReader) ReadAt(row uint64) float64 { return f.values[row] }

func (f *fakeReader) ReadRows(rows []uint64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = f.values[r]
	}

	return out
}

func testValues() []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 20, 30, 40, 50, 60}
}

func TestEqualityEvaluateExact(t *testing.T) {
	values := testValues()
	e := NewEquality(values, 4, 100)
	reader := &fakeReader{values: values, typ: format.ColumnInt32}

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	got, err := e.Evaluate(r, reader)
	require.NoError(t, err)

	for row, v := range values {
		want := r.Contains(v)
		require.Equal(t, want, got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestEqualityEstimateSandwich(t *testing.T) {
	values := testValues()
	e := NewEquality(values, 4, 100)

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	lower, upper := e.Estimate(r)

	for row := range values {
		if lower.Get(uint64(row)) {
			require.True(t, upper.Get(uint64(row)), "lower must be subset of upper at row %d", row)
		}
	}
}

func TestEqualityAppend(t *testing.T) {
	values := testValues()
	e := NewEquality(values, 4, 100)
	require.NoError(t, e.Append([]float64{100, 2}))
	require.Equal(t, uint64(len(values)+2), e.NRows)

	reader := &fakeReader{values: append(append([]float64(nil), values...), 100, 2), typ: format.ColumnInt32}
	r := Range{Lo: 100, Hi: 100, LoInclusive: true, HiInclusive: true}
	got, err := e.Evaluate(r, reader)
	require.NoError(t, err)
	require.True(t, got.Get(uint64(len(values))))
}

func TestEqualityExpandContractRange(t *testing.T) {
	values := testValues()
	e := NewEquality(values, 4, 100)

	r := Range{Lo: 3.5, Hi: 25.5, LoInclusive: true, HiInclusive: true}
	expanded := r
	e.ExpandRange(&expanded)
	contracted := r
	e.ContractRange(&contracted)

	require.LessOrEqual(t, expanded.Lo, r.Lo)
	require.GreaterOrEqual(t, expanded.Hi, r.Hi)
	require.GreaterOrEqual(t, contracted.Lo, r.Lo)
	require.LessOrEqual(t, contracted.Hi, r.Hi)
}
