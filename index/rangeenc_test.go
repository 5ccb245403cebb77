package index

import (
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func TestRangeEncodedEvaluateExact(t *testing.T) {
	values := testValues()
	r := NewRangeEncoded(values, 4, 100)
	reader := &fakeReader{values: values, typ: format.ColumnInt32}

	rg := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	got, err := r.Evaluate(rg, reader)
	require.NoError(t, err)

	for row, v := range values {
		require.Equal(t, rg.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestRangeEncodedEstimateMonotone(t *testing.T) {
	values := testValues()
	r := NewRangeEncoded(values, 4, 100)

	rg := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	lower, upper := r.Estimate(rg)
	require.LessOrEqual(t, lower.Cnt(), upper.Cnt())
}

func TestRangeEncodedAppend(t *testing.T) {
	values := testValues()
	r := NewRangeEncoded(values, 4, 100)
	require.NoError(t, r.Append([]float64{1000}))
	require.Equal(t, uint64(len(values)+1), r.NRows)
	require.True(t, r.Bits[len(r.Bits)-1].Get(uint64(len(values))))
}
