package index

import (
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func TestMulticomponentEgaleEvaluateExact(t *testing.T) {
	values := testValues()
	mc := NewMulticomponent(values, 5, 2, 100, format.VariantEgale, componentEquality, false)
	reader := &fakeReader{values: values}

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	got, err := mc.Evaluate(r, reader)
	require.NoError(t, err)
	for row, v := range values {
		require.Equal(t, r.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

func TestMulticomponentFadeOneBinPerDistinctValue(t *testing.T) {
	values := []float64{1, 1, 2, 2, 2, 3}
	mc := NewMulticomponent(values, 0, 2, 10, format.VariantFade, componentEquality, true)

	require.Equal(t, uint64(len(values)), mc.NRows)
	require.Equal(t, len(mc.bases), len(mc.components))
}

func TestMulticomponentFlattenedBitsMatchComponents(t *testing.T) {
	values := testValues()
	mc := NewMulticomponent(values, 5, 3, 100, format.VariantEgale, componentEquality, false)

	var want int
	for _, comp := range mc.components {
		want += len(comp)
	}
	require.Equal(t, want, len(mc.Bits))
	require.Equal(t, len(mc.Bits), len(mc.Bound))
}

func TestMulticomponentAppendRebuildsComponents(t *testing.T) {
	values := testValues()
	mc := NewMulticomponent(values, 5, 2, 100, format.VariantEgale, componentEquality, false)

	require.NoError(t, mc.Append([]float64{1000}))
	require.Equal(t, uint64(len(values)+1), mc.NRows)

	reader := &fakeReader{values: append(append([]float64(nil), values...), 1000)}
	r := Range{Lo: 1000, Hi: 1000, LoInclusive: true, HiInclusive: true}
	got, err := mc.Evaluate(r, reader)
	require.NoError(t, err)
	require.True(t, got.Get(uint64(len(values))))
}
