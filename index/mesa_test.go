package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMesaEvaluateExact(t *testing.T) {
	values := testValues()
	m := NewMesa(values, 5, 100)
	reader := &fakeReader{values: values}

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	got, err := m.Evaluate(r, reader)
	require.NoError(t, err)
	for row, v := range values {
		require.Equal(t, r.Contains(v), got.Get(uint64(row)), "row %d value %v", row, v)
	}
}

// TestMesaBoundMatchesWindowCount guards the on-disk layout invariant
// persistCommon relies on: Bound, MinVal, MaxVal and Bits all share the same
// length (one entry per window, not per fine bin).
func TestMesaBoundMatchesWindowCount(t *testing.T) {
	values := testValues()
	m := NewMesa(values, 5, 100)

	require.Len(t, m.Bound, len(m.Bits))
	require.Len(t, m.MinVal, len(m.Bits))
	require.Len(t, m.MaxVal, len(m.Bits))
	require.Equal(t, len(m.fine.Bits)-1, len(m.Bits))
}

func TestMesaAppendKeepsArraysAligned(t *testing.T) {
	values := testValues()
	m := NewMesa(values, 5, 100)
	require.NoError(t, m.Append([]float64{1000}))

	require.Len(t, m.Bound, len(m.Bits))
	require.Equal(t, uint64(len(values)+1), m.NRows)
}
