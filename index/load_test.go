package index

import (
	"path/filepath"
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func TestLoadVariantRoundTripEquality(t *testing.T) {
	values := testValues()
	eq := NewEquality(values, 5, 100)
	path := filepath.Join(t.TempDir(), "eq.idx")
	require.NoError(t, eq.Persist(path))

	v, err := LoadVariant(path, FullRead)
	require.NoError(t, err)
	require.Equal(t, eq.VariantTag(), v.VariantTag())

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	reader := &fakeReader{values: values}
	got, err := v.Evaluate(r, reader)
	require.NoError(t, err)
	for row, val := range values {
		require.Equal(t, r.Contains(val), got.Get(uint64(row)), "row %d value %v", row, val)
	}
}

func TestLoadVariantRoundTripKeywords(t *testing.T) {
	docs := []string{"the quick fox", "lazy dog", "quick run"}
	k := NewKeywords(docs, 32)
	path := filepath.Join(t.TempDir(), "kw.idx")
	require.NoError(t, k.Persist(path))

	v, err := LoadVariant(path, FullRead)
	require.NoError(t, err)
	loaded, ok := v.(*Keywords)
	require.True(t, ok)

	got, err := loaded.Evaluate(loaded.MatchTerm("quick"), nil)
	require.NoError(t, err)
	require.True(t, got.Get(0))
	require.True(t, got.Get(2))
	require.False(t, got.Get(1))
}

func TestLoadVariantRoundTripMesa(t *testing.T) {
	values := testValues()
	m := NewMesa(values, 5, 100)
	path := filepath.Join(t.TempDir(), "mesa.idx")
	require.NoError(t, m.Persist(path))

	v, err := LoadVariant(path, FullRead)
	require.NoError(t, err)
	require.Equal(t, m.VariantTag(), v.VariantTag())
	_, ok := v.(*Mesa)
	require.True(t, ok)

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	reader := &fakeReader{values: values}
	want, err := m.Evaluate(r, reader)
	require.NoError(t, err)
	got, err := v.Evaluate(r, reader)
	require.NoError(t, err)
	for row, val := range values {
		require.Equal(t, want.Get(uint64(row)), got.Get(uint64(row)), "row %d value %v", row, val)
	}
}

func TestLoadVariantRoundTripTwoLevel(t *testing.T) {
	values := testValues()
	tl := NewTwoLevel(values, 3, 2, 100, format.VariantAmbit, true, fineCumulative)
	path := filepath.Join(t.TempDir(), "ambit.idx")
	require.NoError(t, tl.Persist(path))

	v, err := LoadVariant(path, FullRead)
	require.NoError(t, err)
	require.Equal(t, tl.VariantTag(), v.VariantTag())
	loaded, ok := v.(*TwoLevel)
	require.True(t, ok)
	require.True(t, loaded.coarseCumulative)
	require.Nil(t, loaded.fine)

	r := Range{Lo: 2, Hi: 40, LoInclusive: true, HiInclusive: true}
	reader := &fakeReader{values: values}
	got, err := v.Evaluate(r, reader)
	require.NoError(t, err)
	for row, val := range values {
		require.Equal(t, r.Contains(val), got.Get(uint64(row)), "row %d value %v", row, val)
	}

	require.NoError(t, v.(*TwoLevel).Append([]float64{1000}))
	require.Equal(t, uint64(len(values)+1), v.(*TwoLevel).NRows)
}

func TestLoadVariantRoundTripMulticomponent(t *testing.T) {
	cases := []struct {
		name string
		tag  format.VariantTag
		kind componentKind
	}{
		{"egale", format.VariantEgale, componentEquality},
		{"moins", format.VariantMoins, componentCumulative},
		{"entre", format.VariantEntre, componentInterval},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := testValues()
			mc := NewMulticomponent(values, 5, 2, 100, tc.tag, tc.kind, false)
			path := filepath.Join(t.TempDir(), tc.name+".idx")
			require.NoError(t, mc.Persist(path))

			v, err := LoadVariant(path, FullRead)
			require.NoError(t, err)
			require.Equal(t, mc.VariantTag(), v.VariantTag())
			loaded, ok := v.(*Multicomponent)
			require.True(t, ok)
			require.Equal(t, mc.bases, loaded.bases)
			require.Equal(t, mc.fineBound, loaded.fineBound)

			r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
			reader := &fakeReader{values: values}
			want, err := mc.Evaluate(r, reader)
			require.NoError(t, err)
			got, err := v.Evaluate(r, reader)
			require.NoError(t, err)
			for row, val := range values {
				require.Equal(t, want.Get(uint64(row)), got.Get(uint64(row)), "row %d value %v", row, val)
			}
		})
	}
}

func TestLoadVariantMetadataOnlyThenActivates(t *testing.T) {
	values := testValues()
	eq := NewEquality(values, 5, 100)
	path := filepath.Join(t.TempDir(), "eq-meta.idx")
	require.NoError(t, eq.Persist(path))

	v, err := LoadVariant(path, MetadataOnly)
	require.NoError(t, err)

	r := Range{Lo: 5, Hi: 30, LoInclusive: true, HiInclusive: true}
	reader := &fakeReader{values: values}
	got, err := v.Evaluate(r, reader)
	require.NoError(t, err)
	for row, val := range values {
		require.Equal(t, r.Contains(val), got.Get(uint64(row)), "row %d value %v", row, val)
	}
}
