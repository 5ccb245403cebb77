package index

import (
	"testing"

	"github.com/fastbit/ibis/format"
	"github.com/stretchr/testify/require"
)

func TestBuildIndexNoneReturnsNil(t *testing.T) {
	v, err := Build([]float64{1, 2, 3}, format.ColumnInt64, "index=none")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestBuildTextColumnRejected(t *testing.T) {
	_, err := Build([]float64{1}, format.ColumnText, "")
	require.Error(t, err)
}

func TestBuildOverrideSelectsVariant(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	v, err := Build(values, format.ColumnInt64, "index=relic")
	require.NoError(t, err)
	require.Equal(t, format.VariantRelic, v.VariantTag())
}

func TestBuildDirekteOverride(t *testing.T) {
	values := []float64{0, 1, 2, 3}
	v, err := Build(values, format.ColumnInt64, "<binning none/> index=direkte")
	require.NoError(t, err)
	require.Equal(t, format.VariantDirekte, v.VariantTag())
}

func TestBuildUniformBinningProducesEqualityByDefault(t *testing.T) {
	values := []float64{1, 20, 50, 99}
	v, err := Build(values, format.ColumnFloat64, "<binning start=0 end=100 nbins=10/>")
	require.NoError(t, err)
	require.Equal(t, format.VariantBin, v.VariantTag())
}

func TestBuildUniformBinningRangeEncoding(t *testing.T) {
	values := []float64{1, 20, 50, 99}
	v, err := Build(values, format.ColumnFloat64, "<binning start=0 end=100 nbins=10/> <encoding range/>")
	require.NoError(t, err)
	require.Equal(t, format.VariantRange, v.VariantTag())
}

func TestBuildPrecisionYieldsReduced(t *testing.T) {
	values := []float64{1.001, 1.002, 5.5}
	v, err := Build(values, format.ColumnFloat64, "precision=2")
	require.NoError(t, err)
	require.Equal(t, format.VariantBak, v.VariantTag())
}

func TestBuildAdaptiveTwoLevelEncoding(t *testing.T) {
	values := testValues()
	v, err := Build(values, format.ColumnFloat64, "<binning nbins=9/> <encoding zone/>")
	require.NoError(t, err)
	require.Equal(t, format.VariantZone, v.VariantTag())
}

func TestBuildAdaptiveMulticomponent(t *testing.T) {
	values := testValues()
	v, err := Build(values, format.ColumnFloat64, "<binning nbins=9/> ncomp=3")
	require.NoError(t, err)
	require.Equal(t, format.VariantEgale, v.VariantTag())
}

func TestBuildNoneKindUnbinnedMulticomponent(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	v, err := Build(values, format.ColumnInt64, "nbins=0 ncomp=3")
	require.NoError(t, err)
	require.Equal(t, format.VariantFade, v.VariantTag())
}

func TestBuildKeywordsDefaultBuckets(t *testing.T) {
	k := BuildKeywords([]string{"hello world"}, 0)
	require.Equal(t, defaultResolution, k.nbuckets)
}

func TestBuildDefaultSmallIntegerUsesRelic(t *testing.T) {
	v := buildDefault([]float64{1, 2, 3}, format.ColumnInt8)
	require.Equal(t, format.VariantRelic, v.VariantTag())
}

func TestBuildDefaultFloatUsesEquality(t *testing.T) {
	v := buildDefault([]float64{1.5, 2.5, 3.5}, format.ColumnFloat64)
	require.Equal(t, format.VariantBin, v.VariantTag())
}
