package binning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePolicyDefault(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, KindDefault, p.Kind)

	p, err = ParsePolicy("default")
	require.NoError(t, err)
	require.Equal(t, KindDefault, p.Kind)
}

func TestParsePolicyNone(t *testing.T) {
	p, err := ParsePolicy("<binning none/>")
	require.NoError(t, err)
	require.Equal(t, KindNone, p.Kind)

	p, err = ParsePolicy("nbins=0")
	require.NoError(t, err)
	require.Equal(t, KindNone, p.Kind)
}

func TestParsePolicyAdaptive(t *testing.T) {
	p, err := ParsePolicy("<binning nbins=1000/>")
	require.NoError(t, err)
	require.Equal(t, KindAdaptive, p.Kind)
	require.Equal(t, 1000, p.NBins)
}

func TestParsePolicyUniform(t *testing.T) {
	p, err := ParsePolicy("<binning start=0 end=100 nbins=10/>")
	require.NoError(t, err)
	require.Equal(t, KindUniform, p.Kind)
	require.Equal(t, float64(0), p.Start)
	require.Equal(t, float64(100), p.End)
	require.Equal(t, 10, p.NBins)
}

func TestParsePolicyPrecision(t *testing.T) {
	p, err := ParsePolicy("precision=3")
	require.NoError(t, err)
	require.Equal(t, KindPrecision, p.Kind)
	require.Equal(t, 3, p.Precision)
}

func TestParsePolicyEncodingAndNComp(t *testing.T) {
	p, err := ParsePolicy("<encoding equality/> ncomp=2")
	require.NoError(t, err)
	require.Equal(t, "equality", p.Encoding)
	require.Equal(t, 2, p.NComp)
}

func TestParsePolicyIndexNone(t *testing.T) {
	p, err := ParsePolicy("index=none")
	require.NoError(t, err)
	require.True(t, p.IndexNone)
}

func TestParsePolicyExplicitList(t *testing.T) {
	p, err := ParsePolicy("<binning 1.5,4.5,100/>")
	require.NoError(t, err)
	require.Equal(t, KindExplicit, p.Kind)
	require.Equal(t, []float64{1.5, 4.5, 100}, p.Explicit)
}

func TestParsePolicyInvalidNBins(t *testing.T) {
	_, err := ParsePolicy("nbins=abc")
	require.Error(t, err)
}
