package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("missing")
	require.False(t, ok)

	s.Set("a.b.index", "<binning nbins=10/>")
	v, ok := s.Get("a.b.index")
	require.True(t, ok)
	require.Equal(t, "<binning nbins=10/>", v)
}

func TestStoreGetStringDefault(t *testing.T) {
	s := NewStore()
	require.Equal(t, "fallback", s.GetString("missing", "fallback"))

	s.Set("key", "value")
	require.Equal(t, "value", s.GetString("key", "fallback"))
}

func TestStoreGetBoolDefaultsOnMissingOrUnparsable(t *testing.T) {
	s := NewStore()
	require.True(t, s.GetBool("missing", true))

	s.Set("flag", "not-a-bool")
	require.False(t, s.GetBool("flag", false))

	s.Set("flag2", "true")
	require.True(t, s.GetBool("flag2", false))
}

func TestKeyBuilders(t *testing.T) {
	require.Equal(t, "p.c.index", IndexSpecKey("p", "c"))
	require.Equal(t, "p.c.preferMMapIndex", PreferMMapKey("p", "c"))
	require.Equal(t, "p.c.preferReadIndex", PreferReadKey("p", "c"))
}

func TestResolveIndexSpecPrecedence(t *testing.T) {
	global := NewStore()
	global.Set(IndexSpecKey("part", "col"), "global-spec")

	require.Equal(t, "column-spec", ResolveIndexSpec("column-spec", "partition-spec", global, "part", "col"))
	require.Equal(t, "partition-spec", ResolveIndexSpec("", "partition-spec", global, "part", "col"))
	require.Equal(t, "global-spec", ResolveIndexSpec("", "", global, "part", "col"))
	require.Equal(t, "", ResolveIndexSpec("", "", nil, "part", "col"))
}
