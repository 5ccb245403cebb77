// Package config implements the key-value configuration store described in
// spec §6: a flat key->string map consulted for per-partition/per-column
// index options. It has no teacher analogue (mebo is a pure library
// configured entirely through functional options) so it is grounded
// directly on the spec's own description of the lookup keys rather than on
// transplanted teacher code.
package config

import "strconv"

// Store is a flat key->string configuration resource, consulted with keys of
// the form "<partition>.<column>.index", "<partition>.<column>.preferMMapIndex",
// and "<partition>.<column>.preferReadIndex".
type Store struct {
	values map[string]string
}

// NewStore creates an empty configuration store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Set assigns a value for key.
func (s *Store) Set(key, value string) {
	s.values[key] = value
}

// Get returns the raw string value and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value for key, or def if absent.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}

	return def
}

// GetBool parses the value for key as a bool, or returns def if absent or
// unparsable.
func (s *Store) GetBool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}

	return b
}

// IndexSpecKey builds the "<partition>.<column>.index" lookup key.
func IndexSpecKey(partition, column string) string {
	return partition + "." + column + ".index"
}

// PreferMMapKey builds the "<partition>.<column>.preferMMapIndex" lookup key.
func PreferMMapKey(partition, column string) string {
	return partition + "." + column + ".preferMMapIndex"
}

// PreferReadKey builds the "<partition>.<column>.preferReadIndex" lookup key.
func PreferReadKey(partition, column string) string {
	return partition + "." + column + ".preferReadIndex"
}

// ResolveIndexSpec implements the spec §4.C lookup order: column-local spec,
// then partition-local spec, then the global resource keyed by
// "<partition>.<column>.index". The first non-empty string wins.
func ResolveIndexSpec(columnSpec, partitionSpec string, global *Store, partition, column string) string {
	if columnSpec != "" {
		return columnSpec
	}
	if partitionSpec != "" {
		return partitionSpec
	}
	if global != nil {
		return global.GetString(IndexSpecKey(partition, column), "")
	}

	return ""
}
