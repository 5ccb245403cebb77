package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given term, used to assign a stable
// numeric bitmap slot to a keyword without keeping the string itself in
// the index structure.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
