// Package column declares the external collaborator interfaces the index
// package depends on but does not implement (spec §6): a raw-value reader
// used for candidate checks, and the per-column mutex that serializes lazy
// bitmap activation. The table/partition layer that would implement these
// is explicitly out of scope (spec §1 Non-goals); this package exists so the
// index package has a concrete Go interface to depend on and so tests can
// supply an in-memory fake.
package column

import (
	"sync"

	"github.com/fastbit/ibis/format"
)

// Reader reads raw values for a set of row ids, used to resolve straddling
// bins during a candidate check (spec §4.E "Candidate check").
type Reader interface {
	// Type reports the column's element type.
	Type() format.ColumnType
	// ReadAt returns the raw value at row, as a float64 per the spec's
	// "every bin/boundary value is representable as a 64-bit float"
	// invariant (spec §3).
	ReadAt(row uint64) float64
	// ReadRows returns raw values for every row id in rows, in the same
	// order.
	ReadRows(rows []uint64) []float64
}

// Mutex is the per-column lock the spec requires to serialize lazy
// activation (spec §5 "Shared resources"): mutation of an index's bits[]
// array is serialized by a mutex owned by the column object; readers that
// observe a non-null entry may read it without the mutex.
type Mutex struct {
	mu sync.Mutex
}

// Lock acquires exclusive access for populating an absent bitmap entry.
func (m *Mutex) Lock() { m.mu.Lock() }

// Unlock releases the lock acquired by Lock.
func (m *Mutex) Unlock() { m.mu.Unlock() }
