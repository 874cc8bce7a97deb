// Package handles provides a thread-safe handle table mapping opaque
// uint64 ids to owned Go objects.
//
// When native decoder state is exposed to callers across an FFI-style
// boundary, they cannot hold Go pointers. Instead the owning object is
// stored in a Table and callers get back a numeric handle that is safe
// to pass around, store, and eventually release.
//
// Ids are allocated from an atomic counter starting at 1 and are
// strictly increasing across the table's lifetime; a removed id is
// never reissued. Tables are plain values created with New, so tests
// and embedders can run as many independent tables as they like.
package handles

import (
	"sync"
	"sync/atomic"
)

// Table maps uint64 handles to stored objects.
// The zero value is not usable; create tables with New.
type Table struct {
	mu      sync.Mutex
	entries map[uint64]any
	nextID  atomic.Uint64
}

// New creates an empty handle table. The first handle issued is 1.
func New() *Table {
	t := &Table{
		entries: make(map[uint64]any),
	}
	t.nextID.Store(1)
	return t
}

// Put stores an object and returns its new handle id.
// Id allocation is atomic and never contends with the map lock;
// the lock is held only for the map insert.
//
// Thread-safe.
func (t *Table) Put(v any) uint64 {
	id := t.nextID.Add(1) - 1

	t.mu.Lock()
	t.entries[id] = v
	t.mu.Unlock()
	return id
}

// Get retrieves an object by its handle id.
// The second return is false if the id is not live (never issued,
// or already removed — the two are indistinguishable).
//
// Thread-safe.
func (t *Table) Get(id uint64) (any, bool) {
	t.mu.Lock()
	v, ok := t.entries[id]
	t.mu.Unlock()
	return v, ok
}

// Remove deletes a handle and returns the object it named.
// Removing an unknown or already-removed id is a no-op returning
// (nil, false). The id is never reissued afterwards.
//
// Thread-safe.
func (t *Table) Remove(id uint64) (any, bool) {
	t.mu.Lock()
	v, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	t.mu.Unlock()
	return v, ok
}

// Drain removes and returns all live entries. Used for whole-table
// teardown; destruction of the returned objects is the caller's job
// and happens outside the lock.
//
// Thread-safe.
func (t *Table) Drain() []any {
	t.mu.Lock()
	out := make([]any, 0, len(t.entries))
	for id, v := range t.entries {
		out = append(out, v)
		delete(t.entries, id)
	}
	t.mu.Unlock()
	return out
}

// Len returns the number of live handles.
// Useful for debugging and testing resource leaks.
//
// Thread-safe.
func (t *Table) Len() int {
	t.mu.Lock()
	n := len(t.entries)
	t.mu.Unlock()
	return n
}
