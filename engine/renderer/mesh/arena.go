package mesh

import "sync"

// Handle identifies a mesh stored in an Arena. Handles are never reused.
type Handle uint64

// InvalidHandle is the zero Handle; no mesh is ever stored under it.
const InvalidHandle Handle = 0

type arenaEntry struct {
	mesh *Mesh
	refs int
}

// Arena owns meshes and counts the instances referencing each one. A mesh is released when
// its reference count drops back to zero after having been acquired, or when the arena is
// released.
type Arena struct {
	mu      *sync.Mutex
	next    Handle
	entries map[Handle]*arenaEntry
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		mu:      &sync.Mutex{},
		next:    1,
		entries: make(map[Handle]*arenaEntry),
	}
}

// Insert takes ownership of m and returns its handle. The mesh starts with no references.
func (a *Arena) Insert(m *Mesh) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.next
	a.next++
	a.entries[h] = &arenaEntry{mesh: m}
	return h
}

// Get returns the mesh stored under h.
func (a *Arena) Get(h Handle) (*Mesh, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[h]
	if !ok {
		return nil, false
	}
	return e.mesh, true
}

// Acquire adds a reference to h.
//
// Returns:
//   - bool: false if h is unknown
func (a *Arena) Acquire(h Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[h]
	if !ok {
		return false
	}
	e.refs++
	return true
}

// Drop removes a reference from h and releases the mesh once none remain.
//
// Returns:
//   - bool: true if the mesh was released
func (a *Arena) Drop(h Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[h]
	if !ok {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return false
	}
	e.mesh.Release()
	delete(a.entries, h)
	return true
}

// Refs returns the number of references held on h.
func (a *Arena) Refs(h Handle) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[h]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of meshes stored.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Release frees every mesh regardless of references.
func (a *Arena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for h, e := range a.entries {
		e.mesh.Release()
		delete(a.entries, h)
	}
}
