package core

import "sync"

// QuadStore is the host-side quad collection. The unit of change is the whole
// collection: Replace and Append install a new backing slice, so a slice
// returned by Snapshot is never written to again.
type QuadStore struct {
	mu      sync.RWMutex
	quads   []Quad
	dirty   bool
	version uint64
}

// NewQuadStore returns an empty store that is dirty, so the first sync
// establishes the (empty) GPU mirror.
func NewQuadStore() *QuadStore {
	return &QuadStore{dirty: true}
}

// Replace installs quads as the full collection and marks the store dirty.
// The store takes ownership of the slice.
func (s *QuadStore) Replace(quads []Quad) {
	s.mu.Lock()
	s.quads = quads
	s.version++
	s.dirty = true
	s.mu.Unlock()
}

// Append extends the collection copy-on-write and marks the store dirty.
func (s *QuadStore) Append(quads ...Quad) {
	if len(quads) == 0 {
		return
	}
	s.mu.Lock()
	next := make([]Quad, 0, len(s.quads)+len(quads))
	next = append(next, s.quads...)
	next = append(next, quads...)
	s.quads = next
	s.version++
	s.dirty = true
	s.mu.Unlock()
}

func (s *QuadStore) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Snapshot returns the current collection together with its version.
// The returned slice must be treated as read-only.
func (s *QuadStore) Snapshot() ([]Quad, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quads, s.version
}

// ClearDirty marks the store synchronized with the given snapshot version.
// If the collection changed after that snapshot was taken the flag stays set
// and false is returned.
func (s *QuadStore) ClearDirty(synced uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if synced != s.version {
		return false
	}
	s.dirty = false
	return true
}

func (s *QuadStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quads)
}

func (s *QuadStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
