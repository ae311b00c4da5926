package ring

import "sync"

// Synced guards a Ring with a single RWMutex. Lookups share the read lock;
// every mutation holds the write lock for its whole duration.
type Synced struct {
	mu sync.RWMutex
	r  *Ring
}

// NewSynced creates a Ring with New and wraps it.
func NewSynced(size uint64, opts ...Option) (*Synced, error) {
	r, err := New(size, opts...)
	if err != nil {
		return nil, err
	}
	return &Synced{r: r}, nil
}

// Insert calls Ring.Insert under the write lock.
func (s *Synced) Insert(hash uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Insert(hash)
}

// Delete calls Ring.Delete under the write lock.
func (s *Synced) Delete(hash uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Delete(hash)
}

// Update runs fn with exclusive access to the ring. fn must not keep the
// *Ring after it returns.
func (s *Synced) Update(fn func(r *Ring) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.r)
}

// Destroy calls Ring.Destroy under the write lock.
func (s *Synced) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Destroy()
}

// Resolve calls Ring.Resolve under the read lock.
func (s *Synced) Resolve(itemHash uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Resolve(itemHash)
}

// Successors calls Ring.Successors under the read lock.
func (s *Synced) Successors(itemHash uint64, n int) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Successors(itemHash, n)
}

// Contains calls Ring.Contains under the read lock.
func (s *Synced) Contains(hash uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Contains(hash)
}

// Len returns the number of nodes on the ring.
func (s *Synced) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Len()
}

// Nodes returns a copy of the nodes in ring order.
func (s *Synced) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Nodes()
}
