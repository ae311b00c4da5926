package storage

import (
	"sort"
	"sync"
	"time"
)

// Entry is a stored value with an optional expiry.
type Entry struct {
	Value     []byte
	ExpiresAt *time.Time // nil if no expiration
}

// IsExpired checks if the entry has expired.
func (e *Entry) IsExpired() bool {
	if e.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*e.ExpiresAt)
}

func (e *Entry) copy() *Entry {
	return &Entry{
		Value:     append([]byte(nil), e.Value...),
		ExpiresAt: copyTime(e.ExpiresAt),
	}
}

// Store defines the interface for one node's key-value storage.
type Store interface {
	// Get retrieves a value by key. Returns false if not found or expired.
	Get(key string) ([]byte, bool)
	// Put stores a value with no expiration.
	Put(key string, value []byte)
	// PutTTL stores a value that expires after ttl.
	PutTTL(key string, value []byte, ttl time.Duration)
	// Delete removes a key and reports whether it was present.
	Delete(key string) bool
	// Take removes a key and returns its entry, expiry included, so it can
	// be moved to another store with Restore.
	Take(key string) (*Entry, bool)
	// Restore stores an entry taken from another store.
	Restore(key string, e *Entry)
	// Keys returns the live keys in sorted order.
	Keys() []string
	// Len returns the number of live keys.
	Len() int
}

// InMemoryStore is an in-memory implementation of Store.
// It's thread-safe and supports TTL expiration.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]*Entry
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		data: make(map[string]*Entry),
	}
}

// Get retrieves a value by key.
func (s *InMemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[key]
	if !exists {
		return nil, false
	}

	if e.IsExpired() {
		// Clean up expired entry (best effort, don't block readers)
		go s.deleteExpired(key)
		return nil, false
	}

	// Return a copy to avoid external modifications
	return append([]byte(nil), e.Value...), true
}

// Put stores a value with no expiration.
func (s *InMemoryStore) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = &Entry{Value: append([]byte(nil), value...)}
}

// PutTTL stores a value that expires after ttl.
func (s *InMemoryStore) PutTTL(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires := time.Now().Add(ttl)
	s.data[key] = &Entry{
		Value:     append([]byte(nil), value...),
		ExpiresAt: &expires,
	}
}

// Delete removes a key.
func (s *InMemoryStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[key]
	delete(s.data, key)
	return exists && !e.IsExpired()
}

// Take removes a key and returns a copy of its entry.
func (s *InMemoryStore) Take(key string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[key]
	if !exists {
		return nil, false
	}
	delete(s.data, key)
	if e.IsExpired() {
		return nil, false
	}
	return e.copy(), true
}

// Restore stores a copy of e under key, replacing any existing entry.
func (s *InMemoryStore) Restore(key string, e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = e.copy()
}

// Keys returns the live keys in sorted order.
func (s *InMemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if !e.IsExpired() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of live keys.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.data {
		if !e.IsExpired() {
			n++
		}
	}
	return n
}

// deleteExpired removes an expired key (called asynchronously).
func (s *InMemoryStore) deleteExpired(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.data[key]; exists && e.IsExpired() {
		delete(s.data, key)
	}
}

// copyTime creates a copy of a time pointer.
func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copy := *t
	return &copy
}
