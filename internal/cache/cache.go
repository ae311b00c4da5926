package cache

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"conhash/internal/config"
	"conhash/internal/router"
	"conhash/internal/storage"
)

// ErrLastNode is returned when removing the only node while it still
// holds keys.
var ErrLastNode = errors.New("cache: cannot remove last node holding keys")

// Cache is an in-memory cache sharded across nodes by consistent hashing.
// Each node has its own store; keys live on the store of their owner.
type Cache struct {
	// mu serializes membership changes against reads and writes so a key is
	// never looked up while it is between stores.
	mu     sync.RWMutex
	router *router.Router
	stores map[string]storage.Store
}

// New creates a cache and adds every node in cfg.Nodes.
func New(cfg config.Config) (*Cache, error) {
	rt, err := router.New(cfg)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		router: rt,
		stores: make(map[string]storage.Store),
	}
	for _, n := range cfg.Nodes {
		if _, err := c.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	return c, nil
}

func (c *Cache) storeFor(key string) (storage.Store, error) {
	owner, err := c.router.Owner(key)
	if err != nil {
		return nil, err
	}
	return c.stores[owner.ID], nil
}

// Put stores value under key on the key's owner.
func (c *Cache) Put(key string, value []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, err := c.storeFor(key)
	if err != nil {
		return err
	}
	s.Put(key, value)
	return nil
}

// PutTTL stores value under key with an expiry.
func (c *Cache) PutTTL(key string, value []byte, ttl time.Duration) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, err := c.storeFor(key)
	if err != nil {
		return err
	}
	s.PutTTL(key, value, ttl)
	return nil
}

// Get returns the value stored under key.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, err := c.storeFor(key)
	if err != nil {
		return nil, false, err
	}
	value, ok := s.Get(key)
	return value, ok, nil
}

// Delete removes key.
func (c *Cache) Delete(key string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, err := c.storeFor(key)
	if err != nil {
		return err
	}
	s.Delete(key)
	return nil
}

// Owner returns the node currently responsible for key.
func (c *Cache) Owner(key string) (config.NodeSpec, error) {
	return c.router.Owner(key)
}

// AddNode places a new node and moves to it the keys it now owns. It
// returns the number of keys moved.
func (c *Cache) AddNode(node config.NodeSpec) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.router.AddNode(node); err != nil {
		return 0, err
	}
	c.stores[node.ID] = storage.NewInMemoryStore()

	moved := 0
	for id, s := range c.stores {
		if id == node.ID {
			continue
		}
		n, err := c.rehome(id, s)
		moved += n
		if err != nil {
			return moved, err
		}
	}

	log.Printf("[cache] Node %s joined: %d keys moved", node.ID, moved)
	return moved, nil
}

// RemoveNode takes a node off the ring and hands its keys to their new
// owners. It returns the number of keys moved.
func (c *Cache) RemoveNode(nodeID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, exists := c.stores[nodeID]
	if !exists {
		return 0, nil
	}
	if len(c.stores) == 1 && s.Len() > 0 {
		return 0, fmt.Errorf("%w: %s has %d keys", ErrLastNode, nodeID, s.Len())
	}

	if err := c.router.RemoveNode(nodeID); err != nil {
		return 0, err
	}
	delete(c.stores, nodeID)

	moved, err := c.rehome(nodeID, s)
	if err != nil {
		return moved, err
	}

	log.Printf("[cache] Node %s left: %d keys moved", nodeID, moved)
	return moved, nil
}

// rehome moves every key in s that no longer belongs to nodeID to its
// current owner.
func (c *Cache) rehome(nodeID string, s storage.Store) (int, error) {
	moved := 0
	for _, key := range s.Keys() {
		owner, err := c.router.Owner(key)
		if err != nil {
			return moved, err
		}
		if owner.ID == nodeID {
			continue
		}
		e, ok := s.Take(key)
		if !ok {
			continue // expired meanwhile
		}
		c.stores[owner.ID].Restore(key, e)
		moved++
	}
	return moved, nil
}

// Stats returns the number of live keys held by each node.
func (c *Cache) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[string]int, len(c.stores))
	for id, s := range c.stores {
		stats[id] = s.Len()
	}
	return stats
}

// Len returns the total number of live keys.
func (c *Cache) Len() int {
	total := 0
	for _, n := range c.Stats() {
		total += n
	}
	return total
}

// Nodes returns the cache's nodes sorted by ID.
func (c *Cache) Nodes() []config.NodeSpec {
	return c.router.Nodes()
}
