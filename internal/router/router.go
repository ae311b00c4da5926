package router

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/slices"

	"conhash/internal/config"
	"conhash/ring"
)

var (
	// ErrNodeExists is returned when adding a node ID twice.
	ErrNodeExists = errors.New("router: node already exists")
	// ErrNoPlacement is returned when every vnode of a new node collides
	// with a position already taken.
	ErrNoPlacement = errors.New("router: no free position for node")
	// ErrNoNodes is returned by lookups when no node has been added.
	ErrNoNodes = errors.New("router: no nodes")
)

// HashKey hashes a key onto the ring's hash space.
func HashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

func vnodeHash(nodeID string, i int) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%s-vnode-%d", nodeID, i))
}

// Router maps string keys to physical nodes. Each node is placed on the
// ring as a set of synthetic hashes; the router remembers which node each
// one belongs to.
type Router struct {
	mu     sync.RWMutex
	ring   *ring.Synced
	vnodes int

	nodes  map[string]config.NodeSpec
	points map[string][]uint64 // nodeID -> placed vnode hashes
	owners map[uint64]string   // vnode hash -> nodeID
}

// New creates a router with an empty ring sized by cfg. cfg.Nodes is not
// applied; call AddNode for each.
func New(cfg config.Config) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r, err := ring.NewSynced(cfg.RingSize, cfg.RingOptions()...)
	if err != nil {
		return nil, err
	}
	return &Router{
		ring:   r,
		vnodes: cfg.VNodes,
		nodes:  make(map[string]config.NodeSpec),
		points: make(map[string][]uint64),
		owners: make(map[uint64]string),
	}, nil
}

// AddNode places node on the ring. Vnodes whose position is already taken
// are skipped. If none can be placed, or the ring fails to grow, nothing
// is left on the ring.
func (r *Router) AddNode(node config.NodeSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %s", ErrNodeExists, node.ID)
	}

	var placed []uint64
	skipped := 0
	err := r.ring.Update(func(rg *ring.Ring) error {
		for i := 0; i < r.vnodes; i++ {
			h := vnodeHash(node.ID, i)
			err := rg.Insert(h)
			if errors.Is(err, ring.ErrNodePresent) {
				skipped++
				continue
			}
			if err != nil {
				rollback(rg, node.ID, placed)
				return err
			}
			placed = append(placed, h)
		}
		if len(placed) == 0 {
			return fmt.Errorf("%w: %s (%d vnodes collided)", ErrNoPlacement, node.ID, skipped)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.nodes[node.ID] = node
	r.points[node.ID] = placed
	for _, h := range placed {
		r.owners[h] = node.ID
	}

	if skipped > 0 {
		log.Printf("[router] Added node %s: %d vnodes placed, %d skipped on collision",
			node.ID, len(placed), skipped)
	} else {
		log.Printf("[router] Added node %s: %d vnodes placed", node.ID, len(placed))
	}
	return nil
}

func rollback(rg *ring.Ring, nodeID string, placed []uint64) {
	for _, h := range placed {
		if err := rg.Delete(h); err != nil {
			log.Printf("[router] Rollback of %s vnode %d failed: %v", nodeID, h, err)
		}
	}
}

// RemoveNode takes all of a node's vnodes off the ring. Removing an
// unknown node is a no-op.
func (r *Router) RemoveNode(nodeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	placed, exists := r.points[nodeID]
	if !exists {
		return nil
	}

	removed := 0
	err := r.ring.Update(func(rg *ring.Ring) error {
		for _, h := range placed {
			if err := rg.Delete(h); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		// keep bookkeeping in line with what is still on the ring
		for _, h := range placed[:removed] {
			delete(r.owners, h)
		}
		r.points[nodeID] = placed[removed:]
		return fmt.Errorf("remove %s: %w", nodeID, err)
	}

	for _, h := range placed {
		delete(r.owners, h)
	}
	delete(r.points, nodeID)
	delete(r.nodes, nodeID)

	log.Printf("[router] Removed node %s: %d vnodes", nodeID, len(placed))
	return nil
}

// Owner returns the node responsible for key.
func (r *Router) Owner(key string) (config.NodeSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, err := r.ring.Resolve(HashKey(key))
	if err != nil {
		if errors.Is(err, ring.ErrEmptyRing) {
			return config.NodeSpec{}, fmt.Errorf("%w: %w", ErrNoNodes, err)
		}
		return config.NodeSpec{}, err
	}
	return r.nodes[r.owners[h]], nil
}

// Replicas returns up to n distinct nodes for key, starting with its owner
// and walking the ring clockwise.
func (r *Router) Replicas(key string, n int) ([]config.NodeSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 {
		return []config.NodeSpec{}, nil
	}

	hashes, err := r.ring.Successors(HashKey(key), r.ring.Len())
	if err != nil {
		if errors.Is(err, ring.ErrEmptyRing) {
			return nil, fmt.Errorf("%w: %w", ErrNoNodes, err)
		}
		return nil, err
	}

	seen := make(map[string]bool)
	result := make([]config.NodeSpec, 0, n)
	for _, h := range hashes {
		id := r.owners[h]
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, r.nodes[id])
		if len(result) == n {
			break
		}
	}
	return result, nil
}

// Nodes returns all nodes sorted by ID.
func (r *Router) Nodes() []config.NodeSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]config.NodeSpec, 0, len(r.nodes))
	for _, n := range r.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b config.NodeSpec) int {
		return strings.Compare(a.ID, b.ID)
	})
	return nodes
}

// VNodes returns how many vnodes of nodeID are on the ring.
func (r *Router) VNodes(nodeID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.points[nodeID])
}
