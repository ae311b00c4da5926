package ring

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"
)

// Node is one entry on the ring.
type Node struct {
	// Hash is the caller-supplied identity of the node.
	Hash uint64
	// Position is Hash modulo the ring size.
	Position uint64
}

// Ring is a consistent hashing ring of a fixed size. The zero Ring is not
// usable; its operations return ErrInvalidConfiguration.
type Ring struct {
	size  uint64
	nodes []Node // sorted by Position

	initialCapacity int
	alloc           Allocator
	grow            GrowthPolicy
	shrink          ShrinkPolicy

	destroyed bool
}

// Option configures a Ring in New.
type Option func(*Ring) error

// WithInitialCapacity sets the capacity of the first allocation.
func WithInitialCapacity(n int) Option {
	return func(r *Ring) error {
		if n <= 0 {
			return fmt.Errorf("initial capacity %d must be positive", n)
		}
		r.initialCapacity = n
		return nil
	}
}

// WithAllocator replaces the allocator used for backing storage.
func WithAllocator(a Allocator) Option {
	return func(r *Ring) error {
		if a == nil {
			return fmt.Errorf("nil allocator")
		}
		r.alloc = a
		return nil
	}
}

// WithMaxCapacity makes any allocation above n fail with ErrAllocation.
// It applies to the allocator in effect when the option runs.
func WithMaxCapacity(n int) Option {
	return func(r *Ring) error {
		if n <= 0 {
			return fmt.Errorf("max capacity %d must be positive", n)
		}
		r.alloc = limitAllocator{next: r.alloc, max: n}
		return nil
	}
}

// WithGrowthPolicy replaces DoublingGrowth.
func WithGrowthPolicy(p GrowthPolicy) Option {
	return func(r *Ring) error {
		if p == nil {
			return fmt.Errorf("nil growth policy")
		}
		r.grow = p
		return nil
	}
}

// WithShrinkPolicy replaces HalfOccupancyShrink.
func WithShrinkPolicy(p ShrinkPolicy) Option {
	return func(r *Ring) error {
		if p == nil {
			return fmt.Errorf("nil shrink policy")
		}
		r.shrink = p
		return nil
	}
}

// New creates an empty ring covering positions [0, size).
// No storage is allocated until the first Insert.
func New(size uint64, opts ...Option) (*Ring, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: ring size must be positive", ErrInvalidConfiguration)
	}
	r := &Ring{
		size:            size,
		initialCapacity: DefaultInitialCapacity,
		alloc:           makeAllocator{},
		grow:            DoublingGrowth,
		shrink:          HalfOccupancyShrink,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
	}
	return r, nil
}

// Destroy releases the ring's storage. Operations on a destroyed ring
// return ErrDestroyed. Calling Destroy again has no effect.
func (r *Ring) Destroy() {
	if r == nil {
		return
	}
	r.nodes = nil
	r.destroyed = true
}

// Size returns the ring size.
func (r *Ring) Size() uint64 {
	if r == nil {
		return 0
	}
	return r.size
}

// Position returns the ring coordinate of hash, or 0 for a ring that was
// not created with New.
func (r *Ring) Position(hash uint64) uint64 {
	if r == nil || r.size == 0 {
		return 0
	}
	return hash % r.size
}

// Len returns the number of nodes on the ring.
func (r *Ring) Len() int {
	if r == nil {
		return 0
	}
	return len(r.nodes)
}

// Cap returns the capacity of the backing storage.
func (r *Ring) Cap() int {
	if r == nil {
		return 0
	}
	return cap(r.nodes)
}

// Nodes returns a copy of the nodes in ring order.
func (r *Ring) Nodes() []Node {
	if r == nil || len(r.nodes) == 0 {
		return []Node{}
	}
	return slices.Clone(r.nodes)
}

// Contains reports whether a node with exactly this hash is on the ring.
// A different hash sharing its position does not count.
func (r *Ring) Contains(hash uint64) bool {
	if r.check() != nil {
		return false
	}
	idx, found := r.search(r.Position(hash))
	return found && r.nodes[idx].Hash == hash
}

func (r *Ring) check() error {
	if r == nil {
		return ErrNilRing
	}
	if r.destroyed {
		return ErrDestroyed
	}
	// a zero Ring has no size and no allocator
	if r.size == 0 {
		return fmt.Errorf("%w: ring not created with New", ErrInvalidConfiguration)
	}
	return nil
}

// search returns the index of the first node whose position is >= position,
// or len(nodes) if there is none, and whether that node sits exactly at
// position.
func (r *Ring) search(position uint64) (int, bool) {
	idx := sort.Search(len(r.nodes), func(i int) bool {
		return r.nodes[i].Position >= position
	})
	return idx, idx < len(r.nodes) && r.nodes[idx].Position == position
}

// Insert adds a node with the given hash.
//
// It fails with ErrNodePresent if any node, whatever its hash, already
// occupies the same position. If the ring is full it grows according to
// its GrowthPolicy; when that allocation fails the ring is unchanged and
// ErrAllocation is returned.
func (r *Ring) Insert(hash uint64) error {
	if err := r.check(); err != nil {
		return err
	}

	n := Node{Hash: hash, Position: r.Position(hash)}
	idx, found := r.search(n.Position)
	if found {
		return fmt.Errorf("%w: hash %d at position %d (held by %d)",
			ErrNodePresent, hash, n.Position, r.nodes[idx].Hash)
	}

	if len(r.nodes) < cap(r.nodes) {
		r.nodes = slices.Insert(r.nodes, idx, n)
		return nil
	}

	newCap := r.grow(cap(r.nodes), r.initialCapacity)
	if newCap <= len(r.nodes) {
		return fmt.Errorf("%w: growth policy returned %d for %d nodes",
			ErrAllocation, newCap, len(r.nodes))
	}
	buf, err := r.allocate(newCap)
	if err != nil {
		return err
	}
	buf = buf[:len(r.nodes)+1]
	copy(buf, r.nodes[:idx])
	buf[idx] = n
	copy(buf[idx+1:], r.nodes[idx:])
	r.nodes = buf
	return nil
}

// Delete removes the node at the position of hash. Deleting a hash that
// is not on the ring succeeds and changes nothing.
//
// Like Insert, Delete matches on position, so it removes whichever node
// occupies hash's position.
func (r *Ring) Delete(hash uint64) error {
	if err := r.check(); err != nil {
		return err
	}

	idx, found := r.search(r.Position(hash))
	if !found {
		return nil
	}

	length := len(r.nodes) - 1
	newCap, ok := r.shrink(length, cap(r.nodes))
	if !ok {
		r.nodes = slices.Delete(r.nodes, idx, idx+1)
		return nil
	}
	if newCap < length {
		newCap = length
	}
	if newCap == 0 {
		r.nodes = nil
		return nil
	}

	buf, err := r.allocate(newCap)
	if err != nil {
		return err
	}
	buf = buf[:length]
	copy(buf, r.nodes[:idx])
	copy(buf[idx:], r.nodes[idx+1:])
	r.nodes = buf
	return nil
}

func (r *Ring) allocate(capacity int) ([]Node, error) {
	buf, err := r.alloc.Alloc(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %d nodes: %v", ErrAllocation, capacity, err)
	}
	if cap(buf) < capacity {
		return nil, fmt.Errorf("%w: asked for %d nodes, got %d",
			ErrAllocation, capacity, cap(buf))
	}
	return buf[:0], nil
}

// Resolve returns the hash of the node owning itemHash: the node at the
// item's position if there is one, else the next node clockwise, wrapping
// around past the end of the ring.
func (r *Ring) Resolve(itemHash uint64) (uint64, error) {
	idx, err := r.owner(itemHash)
	if err != nil {
		return 0, err
	}
	return r.nodes[idx].Hash, nil
}

// Successors returns up to n node hashes in clockwise order, starting with
// the owner of itemHash. Each node appears at most once.
func (r *Ring) Successors(itemHash uint64, n int) ([]uint64, error) {
	idx, err := r.owner(itemHash)
	if err != nil {
		return nil, err
	}
	if n > len(r.nodes) {
		n = len(r.nodes)
	}
	if n < 0 {
		n = 0
	}
	result := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, r.nodes[(idx+i)%len(r.nodes)].Hash)
	}
	return result, nil
}

func (r *Ring) owner(itemHash uint64) (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	if len(r.nodes) == 0 {
		return 0, ErrEmptyRing
	}
	idx, _ := r.search(r.Position(itemHash))
	// Wrap around if the item is past every node
	if idx == len(r.nodes) {
		idx = 0
	}
	return idx, nil
}
