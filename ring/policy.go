package ring

import "fmt"

// DefaultInitialCapacity is the capacity of the first allocation made by
// a ring.
const DefaultInitialCapacity = 8

// Allocator provides backing storage for the ring's node slice.
//
// Alloc must return a slice of length 0 and capacity of at least capacity,
// or an error. The ring reports any error as ErrAllocation.
type Allocator interface {
	Alloc(capacity int) ([]Node, error)
}

// AllocatorFunc adapts a function to the Allocator interface.
type AllocatorFunc func(capacity int) ([]Node, error)

// Alloc calls f(capacity).
func (f AllocatorFunc) Alloc(capacity int) ([]Node, error) {
	return f(capacity)
}

type makeAllocator struct{}

func (makeAllocator) Alloc(capacity int) (nodes []Node, err error) {
	defer func() {
		// make panics on a capacity it cannot satisfy
		if r := recover(); r != nil {
			nodes, err = nil, fmt.Errorf("make %d nodes: %v", capacity, r)
		}
	}()
	return make([]Node, 0, capacity), nil
}

// limitAllocator refuses requests above max.
type limitAllocator struct {
	next Allocator
	max  int
}

func (a limitAllocator) Alloc(capacity int) ([]Node, error) {
	if capacity > a.max {
		return nil, fmt.Errorf("capacity %d exceeds limit %d", capacity, a.max)
	}
	return a.next.Alloc(capacity)
}

// GrowthPolicy returns the capacity to allocate when an insert finds the
// ring full at the given capacity. initial is the ring's configured
// initial capacity. The result must exceed capacity.
type GrowthPolicy func(capacity, initial int) int

// DoublingGrowth allocates initial on the first insert and doubles the
// capacity after that.
func DoublingGrowth(capacity, initial int) int {
	if capacity == 0 {
		return initial
	}
	return capacity * 2
}

// ShrinkPolicy is consulted after a node is removed. length is the number
// of nodes left and capacity the current capacity. It returns the new
// capacity and whether to reallocate at all.
type ShrinkPolicy func(length, capacity int) (int, bool)

// HalfOccupancyShrink reallocates to exactly length as soon as length
// drops to capacity/2.
//
// The shrink is eager and leaves no spare room, so an insert right after
// crossing the boundary grows again. Rings that see insert/delete churn
// around a power of two may prefer NeverShrink or their own policy.
func HalfOccupancyShrink(length, capacity int) (int, bool) {
	return length, length == capacity/2
}

// NeverShrink keeps the backing storage at its high-water mark.
func NeverShrink(length, capacity int) (int, bool) {
	return capacity, false
}
