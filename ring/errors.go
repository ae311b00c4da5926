package ring

import "errors"

var (
	// ErrNilRing is returned when an operation is called on a nil *Ring.
	ErrNilRing = errors.New("ring: nil ring")

	// ErrAllocation is returned when backing storage could not be allocated.
	// The ring is left exactly as it was before the failing call.
	ErrAllocation = errors.New("ring: allocation failed")

	// ErrNodePresent is returned by Insert when a node already occupies the
	// position of the new hash.
	ErrNodePresent = errors.New("ring: node already present")

	// ErrEmptyRing is returned by lookups on a ring with no nodes.
	ErrEmptyRing = errors.New("ring: no nodes")

	// ErrInvalidConfiguration is returned by New for a zero ring size or a
	// bad option.
	ErrInvalidConfiguration = errors.New("ring: invalid configuration")

	// ErrDestroyed is returned by operations on a ring after Destroy.
	ErrDestroyed = errors.New("ring: destroyed")
)
