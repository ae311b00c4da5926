// Package ring implements a consistent hashing ring over caller-supplied
// hash values.
//
// Nodes and items are both placed on a circle of a fixed size by taking
// their hash modulo that size. An item belongs to the first node found
// walking clockwise from the item's position, wrapping around to the node
// with the smallest position when no node sits at or after it.
//
// The ring does not hash anything itself and does not manage virtual
// nodes. A caller wanting a smoother distribution inserts several synthetic
// hashes per physical node and keeps track of that mapping on its side.
//
// Equality on the ring is by position, not by hash. With a ring size
// smaller than the hash space, two different hashes may land on the same
// position; the second one is rejected with ErrNodePresent.
//
// A Ring is not safe for concurrent use. Wrap it in a Synced when it is
// shared between goroutines.
package ring
