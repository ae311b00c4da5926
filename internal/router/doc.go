// Package router maps string keys to physical nodes on top of the ring.
//
// Keys are hashed with xxhash. Each node is placed as several synthetic
// hashes ("<id>-vnode-<i>") to even out the share of the ring it owns; the
// ring itself knows nothing about this and the router keeps the mapping
// from synthetic hash back to node.
package router
