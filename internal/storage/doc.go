// Package storage provides the per-node key-value storage interface and an
// in-memory implementation with optional TTL expiry. Entries can be taken
// out of one store and restored into another when keys change owner.
package storage
