// Package cache implements an in-memory cache sharded across nodes by the
// router. When membership changes only the keys whose owner changed are
// moved between node stores.
package cache
