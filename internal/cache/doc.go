// Package cache implements the general-purpose expiring cache: a bounded,
// LRU-evicted memory tier backed by a persistence backend, with TTL
// expiration and a periodic sweep of both tiers.
//
// Reads check memory first, then disk; a valid disk record is promoted back
// into memory with its remaining TTL, which is what makes cached data
// survive a process restart. Writes go to both tiers, but a failed disk
// write only costs durability, never the in-memory value. Callers supply a
// loader for compute-if-absent reads; loader errors surface unchanged.
package cache
