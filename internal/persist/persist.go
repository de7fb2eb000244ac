// Package persist defines the storage backend interface for cache records
// and provides file-backed and in-memory implementations.
//
// A backend stores opaque byte records under slash-separated keys
// ("historical/matchups/2023/league_42"). It knows nothing about TTLs,
// entry schemas, or historicity; those concerns live in the cache layers
// above so they can be tested against the in-memory backend without I/O.
package persist

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("record not found")

// Backend is the narrow persistence contract the cache stores depend on.
// Keys are slash-separated relative paths; the final segment names the
// record and any leading segments name partitions.
type Backend interface {
	// Get returns the raw record bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the record bytes for key, overwriting any existing record
	// and creating intermediate partitions as needed.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the record for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Keys lists all record keys under prefix. An empty prefix lists every
	// record. Partition directories themselves are not returned.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Purge removes every record under prefix, including the partition
	// structure beneath it, and reports how many records were removed.
	Purge(ctx context.Context, prefix string) (int, error)

	// Close releases any resources held by the backend.
	Close() error
}

// DirProvisioner is implemented by backends with a physical partition
// layout that can be created ahead of any writes. Callers that want a
// directory skeleton (the historical store after a wipe, startup
// provisioning) type-assert for it; backends without physical partitions
// simply don't implement it.
type DirProvisioner interface {
	// EnsureDir creates the partition at the slash-separated relative path,
	// along with any missing parents.
	EnsureDir(path string) error
}
