package persist

import (
	"context"
	"strings"
	"sync"
)

// MemoryBackend is a map-backed Backend used in tests and anywhere durable
// storage is not wanted. Keys behave exactly like file-backend keys, minus
// the filesystem.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

// Get returns the record bytes for key, or ErrNotFound.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.records[sanitizeKey(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put stores a copy of the record bytes for key.
func (b *MemoryBackend) Put(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	b.records[sanitizeKey(key)] = stored
	return nil
}

// Delete removes the record for key, if present.
func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.records, sanitizeKey(key))
	return nil
}

// Keys lists all record keys under prefix.
func (b *MemoryBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	prefix = sanitizeKey(prefix)
	var keys []string
	for key := range b.records {
		if matchesPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Purge removes every record under prefix.
func (b *MemoryBackend) Purge(_ context.Context, prefix string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefix = sanitizeKey(prefix)
	removed := 0
	for key := range b.records {
		if matchesPrefix(key, prefix) {
			delete(b.records, key)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory backend.
func (b *MemoryBackend) Close() error {
	return nil
}

// Len returns the number of stored records.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

func matchesPrefix(key, prefix string) bool {
	if prefix == "" {
		return true
	}
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}
