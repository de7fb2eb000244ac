package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// recordExtension is the file extension used for persisted records.
const recordExtension = ".json"

// FileBackend stores one JSON file per record under a root directory.
// Thread-safe for concurrent access.
type FileBackend struct {
	root string

	// mu serializes file operations so a rename never races a read of the
	// same key.
	mu sync.RWMutex
}

// NewFileBackend creates a file-backed store rooted at root, creating the
// directory if it does not exist. Failure here is fatal to the subsystem:
// a cache without durable storage cannot honor its contract, so callers
// should abort initialization on error.
func NewFileBackend(root string) (*FileBackend, error) {
	if root == "" {
		return nil, errors.New("backend root cannot be empty")
	}

	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}

	return &FileBackend{root: root}, nil
}

// Root returns the backend's root directory.
func (b *FileBackend) Root() string {
	return b.root
}

// Get reads the record bytes for key. A missing file maps to ErrNotFound.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return data, nil
}

// Put writes the record bytes for key via a temporary file and rename so a
// crash mid-write leaves either the old record or no record, never a torn
// one readers would have to distrust silently.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.keyToPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename record: %w", err)
	}

	return nil
}

// Delete removes the record for key. Missing files are ignored.
func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.keyToPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Keys walks the tree under prefix and returns the key of every record
// found. Unreadable directories abort the walk; individual non-record files
// (including in-flight .tmp files) are skipped.
func (b *FileBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	dir := b.root
	if prefix != "" {
		dir = filepath.Join(b.root, filepath.FromSlash(sanitizeKey(prefix)))
	}

	var keys []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return filepath.SkipAll
			}
			return walkErr
		}
		if d.IsDir() || filepath.Ext(path) != recordExtension {
			return nil
		}

		rel, relErr := filepath.Rel(b.root, path)
		if relErr != nil {
			return relErr
		}
		keys = append(keys, strings.TrimSuffix(filepath.ToSlash(rel), recordExtension))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return keys, nil
}

// Purge removes every record under prefix. With a non-empty prefix the
// partition subtree is removed wholesale; with an empty prefix the root
// itself is preserved and its contents deleted.
func (b *FileBackend) Purge(ctx context.Context, prefix string) (int, error) {
	keys, err := b.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if prefix != "" {
		dir := filepath.Join(b.root, filepath.FromSlash(sanitizeKey(prefix)))
		if err := os.RemoveAll(dir); err != nil {
			return 0, fmt.Errorf("failed to purge records: %w", err)
		}
		return len(keys), nil
	}

	entries, err := os.ReadDir(b.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache root: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(b.root, entry.Name())); err != nil {
			return 0, fmt.Errorf("failed to purge records: %w", err)
		}
	}
	return len(keys), nil
}

// Close is a no-op for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// EnsureDir creates the partition directory at the given relative path.
func (b *FileBackend) EnsureDir(path string) error {
	dir := filepath.Join(b.root, filepath.FromSlash(sanitizeKey(path)))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create partition directory: %w", err)
	}
	return nil
}

// keyToPath converts a record key to an absolute file path under the root.
func (b *FileBackend) keyToPath(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(sanitizeKey(key))) + recordExtension
}

// sanitizeKey rewrites each key segment so it is safe as a file name. The
// slash is the partition separator and is preserved; everything else that
// could escape the root or confuse a filesystem is flattened to underscores.
func sanitizeKey(key string) string {
	if key == "" {
		return ""
	}
	segments := strings.Split(key, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			seg = "_"
		}
		seg = strings.ReplaceAll(seg, `\`, "_")
		seg = strings.ReplaceAll(seg, ":", "_")
		out = append(out, seg)
	}
	return strings.Join(out, "/")
}
