package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rshade/fantasycache/internal/persist"
)

// Defaults for store construction. All are overridable via options.
const (
	// DefaultCapacity is the memory tier's entry cap.
	DefaultCapacity = 500

	// DefaultSweepInterval is how often the background sweep runs.
	DefaultSweepInterval = 5 * time.Minute

	// DefaultTTL is the TTL applied when callers pass a non-positive one.
	DefaultTTL = time.Hour
)

// Loader produces a value on a cache miss. Loaders are caller-supplied and
// may perform network I/O; errors they return surface unchanged from
// GetOrSet.
type Loader func(ctx context.Context) (json.RawMessage, error)

// memEntry is an Entry plus the access-time bookkeeping the LRU needs.
type memEntry struct {
	entry        *Entry
	lastAccessed time.Time
}

// Store is the general-purpose expiring cache. The memory tier is a bounded
// map with LRU eviction; the disk tier is a persist.Backend holding one
// record per key at the top level of the cache root.
type Store struct {
	backend       persist.Backend
	logger        zerolog.Logger
	capacity      int
	sweepInterval time.Duration
	loaderTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*memEntry

	// flight collapses concurrent cold-key GetOrSet calls onto a single
	// loader invocation.
	flight singleflight.Group

	done      chan struct{}
	closeOnce sync.Once
	sweepDone sync.WaitGroup
}

// Option configures a Store at construction.
type Option func(*Store)

// WithCapacity bounds the memory tier to n entries. Values below 1 keep the
// default.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithSweepInterval sets the background sweep cadence. A non-positive
// interval disables the background sweep; Sweep can still be called
// directly.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		s.sweepInterval = d
	}
}

// WithLoaderTimeout bounds each loader invocation made by GetOrSet. Zero
// means no deadline.
func WithLoaderTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.loaderTimeout = d
	}
}

// WithLogger sets the store's logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over the given backend and starts its background
// sweep. The caller owns the backend's lifecycle; Close stops the sweep but
// leaves the backend open.
func New(backend persist.Backend, opts ...Option) *Store {
	s := &Store{
		backend:       backend,
		logger:        zerolog.Nop(),
		capacity:      DefaultCapacity,
		sweepInterval: DefaultSweepInterval,
		entries:       make(map[string]*memEntry),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.sweepInterval > 0 {
		s.sweepDone.Add(1)
		go s.sweepLoop()
	}

	return s
}

// Get returns the cached value for key, consulting memory then disk. A
// valid disk record is promoted back into memory keeping its original
// expiry, so the entry's remaining TTL is unchanged by the promotion.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	key = flattenKey(key)

	s.mu.Lock()
	if me, ok := s.entries[key]; ok {
		if !me.entry.IsExpired() {
			me.lastAccessed = time.Now()
			value := me.entry.Value
			s.mu.Unlock()
			return value, true
		}
		delete(s.entries, key)
	}
	s.mu.Unlock()

	entry, ok := s.readDisk(ctx, key)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	s.insertLocked(key, entry)
	s.mu.Unlock()
	return entry.Value, true
}

// Set writes the value to both tiers with the given TTL. A disk write
// failure is logged and swallowed: the memory entry stays valid for its
// TTL, and only durability across a restart is lost.
func (s *Store) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) {
	key = flattenKey(key)
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	entry := NewEntry(value, ttl)

	s.mu.Lock()
	s.insertLocked(key, entry)
	s.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry not serializable; entry is memory-only")
		return
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed; entry is memory-only")
	}
}

// GetOrSet returns the cached value for key, or invokes loader, caches the
// result with the given TTL, and returns it. Concurrent callers for the
// same cold key share a single loader invocation. Loader errors (including
// a loader-timeout deadline) propagate unchanged and nothing is cached.
func (s *Store) GetOrSet(ctx context.Context, key string, loader Loader, ttl time.Duration) (json.RawMessage, error) {
	key = flattenKey(key)
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	result, err, _ := s.flight.Do(key, func() (any, error) {
		// A concurrent caller may have populated the key while this one
		// waited its turn.
		if value, ok := s.Get(ctx, key); ok {
			return value, nil
		}

		loadCtx := ctx
		if s.loaderTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(ctx, s.loaderTimeout)
			defer cancel()
		}

		value, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}

		s.Set(ctx, key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, err
	}

	value, ok := result.(json.RawMessage)
	if !ok {
		return nil, errors.New("unexpected loader result type")
	}
	return value, nil
}

// Clear empties the memory tier. Disk records are untouched: disk is the
// durable source of truth across restarts, memory is a hot working set.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*memEntry)
}

// Len returns the number of entries currently in the memory tier,
// including any that have expired but not yet been swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the background sweep. It does not close the backend.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.sweepDone.Wait()
	return nil
}

// readDisk loads and validates the disk record for key. Corrupt or expired
// records are deleted so they cannot fail the same way twice.
func (s *Store) readDisk(ctx context.Context, key string) (*Entry, bool) {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed; treating as miss")
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache record; deleting")
		s.deleteDisk(ctx, key)
		return nil, false
	}

	if entry.IsExpired() {
		s.deleteDisk(ctx, key)
		return nil, false
	}

	return &entry, true
}

func (s *Store) deleteDisk(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// insertLocked puts an entry into the memory tier, evicting the
// least-recently-used entry first when the tier is at capacity. Eviction
// never touches the corresponding disk record. Callers must hold s.mu.
func (s *Store) insertLocked(key string, entry *Entry) {
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		s.evictLocked()
	}
	s.entries[key] = &memEntry{entry: entry, lastAccessed: time.Now()}
}

// evictLocked removes exactly one entry: the one with the oldest
// lastAccessed. A linear scan is fine at the capacities this cache runs
// with; swapping in an O(1) LRU would not change observable behavior.
func (s *Store) evictLocked() {
	var victim string
	var oldest time.Time
	for key, me := range s.entries {
		if victim == "" || me.lastAccessed.Before(oldest) {
			victim = key
			oldest = me.lastAccessed
		}
	}
	if victim != "" {
		delete(s.entries, victim)
		s.logger.Debug().Str("key", victim).Msg("evicted least-recently-used entry")
	}
}

// isEphemeralKey reports whether a backend key belongs to this store's flat
// disk tier. Partitioned keys (historical records, the provisioned current/
// directory) contain a slash and are never swept here.
func isEphemeralKey(key string) bool {
	return !strings.Contains(key, "/")
}

// flattenKey maps a caller-supplied key onto the flat disk tier. Keys are
// opaque strings, but the backend treats a slash as its partition
// separator; folding it keeps every ephemeral record out of partitions
// owned by other stores and inside the sweeper's scan.
func flattenKey(key string) string {
	return strings.ReplaceAll(key, "/", "_")
}
