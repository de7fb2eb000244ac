// Package historical implements the permanent cache for concluded periods.
// Records are written once, partitioned by data type (and season where that
// bounds directory fan-out usefully), and served without any expiry check.
// Whether a period has actually concluded is decided by asking the
// freshness oracle; when the oracle cannot say, data is treated as live and
// never cached here.
package historical

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/fantasycache/internal/cache"
	"github.com/rshade/fantasycache/internal/freshness"
	"github.com/rshade/fantasycache/internal/persist"
)

// rootPrefix is the backend key prefix for all historical records.
const rootPrefix = "historical"

// Store is the historical cache. It talks to the backend directly, with no
// memory tier and no TTL, and consults the oracle before persisting
// anything permanently.
type Store struct {
	backend persist.Backend
	oracle  *freshness.Oracle
	logger  zerolog.Logger
}

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger sets the store's logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a historical store over the given backend and oracle, and
// provisions the partition skeleton when the backend has one. A nil oracle
// is allowed for maintenance-only use; every period then counts as live and
// nothing new is persisted.
func New(backend persist.Backend, oracle *freshness.Oracle, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		oracle:  oracle,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.provisionSkeleton()
	return s
}

// IsHistorical reports whether the given period has concluded. A week of
// zero means "unspecified": then only a strictly earlier season counts as
// historical. When the oracle has no current state this returns false:
// re-fetching live data costs a request, while caching live data permanently
// costs correctness.
func (s *Store) IsHistorical(ctx context.Context, season string, week int) bool {
	if s.oracle == nil {
		return false
	}
	current, ok := s.oracle.CurrentState(ctx)
	if !ok {
		return false
	}

	cmp := compareSeasons(season, current.Season)
	switch {
	case cmp < 0:
		return true
	case cmp > 0:
		return false
	}

	return week > 0 && week < current.Week
}

// GetOrSet returns the historical record for key if one exists; the read is
// driven by the key alone, with season and week only guiding which
// partition to check first. On a miss it invokes loader, persists the
// result permanently when the supplied period has concluded, and returns
// it. A result for a period the oracle considers live (or cannot judge) is
// returned without being persisted, since that data belongs in the expiring
// cache, not here.
func (s *Store) GetOrSet(ctx context.Context, key string, loader cache.Loader, dataType, season string, week int) (json.RawMessage, error) {
	if entry, ok := s.find(ctx, key, dataType, season); ok {
		return entry.Value, nil
	}

	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	if season != "" && !s.IsHistorical(ctx, season, week) {
		s.logger.Debug().
			Str("key", key).
			Str("season", season).
			Int("week", week).
			Msg("period still live; not caching historically")
		return value, nil
	}

	s.put(ctx, key, value, dataType, season, week)
	return value, nil
}

// Get returns the historical record for key, classifying the key to decide
// which partition to look in. Classification is best-effort; a key whose
// shape encodes nothing recognizable is looked up in the misc bucket.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	c := Classify(key)
	entry, ok := s.find(ctx, key, c.DataType, c.Season)
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// Clear wipes the entire historical subtree and recreates the partition
// skeleton so subsequent writes need no manual directory creation. Partial,
// pattern-scoped clearing is not implemented; every caller gets the full
// wipe.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.backend.Purge(ctx, rootPrefix); err != nil {
		return err
	}
	s.provisionSkeleton()
	return nil
}

// Len returns the number of historical records.
func (s *Store) Len(ctx context.Context) (int, error) {
	keys, err := s.backend.Keys(ctx, rootPrefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// find looks the key up at its expected path, then falls back to scanning
// the data type's partition for the key under a different (or absent)
// season segment. The key alone identifies the record.
func (s *Store) find(ctx context.Context, key, dataType, season string) (*Entry, bool) {
	if entry, ok := s.read(ctx, recordKey(key, dataType, season)); ok {
		return entry, true
	}

	prefix := rootPrefix + "/" + bucket(dataType)
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("historical scan failed; treating as miss")
		return nil, false
	}
	for _, candidate := range keys {
		if strings.HasSuffix(candidate, "/"+key) {
			if entry, ok := s.read(ctx, candidate); ok {
				return entry, true
			}
		}
	}
	return nil, false
}

// read loads and parses one record. Corrupt records are deleted so they
// cannot fail the same way twice.
func (s *Store) read(ctx context.Context, recordKey string) (*Entry, bool) {
	data, err := s.backend.Get(ctx, recordKey)
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			s.logger.Warn().Err(err).Str("record", recordKey).Msg("historical read failed; treating as miss")
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn().Err(err).Str("record", recordKey).Msg("corrupt historical record; deleting")
		if delErr := s.backend.Delete(ctx, recordKey); delErr != nil {
			s.logger.Warn().Err(delErr).Str("record", recordKey).Msg("historical delete failed")
		}
		return nil, false
	}

	return &entry, true
}

// put persists a permanent record. Write failures are logged and swallowed:
// the caller still gets its value, and the next miss re-fetches.
func (s *Store) put(ctx context.Context, key string, value json.RawMessage, dataType, season string, week int) {
	entry := &Entry{
		Value:    value,
		CachedAt: time.Now(),
		DataType: bucket(dataType),
		Season:   season,
		Week:     week,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("historical entry not serializable; not cached")
		return
	}

	if err := s.backend.Put(ctx, recordKey(key, dataType, season), data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("historical write failed; not cached")
	}
}

// provisionSkeleton creates the expected partition directories on backends
// that have them.
func (s *Store) provisionSkeleton() {
	dp, ok := s.backend.(persist.DirProvisioner)
	if !ok {
		return
	}
	for _, dir := range skeletonDirs() {
		if err := dp.EnsureDir(dir); err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("could not provision partition directory")
		}
	}
}

// skeletonDirs lists the directories provisioned at construction and after
// a wipe. The top-level current/ directory is reserved for in-progress
// period data; nothing writes there yet, but the layout guarantees it
// exists.
func skeletonDirs() []string {
	return []string{
		"current",
		rootPrefix + "/" + DataTypeLeagues,
		rootPrefix + "/" + DataTypeDrafts,
		rootPrefix + "/" + DataTypeMatchups,
		rootPrefix + "/" + DataTypeTransactions,
		rootPrefix + "/" + DataTypeRosters,
		rootPrefix + "/" + DataTypeMisc,
	}
}

// recordKey builds the backend key for a record: season-partitioned types
// get a season segment when one is known, drafts are flat, and anything
// unrecognized lands in misc.
func recordKey(key, dataType, season string) string {
	dataType = bucket(dataType)
	if seasonPartitioned(dataType) && season != "" {
		return rootPrefix + "/" + dataType + "/" + season + "/" + key
	}
	return rootPrefix + "/" + dataType + "/" + key
}

// bucket maps an arbitrary data type string onto a known partition.
func bucket(dataType string) string {
	if knownDataType(dataType) {
		return dataType
	}
	return DataTypeMisc
}

// compareSeasons orders two season strings, numerically when both parse as
// years and lexically otherwise.
func compareSeasons(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
