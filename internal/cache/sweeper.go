package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// SweepResult summarizes one sweep pass over both tiers.
type SweepResult struct {
	// MemoryRemoved is the number of expired entries dropped from memory.
	MemoryRemoved int

	// DiskScanned is the number of disk records examined.
	DiskScanned int

	// DiskRemoved is the number of disk records deleted, whether expired
	// or unparseable.
	DiskRemoved int
}

// Stats describes the current size of both tiers.
type Stats struct {
	// MemoryEntries counts entries in the memory tier.
	MemoryEntries int

	// DiskEntries counts ephemeral records on disk.
	DiskEntries int
}

// Sweep runs one pass: expired entries are dropped from memory, then every
// ephemeral disk record is examined and deleted if expired or unparseable.
// A failure on one record is logged and skipped, never aborting the rest of
// the scan. Each pass carries a ULID so its log lines correlate.
func (s *Store) Sweep(ctx context.Context) SweepResult {
	sweepID := ulid.Make().String()
	logger := s.logger.With().Str("sweep_id", sweepID).Logger()

	var result SweepResult

	s.mu.Lock()
	for key, me := range s.entries {
		if me.entry.IsExpired() {
			delete(s.entries, key)
			result.MemoryRemoved++
		}
	}
	s.mu.Unlock()

	keys, err := s.backend.Keys(ctx, "")
	if err != nil {
		logger.Warn().Err(err).Msg("sweep could not list disk records")
		return result
	}

	for _, key := range keys {
		if !isEphemeralKey(key) {
			continue
		}
		result.DiskScanned++

		data, err := s.backend.Get(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("sweep skipping unreadable record")
			continue
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err == nil && !entry.IsExpired() {
			continue
		}

		if err := s.backend.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("sweep could not delete record")
			continue
		}
		result.DiskRemoved++
	}

	if result.MemoryRemoved > 0 || result.DiskRemoved > 0 {
		logger.Debug().
			Int("memory_removed", result.MemoryRemoved).
			Int("disk_scanned", result.DiskScanned).
			Int("disk_removed", result.DiskRemoved).
			Msg("sweep complete")
	}

	return result
}

// Stats reports entry counts for both tiers.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	keys, err := s.backend.Keys(ctx, "")
	if err != nil {
		return Stats{}, err
	}

	disk := 0
	for _, key := range keys {
		if isEphemeralKey(key) {
			disk++
		}
	}

	return Stats{
		MemoryEntries: s.Len(),
		DiskEntries:   disk,
	}, nil
}

// sweepLoop runs Sweep on the configured interval until Close.
func (s *Store) sweepLoop() {
	defer s.sweepDone.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.done:
			return
		}
	}
}
