package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is a single cached value with its TTL metadata. It lives in the
// memory tier and is mirrored verbatim to disk, so its JSON form is the
// on-disk record schema.
type Entry struct {
	// Value is the cached payload, kept opaque as raw JSON.
	Value json.RawMessage `json:"value"`

	// CachedAt is when the entry was written.
	CachedAt time.Time `json:"cachedAt"`

	// ExpiresAt is when the entry stops being served.
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewEntry creates an entry expiring ttl from now.
func NewEntry(value json.RawMessage, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Value:     value,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the entry is past its expiry.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// TimeUntilExpiration returns the remaining TTL, or 0 if already expired.
func (e *Entry) TimeUntilExpiration() time.Duration {
	remaining := time.Until(e.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarshalJSON formats timestamps as RFC3339 for readability in cache files.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	return json.Marshal(&struct {
		*Alias

		CachedAt  string `json:"cachedAt"`
		ExpiresAt string `json:"expiresAt"`
	}{
		Alias:     (*Alias)(e),
		CachedAt:  e.CachedAt.Format(time.RFC3339),
		ExpiresAt: e.ExpiresAt.Format(time.RFC3339),
	})
}

// UnmarshalJSON parses RFC3339 timestamps from cache files.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type Alias Entry
	aux := &struct {
		*Alias

		CachedAt  string `json:"cachedAt"`
		ExpiresAt string `json:"expiresAt"`
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	e.CachedAt, err = time.Parse(time.RFC3339, aux.CachedAt)
	if err != nil {
		return err
	}

	e.ExpiresAt, err = time.Parse(time.RFC3339, aux.ExpiresAt)
	if err != nil {
		return err
	}

	return nil
}
