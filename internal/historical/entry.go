package historical

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is a permanently cached record for a concluded period. There is no
// expiry field: once the real-world period a record describes has ended,
// the data cannot change, so the record is served unconditionally until an
// explicit wipe.
type Entry struct {
	// Value is the cached payload, kept opaque as raw JSON.
	Value json.RawMessage `json:"value"`

	// CachedAt is when the record was written.
	CachedAt time.Time `json:"cachedAt"`

	// DataType is the record's partition category (matchups, drafts, ...).
	DataType string `json:"dataType"`

	// Season is the season the record belongs to, when known.
	Season string `json:"season,omitempty"`

	// Week is the week within the season, when known. Zero means
	// unspecified.
	Week int `json:"week,omitempty"`
}

// MarshalJSON formats the timestamp as RFC3339 for readability in cache
// files.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	return json.Marshal(&struct {
		*Alias

		CachedAt string `json:"cachedAt"`
	}{
		Alias:    (*Alias)(e),
		CachedAt: e.CachedAt.Format(time.RFC3339),
	})
}

// UnmarshalJSON parses the RFC3339 timestamp from cache files.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type Alias Entry
	aux := &struct {
		*Alias

		CachedAt string `json:"cachedAt"`
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	e.CachedAt, err = time.Parse(time.RFC3339, aux.CachedAt)
	return err
}
