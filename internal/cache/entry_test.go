package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry(t *testing.T) {
	value := json.RawMessage(`{"points":131.5}`)
	entry := NewEntry(value, time.Minute)

	assert.Equal(t, value, entry.Value)
	assert.False(t, entry.IsExpired())
	assert.Greater(t, entry.TimeUntilExpiration(), time.Duration(0))

	t.Run("Expiration", func(t *testing.T) {
		entry := NewEntry(value, time.Minute)
		entry.ExpiresAt = time.Now().Add(-time.Second)
		assert.True(t, entry.IsExpired())
		assert.Equal(t, time.Duration(0), entry.TimeUntilExpiration())
	})

	t.Run("JSON", func(t *testing.T) {
		entry := NewEntry(value, time.Minute)
		encoded, err := json.Marshal(entry)
		require.NoError(t, err)

		// The record schema the disk tier depends on.
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(encoded, &raw))
		assert.Contains(t, raw, "value")
		assert.Contains(t, raw, "cachedAt")
		assert.Contains(t, raw, "expiresAt")

		var decoded Entry
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, entry.Value, decoded.Value)
		assert.Equal(t, entry.CachedAt.Format(time.RFC3339), decoded.CachedAt.Format(time.RFC3339))
		assert.Equal(t, entry.ExpiresAt.Format(time.RFC3339), decoded.ExpiresAt.Format(time.RFC3339))
	})

	t.Run("RejectsMalformedTimestamps", func(t *testing.T) {
		var decoded Entry
		err := json.Unmarshal([]byte(`{"value":1,"cachedAt":"not a time","expiresAt":"also not"}`), &decoded)
		assert.Error(t, err)
	})
}
