package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalTime_UnmarshalJSON(t *testing.T) {
	type payload struct {
		ExpiresAt OptionalTime `json:"expiresAt"`
	}

	t.Run("absent key leaves Set false", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.ExpiresAt.Set)
		assert.Nil(t, p.ExpiresAt.Value)
	})

	t.Run("null clears the value", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"expiresAt":null}`), &p))
		assert.True(t, p.ExpiresAt.Set)
		assert.Nil(t, p.ExpiresAt.Value)
	})

	t.Run("timestamp is parsed", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"expiresAt":"2026-09-01T10:00:00Z"}`), &p))
		assert.True(t, p.ExpiresAt.Set)
		require.NotNil(t, p.ExpiresAt.Value)
		assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), p.ExpiresAt.Value.UTC())
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"expiresAt":"tomorrow"}`), &p))
	})
}

func TestOptionalTime_MarshalJSON(t *testing.T) {
	ts := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	data, err := json.Marshal(OptionalTime{Set: true, Value: &ts})
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-09-01T10:00:00Z"`, string(data))

	data, err = json.Marshal(OptionalTime{Set: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
