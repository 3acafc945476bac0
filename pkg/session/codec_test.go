package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCodec(t *testing.T) {
	t.Parallel()

	t.Run("round trip preserves every field", func(t *testing.T) {
		t.Parallel()
		created := time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)
		rec := &Record{
			Token:        "tok-abc123",
			UserID:       "u-42",
			Email:        "teacher@example.edu",
			Role:         RoleTeacher,
			SchoolID:     "school-7",
			CreatedAt:    created,
			LastActivity: created.Add(2 * time.Minute),
			ExpiresAt:    created.Add(30 * time.Minute),
			UserAgent:    "Mozilla/5.0",
			IPAddress:    "203.0.113.5",
		}

		data, err := encodeRecord(rec)
		require.NoError(t, err)

		got, err := decodeRecord(data)
		require.NoError(t, err)

		assert.Equal(t, rec.Token, got.Token)
		assert.Equal(t, rec.UserID, got.UserID)
		assert.Equal(t, rec.Email, got.Email)
		assert.Equal(t, rec.Role, got.Role)
		assert.Equal(t, rec.SchoolID, got.SchoolID)
		assert.Equal(t, rec.UserAgent, got.UserAgent)
		assert.Equal(t, rec.IPAddress, got.IPAddress)
		assert.True(t, got.CreatedAt.Equal(rec.CreatedAt))
		assert.True(t, got.LastActivity.Equal(rec.LastActivity))
		assert.True(t, got.ExpiresAt.Equal(rec.ExpiresAt))
	})

	t.Run("timestamps travel as epoch milliseconds", func(t *testing.T) {
		t.Parallel()
		created := time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)
		rec := &Record{
			Token:        "tok",
			UserID:       "u1",
			CreatedAt:    created,
			LastActivity: created,
			ExpiresAt:    created.Add(time.Minute),
		}

		data, err := encodeRecord(rec)
		require.NoError(t, err)

		var wire map[string]any
		require.NoError(t, json.Unmarshal(data, &wire))
		assert.EqualValues(t, created.UnixMilli(), wire["created_at"])
		assert.EqualValues(t, created.Add(time.Minute).UnixMilli(), wire["expires_at"])
	})

	t.Run("sub-millisecond precision is dropped, not corrupted", func(t *testing.T) {
		t.Parallel()
		created := time.Date(2026, 3, 15, 8, 30, 0, 123456789, time.UTC)
		rec := &Record{
			Token:        "tok",
			UserID:       "u1",
			CreatedAt:    created,
			LastActivity: created,
			ExpiresAt:    created,
		}

		data, err := encodeRecord(rec)
		require.NoError(t, err)
		got, err := decodeRecord(data)
		require.NoError(t, err)

		assert.Equal(t, created.Truncate(time.Millisecond).UnixMilli(), got.CreatedAt.UnixMilli())
	})

	t.Run("garbage payload", func(t *testing.T) {
		t.Parallel()
		_, err := decodeRecord([]byte("not json at all"))
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("valid json missing identity", func(t *testing.T) {
		t.Parallel()
		_, err := decodeRecord([]byte(`{"email":"x@example.edu"}`))
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})
}

func TestRecordHelpers(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	rec := &Record{
		Token:        "abcdefghij",
		LastActivity: now.Add(-10 * time.Minute),
		ExpiresAt:    now.Add(5 * time.Minute),
	}

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		t.Parallel()
		assert.False(t, rec.IsExpired(now))
		assert.True(t, rec.IsExpired(rec.ExpiresAt))
		assert.True(t, rec.IsExpired(rec.ExpiresAt.Add(time.Second)))
	})

	t.Run("remaining ttl never negative", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 5*time.Minute, rec.RemainingTTL(now))
		assert.Equal(t, time.Duration(0), rec.RemainingTTL(now.Add(time.Hour)))
	})

	t.Run("inactivity gap", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 10*time.Minute, rec.InactiveFor(now))
	})

	t.Run("token prefix redaction", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "abcdefgh", tokenPrefix("abcdefghij"))
		assert.Equal(t, "short", tokenPrefix("short"))
	})
}
