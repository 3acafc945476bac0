package session

import (
	"context"
	"time"
)

// Store abstracts the TTL-governed key-value store sessions live in.
// Each primitive is atomic in isolation; multi-step Manager workflows are
// sequences of independent calls and may interleave under concurrency.
//
// Implementations signal absence with ErrKeyNotFound and infrastructure
// failure with ErrStoreUnavailable; callers must treat the latter as a
// first-class, recoverable condition.
type Store interface {
	// Put writes value under key with the given TTL, replacing any
	// existing value and its remaining TTL.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get reads the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key, reporting whether it was present.
	Delete(ctx context.Context, key string) (bool, error)

	// AddToSet adds member to the ordered set at setKey. Adding an
	// existing member does not change its position.
	AddToSet(ctx context.Context, setKey, member string) error

	// RemoveFromSet removes member from the set at setKey.
	RemoveFromSet(ctx context.Context, setKey, member string) error

	// Members returns the set's members oldest-first. A missing set
	// yields an empty slice, not an error.
	Members(ctx context.Context, setKey string) ([]string, error)

	// SetExpiry sets or refreshes the TTL of the set at setKey.
	SetExpiry(ctx context.Context, setKey string, ttl time.Duration) error
}

const (
	recordKeyPrefix = "session:"
	indexKeyPrefix  = "user_sessions:"
)

func recordKey(token string) string { return recordKeyPrefix + token }

func indexKey(userID string) string { return indexKeyPrefix + userID }
