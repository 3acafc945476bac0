package session

import "errors"

var (
	// ErrSessionNotFound indicates no record exists for the presented token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session passed its absolute lifetime.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInactive indicates the sliding inactivity window elapsed.
	ErrSessionInactive = errors.New("session inactive for too long")

	// ErrStoreUnavailable indicates the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrMalformedRecord indicates a stored value failed to deserialize.
	ErrMalformedRecord = errors.New("malformed session record")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session token generation failed")

	// ErrKeyNotFound is the store-level absence signal.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidPrincipal indicates Create was called without a user ID.
	ErrInvalidPrincipal = errors.New("principal must carry a user id")
)
