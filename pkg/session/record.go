package session

import "time"

// Role is the authorization level a session grants.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleDev     Role = "dev"
)

// Principal is the already-authenticated identity a session is issued for.
// Credential verification happens upstream; this package trusts its input.
type Principal struct {
	UserID   string
	Email    string
	Role     Role
	SchoolID string
}

// Record is a single live session as persisted in the store.
type Record struct {
	Token        string
	UserID       string
	Email        string
	Role         Role
	SchoolID     string
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
	UserAgent    string
	IPAddress    string
}

// IsExpired reports whether the absolute lifetime has passed at the given
// instant. A record is valid only strictly before ExpiresAt.
func (r *Record) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// InactiveFor returns the gap since the session was last touched.
func (r *Record) InactiveFor(now time.Time) time.Duration {
	return now.Sub(r.LastActivity)
}

// RemainingTTL returns the time left before absolute expiry, never negative.
func (r *Record) RemainingTTL(now time.Time) time.Duration {
	if r.IsExpired(now) {
		return 0
	}
	return r.ExpiresAt.Sub(now)
}

// tokenPrefixLen bounds how much of a token audit events and logs may carry.
const tokenPrefixLen = 8

func tokenPrefix(token string) string {
	if len(token) > tokenPrefixLen {
		return token[:tokenPrefixLen]
	}
	return token
}
