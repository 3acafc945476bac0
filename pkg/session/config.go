package session

import "time"

// Config holds session lifecycle settings.
type Config struct {
	// Duration is the absolute session lifetime; ExpiresAt is reset to
	// now+Duration on every refresh.
	Duration time.Duration `env:"SESSION_DURATION" envDefault:"30m"`

	// InactivityTimeout is the maximum gap between successive touches of a
	// session, enforced independently of Duration.
	InactivityTimeout time.Duration `env:"SESSION_INACTIVITY_TIMEOUT" envDefault:"15m"`

	// RefreshThreshold marks a validated session for refresh once its
	// remaining lifetime drops below this value.
	RefreshThreshold time.Duration `env:"SESSION_REFRESH_THRESHOLD" envDefault:"5m"`

	// MaxSessionsPerUser bounds concurrently live sessions per account;
	// the oldest session is evicted to make room for a new one.
	MaxSessionsPerUser int `env:"SESSION_MAX_PER_USER" envDefault:"3"`

	// CookieName is the session cookie checked after the token headers.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session_token"`

	// HeaderName is the dedicated session-token header checked after
	// Authorization.
	HeaderName string `env:"SESSION_HEADER_NAME" envDefault:"X-Session-Token"`

	// LoginURL is where guarded routes redirect unauthenticated browsers
	// when redirect mode is enabled.
	LoginURL string `env:"SESSION_LOGIN_URL" envDefault:"/login"`

	// CleanupInterval drives the in-process store's sweep of entries the
	// TTL map retains past logical expiry (0 disables; lazy eviction on
	// read keeps reads correct either way).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		Duration:           30 * time.Minute,
		InactivityTimeout:  15 * time.Minute,
		RefreshThreshold:   5 * time.Minute,
		MaxSessionsPerUser: 3,
		CookieName:         "session_token",
		HeaderName:         "X-Session-Token",
		LoginURL:           "/login",
		CleanupInterval:    5 * time.Minute,
	}
}
