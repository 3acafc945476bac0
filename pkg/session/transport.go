package session

import (
	"net/http"
	"strings"
)

// TokenSource extracts a session token from a request. This subsystem only
// reads tokens; writing them to responses is the login handler's job.
type TokenSource interface {
	Token(r *http.Request) (string, bool)
}

// BearerSource reads `Authorization: Bearer <token>`.
type BearerSource struct{}

func (BearerSource) Token(r *http.Request) (string, bool) {
	value := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(value, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(value, prefix))
	return token, token != ""
}

// HeaderSource reads the token from a dedicated header.
type HeaderSource struct {
	Name string
}

func (s HeaderSource) Token(r *http.Request) (string, bool) {
	token := r.Header.Get(s.Name)
	return token, token != ""
}

// CookieSource reads the token from a cookie.
type CookieSource struct {
	Name string
}

func (s CookieSource) Token(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// MultiSource tries each source in order and returns the first token found.
type MultiSource []TokenSource

func (s MultiSource) Token(r *http.Request) (string, bool) {
	for _, source := range s {
		if token, ok := source.Token(r); ok {
			return token, true
		}
	}
	return "", false
}

// DefaultSources is the documented extraction priority: Authorization
// bearer header, then the dedicated session header, then the cookie.
func DefaultSources(cfg Config) TokenSource {
	return MultiSource{
		BearerSource{},
		HeaderSource{Name: cfg.HeaderName},
		CookieSource{Name: cfg.CookieName},
	}
}
