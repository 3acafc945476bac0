package session

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/schoolpass/sessionkit/pkg/logger"
)

type guardConfig struct {
	requireAuth     bool
	allowedRoles    []Role
	redirectToLogin bool
	loginURL        string
	sources         TokenSource
}

// GuardOption configures the Guard middleware.
type GuardOption func(*guardConfig)

// WithOptionalAuth lets unauthenticated requests through to the handler
// without a session in context.
func WithOptionalAuth() GuardOption {
	return func(c *guardConfig) { c.requireAuth = false }
}

// WithAllowedRoles restricts the route to sessions holding one of the
// given roles. An empty list allows any authenticated role.
func WithAllowedRoles(roles ...Role) GuardOption {
	return func(c *guardConfig) { c.allowedRoles = roles }
}

// WithLoginRedirect redirects unauthenticated browsers to the login page
// instead of answering 401. An empty url keeps the configured default.
func WithLoginRedirect(url string) GuardOption {
	return func(c *guardConfig) {
		c.redirectToLogin = true
		if url != "" {
			c.loginURL = url
		}
	}
}

// WithTokenSources overrides where the guard looks for the token.
func WithTokenSources(sources TokenSource) GuardOption {
	return func(c *guardConfig) {
		if sources != nil {
			c.sources = sources
		}
	}
}

// Guard wraps a handler with session validation and role authorization.
//
// Requests without a usable session get 401 (or a login redirect); a valid
// session with a disallowed role gets 403 and the handler never runs. A
// session close to expiry is refreshed best-effort. Anything that panics
// beneath the guard is converted to a 500 so it cannot escape the
// middleware boundary.
func (m *Manager) Guard(opts ...GuardOption) func(http.Handler) http.Handler {
	cfg := guardConfig{
		requireAuth: true,
		loginURL:    m.config.LoginURL,
		sources:     DefaultSources(m.config),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					m.log.Error("panic in guarded handler",
						logger.Error(panicError(rec)),
						"path", r.URL.Path,
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			token, ok := cfg.sources.Token(r)
			if !ok {
				m.rejectUnauthenticated(w, r, cfg, next)
				return
			}

			v, err := m.Validate(r.Context(), token)
			if err != nil {
				m.rejectUnauthenticated(w, r, cfg, next)
				return
			}

			if len(cfg.allowedRoles) > 0 && !slices.Contains(cfg.allowedRoles, v.Session.Role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			if v.ShouldRefresh {
				// Best effort: a failed refresh never blocks the request.
				if err := m.Refresh(r.Context(), token); err != nil {
					m.log.Warn("session refresh failed", logger.Token(token), logger.Error(err))
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), v.Session)))
		})
	}
}

// rejectUnauthenticated applies the no-session branch: pass through when
// auth is optional, otherwise redirect or 401.
func (m *Manager) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, cfg guardConfig, next http.Handler) {
	if !cfg.requireAuth {
		next.ServeHTTP(w, r)
		return
	}
	if cfg.redirectToLogin {
		http.Redirect(w, r, cfg.loginURL, http.StatusFound)
		return
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// RequireAuth admits any authenticated principal.
func (m *Manager) RequireAuth() func(http.Handler) http.Handler {
	return m.Guard()
}

// RequireRoles admits sessions holding one of the given roles.
func (m *Manager) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return m.Guard(WithAllowedRoles(roles...))
}

// RequireAdmin admits administrators only.
func (m *Manager) RequireAdmin() func(http.Handler) http.Handler {
	return m.Guard(WithAllowedRoles(RoleAdmin))
}

// RequireTeacherOrAdmin admits school staff.
func (m *Manager) RequireTeacherOrAdmin() func(http.Handler) http.Handler {
	return m.Guard(WithAllowedRoles(RoleTeacher, RoleAdmin))
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
