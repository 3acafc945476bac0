package session

import "context"

type sessionContextKey struct{}

// WithSession attaches a validated session to the context.
func WithSession(ctx context.Context, rec *Record) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, rec)
}

// FromContext retrieves the session attached to the context, if any.
func FromContext(ctx context.Context) (*Record, bool) {
	rec, ok := ctx.Value(sessionContextKey{}).(*Record)
	return rec, ok
}

// MustFromContext retrieves the session from the context or panics.
// For handlers mounted behind a guard that requires authentication.
func MustFromContext(ctx context.Context) *Record {
	rec, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return rec
}
