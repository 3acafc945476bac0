// Package session turns an opaque bearer token into a trusted, role-scoped
// identity for each request.
//
// A Manager owns the full session lifecycle (create, validate, refresh,
// invalidate, per-user enumeration and concurrent-session limits) on top of
// a Store abstraction with two interchangeable backends: a Redis-backed
// shared store for production and an in-process fallback for development
// and tests. Sessions carry two independent expiry policies, an absolute
// lifetime and a sliding inactivity window; whichever bound triggers first
// ends the session.
//
// # Usage
//
//	store := session.NewStoreFromConfig(ctx, redisCfg, true, log)
//	manager := session.NewManager(store,
//	    session.WithConfig(cfg),
//	    session.WithLogger(log),
//	    session.WithAuditSink(session.NewAsyncSink(session.NewLogSink(log), 256)),
//	)
//
//	token, err := manager.Create(ctx, session.Principal{
//	    UserID:   user.ID,
//	    Email:    user.Email,
//	    Role:     session.RoleTeacher,
//	    SchoolID: user.SchoolID,
//	}, session.WithRequest(r))
//
// The Guard middleware plugs into any net/http router:
//
//	r := chi.NewRouter()
//	r.Group(func(r chi.Router) {
//	    r.Use(manager.RequireTeacherOrAdmin())
//	    r.Get("/passes", listPasses)
//	})
//	r.Group(func(r chi.Router) {
//	    r.Use(manager.RequireAdmin())
//	    r.Delete("/users/{id}/sessions", revokeUserSessions)
//	})
//
// Handlers read the validated session from the request context:
//
//	sess := session.MustFromContext(r.Context())
//	log.Info("pass created", logger.UserID(sess.UserID), logger.SchoolID(sess.SchoolID))
//
// # Degradation
//
// Store outages never surface to request handlers: validation degrades to
// "session not found" (a 401 for guarded routes) and refresh/invalidate
// report failure without panicking. Session creation is the one operation
// that hard-fails on an unavailable store, so a login cannot silently
// produce a token that was never persisted.
package session
