package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/schoolpass/sessionkit/pkg/clientip"
	"github.com/schoolpass/sessionkit/pkg/logger"
)

// Manager owns the session lifecycle on top of a Store. It holds no
// in-process locks: correctness relies on per-key store atomicity, and the
// multi-step workflows (limit-check-then-evict-then-insert,
// read-then-rewrite) are accepted as non-transactional.
type Manager struct {
	store  Store
	config Config
	log    *slog.Logger
	audit  Sink
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the session configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithLogger sets the monitoring logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithAuditSink sets the audit event sink.
func WithAuditSink(sink Sink) Option {
	return func(m *Manager) { m.audit = sink }
}

// WithTimeSource overrides the manager's clock. Tests use this to walk
// sessions through their expiry bounds deterministically.
func WithTimeSource(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a session manager backed by the given store.
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		panic("session: store is required")
	}

	m := &Manager{
		store:  store,
		config: DefaultConfig(),
		log:    slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Close releases the audit sink when the manager owns a closable one.
func (m *Manager) Close() error {
	if closer, ok := m.audit.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// CreateOption attaches request metadata to a new session.
type CreateOption func(*Record)

// WithUserAgent records the client's user agent on the session.
func WithUserAgent(ua string) CreateOption {
	return func(r *Record) { r.UserAgent = ua }
}

// WithIPAddress records the client's IP address on the session.
func WithIPAddress(ip string) CreateOption {
	return func(r *Record) { r.IPAddress = ip }
}

// WithRequest records both user agent and client IP from the request.
func WithRequest(req *http.Request) CreateOption {
	return func(r *Record) {
		r.UserAgent = req.UserAgent()
		r.IPAddress = clientip.FromRequest(req)
	}
}

// Create issues a new session for an already-authenticated principal and
// returns its token. The per-user session limit is enforced first, evicting
// the oldest session when the account is at its cap.
//
// This is the one operation that surfaces a hard failure when the store is
// unavailable: a login that silently fails to produce a usable session is
// worse than an explicit error.
func (m *Manager) Create(ctx context.Context, p Principal, opts ...CreateOption) (string, error) {
	if p.UserID == "" {
		return "", ErrInvalidPrincipal
	}

	if err := m.enforceSessionLimit(ctx, p.UserID); err != nil {
		return "", err
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := m.now()
	rec := &Record{
		Token:        token,
		UserID:       p.UserID,
		Email:        p.Email,
		Role:         p.Role,
		SchoolID:     p.SchoolID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.config.Duration),
	}

	for _, opt := range opts {
		opt(rec)
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	if err := m.store.Put(ctx, recordKey(token), data, m.config.Duration); err != nil {
		return "", err
	}

	// The index is eventually consistent: a failure here leaves a session
	// that enumeration misses, which the lazy pruning paths tolerate.
	if err := m.store.AddToSet(ctx, indexKey(p.UserID), token); err != nil {
		m.log.Error("failed to index session", logger.UserID(p.UserID), logger.Error(err))
	} else if err := m.store.SetExpiry(ctx, indexKey(p.UserID), m.config.Duration); err != nil {
		m.log.Error("failed to set session index expiry", logger.UserID(p.UserID), logger.Error(err))
	}

	m.emit(ctx, EventCreated, rec, nil)

	return token, nil
}

// Validation is the outcome of a successful Validate call.
type Validation struct {
	Session *Record

	// ShouldRefresh marks a session whose remaining lifetime dropped
	// below the refresh threshold.
	ShouldRefresh bool
}

// Validate checks a token against both expiry policies, in order: absolute
// lifetime first, then the sliding inactivity window. Either bound is
// independently terminal and eagerly deletes the record. A valid session
// has its last-activity time rewritten with its remaining TTL.
//
// Store outages and malformed records degrade to ErrSessionNotFound; the
// caller cannot tell them apart from an unknown token, by design.
func (m *Manager) Validate(ctx context.Context, token string) (*Validation, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	rec, err := m.readRecord(ctx, token)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			m.log.Error("session validation degraded", logger.Token(token), logger.Error(err))
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	now := m.now()

	if rec.IsExpired(now) {
		m.removeRecord(ctx, rec)
		return nil, ErrSessionExpired
	}

	if rec.InactiveFor(now) >= m.config.InactivityTimeout {
		m.removeRecord(ctx, rec)
		return nil, ErrSessionInactive
	}

	rec.LastActivity = now
	remaining := rec.RemainingTTL(now)

	// The session already proved readable and live; a failed activity
	// rewrite is bookkeeping, not grounds to reject the request.
	if err := m.writeRecord(ctx, rec, remaining); err != nil {
		m.log.Error("failed to update session activity", logger.Token(token), logger.Error(err))
	}

	return &Validation{
		Session:       rec,
		ShouldRefresh: remaining < m.config.RefreshThreshold,
	}, nil
}

// Refresh unconditionally extends a session's absolute lifetime to
// now+Duration and touches its activity time. Returns ErrSessionNotFound
// for an unknown token.
func (m *Manager) Refresh(ctx context.Context, token string) error {
	rec, err := m.readRecord(ctx, token)
	if err != nil {
		return err
	}

	now := m.now()
	rec.LastActivity = now
	rec.ExpiresAt = now.Add(m.config.Duration)

	if err := m.writeRecord(ctx, rec, m.config.Duration); err != nil {
		return err
	}

	// Keep the index alive at least as long as its youngest session.
	if err := m.store.SetExpiry(ctx, indexKey(rec.UserID), m.config.Duration); err != nil {
		m.log.Error("failed to extend session index expiry", logger.UserID(rec.UserID), logger.Error(err))
	}

	m.emit(ctx, EventRefreshed, rec, nil)
	return nil
}

// Invalidate removes a session. The call is idempotent by contract: it
// returns nil whether or not the token existed, and a non-nil error only
// when the store operation itself fails.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	// Look up the owner before deletion so the index entry can be removed.
	rec, err := m.readRecord(ctx, token)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	if _, err := m.store.Delete(ctx, recordKey(token)); err != nil {
		return err
	}

	if rec != nil {
		if err := m.store.RemoveFromSet(ctx, indexKey(rec.UserID), token); err != nil {
			m.log.Error("failed to unindex session", logger.UserID(rec.UserID), logger.Error(err))
		}
		m.emit(ctx, EventInvalidated, rec, nil)
	}

	return nil
}

// InvalidateAllForUser removes every indexed session of a user. The
// returned count is the number of tokens present in the index when the
// call started, matching Invalidate's idempotent semantics.
func (m *Manager) InvalidateAllForUser(ctx context.Context, userID string) (int, error) {
	tokens, err := m.store.Members(ctx, indexKey(userID))
	if err != nil {
		return 0, err
	}

	for _, token := range tokens {
		if err := m.Invalidate(ctx, token); err != nil {
			m.log.Error("failed to invalidate session", logger.UserID(userID), logger.Token(token), logger.Error(err))
		}
	}

	m.emit(ctx, EventBulkInvalidated, &Record{UserID: userID}, map[string]any{"count": len(tokens)})

	return len(tokens), nil
}

// UserSessions returns the user's currently-unexpired sessions, lazily
// pruning dangling index entries and expired records it encounters.
// Inactivity is not checked here: enumeration is advisory, only the
// validate path treats inactivity as terminal.
func (m *Manager) UserSessions(ctx context.Context, userID string) ([]*Record, error) {
	tokens, err := m.store.Members(ctx, indexKey(userID))
	if err != nil {
		return nil, err
	}

	now := m.now()
	records := make([]*Record, 0, len(tokens))

	for _, token := range tokens {
		rec, err := m.readRecord(ctx, token)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				// Dangling index entry; the record is already gone.
				_ = m.store.RemoveFromSet(ctx, indexKey(userID), token)
			}
			continue
		}

		if rec.IsExpired(now) {
			m.removeRecord(ctx, rec)
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

// enforceSessionLimit evicts oldest sessions until the user is below the
// cap, making room for one more. The check-evict-insert sequence is not
// transactional; concurrent creates can overshoot by one session, which
// the next create corrects.
func (m *Manager) enforceSessionLimit(ctx context.Context, userID string) error {
	if m.config.MaxSessionsPerUser <= 0 {
		return nil
	}

	tokens, err := m.store.Members(ctx, indexKey(userID))
	if err != nil {
		return err
	}

	for len(tokens) >= m.config.MaxSessionsPerUser {
		oldest := tokens[0]
		tokens = tokens[1:]

		if err := m.Invalidate(ctx, oldest); err != nil {
			return err
		}
		m.log.Info("session evicted by limit", logger.UserID(userID), logger.Token(oldest))
		m.emit(ctx, EventEvicted, &Record{UserID: userID, Token: oldest}, nil)
	}

	return nil
}

// readRecord fetches and decodes a record. Absence maps to
// ErrSessionNotFound. Malformed values are treated the same way, logged,
// and deleted so a corrupt blob cannot wedge a token.
func (m *Manager) readRecord(ctx context.Context, token string) (*Record, error) {
	data, err := m.store.Get(ctx, recordKey(token))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	rec, err := decodeRecord(data)
	if err != nil {
		m.log.Error("malformed session record", logger.Token(token), logger.Error(err))
		_, _ = m.store.Delete(ctx, recordKey(token))
		return nil, ErrSessionNotFound
	}

	return rec, nil
}

func (m *Manager) writeRecord(ctx context.Context, rec *Record, ttl time.Duration) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return m.store.Put(ctx, recordKey(rec.Token), data, ttl)
}

// removeRecord deletes a record and its index entry during lazy expiry.
func (m *Manager) removeRecord(ctx context.Context, rec *Record) {
	if _, err := m.store.Delete(ctx, recordKey(rec.Token)); err != nil {
		m.log.Error("failed to delete expired session", logger.Token(rec.Token), logger.Error(err))
	}
	if err := m.store.RemoveFromSet(ctx, indexKey(rec.UserID), rec.Token); err != nil {
		m.log.Error("failed to unindex expired session", logger.UserID(rec.UserID), logger.Error(err))
	}
}

// emit sends an audit event, never failing the originating operation.
func (m *Manager) emit(ctx context.Context, t EventType, rec *Record, metadata map[string]any) {
	if m.audit == nil {
		return
	}

	m.audit.Emit(ctx, Event{
		ID:          uuid.New().String(),
		Type:        t,
		UserID:      rec.UserID,
		TokenPrefix: tokenPrefix(rec.Token),
		SchoolID:    rec.SchoolID,
		IP:          rec.IPAddress,
		UserAgent:   rec.UserAgent,
		Metadata:    metadata,
		CreatedAt:   m.now(),
	})
}

// generateToken creates an opaque token with 256 bits of entropy.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
