package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventType identifies an audited session operation.
type EventType string

const (
	EventCreated         EventType = "session.created"
	EventRefreshed       EventType = "session.refreshed"
	EventInvalidated     EventType = "session.invalidated"
	EventEvicted         EventType = "session.evicted"
	EventBulkInvalidated EventType = "session.bulk_invalidated"
)

// Event is a single audit record. TokenPrefix carries at most the first
// few characters of the session token; the full token never leaves the
// Manager.
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	UserID      string         `json:"user_id"`
	TokenPrefix string         `json:"token_prefix,omitempty"`
	SchoolID    string         `json:"school_id,omitempty"`
	IP          string         `json:"ip,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Sink receives audit events. Emit is fire-and-forget: implementations
// must not block the caller, and failures must never fail the originating
// session operation.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// LogSink writes audit events through a structured logger.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink that logs each event at info level.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Emit(ctx context.Context, event Event) {
	attrs := []any{
		slog.String("event_id", event.ID),
		slog.String("user_id", event.UserID),
		slog.Time("created_at", event.CreatedAt),
	}
	if event.TokenPrefix != "" {
		attrs = append(attrs, slog.String("token_prefix", event.TokenPrefix))
	}
	if event.SchoolID != "" {
		attrs = append(attrs, slog.String("school_id", event.SchoolID))
	}
	if event.IP != "" {
		attrs = append(attrs, slog.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	s.log.InfoContext(ctx, string(event.Type), attrs...)
}

// AsyncSink decouples event delivery from the request path with a buffered
// channel and a single worker. When the buffer is full events are dropped
// rather than blocking the caller.
type AsyncSink struct {
	next      Sink
	events    chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewAsyncSink wraps next with asynchronous delivery. bufferSize must be
// positive; 256 is plenty for a single instance's login churn.
func NewAsyncSink(next Sink, bufferSize int) *AsyncSink {
	if bufferSize <= 0 {
		bufferSize = 256
	}

	s := &AsyncSink{
		next:   next,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

func (s *AsyncSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	default:
		// Buffer full: dropping an audit event beats stalling a request.
	}
}

func (s *AsyncSink) worker() {
	defer s.wg.Done()
	for {
		select {
		case event := <-s.events:
			s.next.Emit(context.Background(), event)
		case <-s.done:
			// Drain what was already queued before shutting down.
			for {
				select {
				case event := <-s.events:
					s.next.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Close stops the worker after draining queued events.
func (s *AsyncSink) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}