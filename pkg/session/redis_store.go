package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/schoolpass/sessionkit/pkg/logger"
	"github.com/schoolpass/sessionkit/pkg/redis"
)

// RedisStore is the shared Store backend, usable across processes.
//
// The connection is established lazily on first use; a failed dial leaves
// the store in an unavailable state in which every operation returns
// ErrStoreUnavailable, and a later call retries the dial once the retry
// interval has elapsed. Ordered sets are Redis sorted sets scored by
// arrival time, so Members yields insertion order (a plain Redis set would
// not and FIFO eviction depends on it).
type RedisStore struct {
	cfg redis.Config
	log *slog.Logger

	mu          sync.Mutex
	client      goredis.UniversalClient
	lastAttempt time.Time
}

// NewRedisStore creates a store that dials cfg.ConnectionURL on first use.
func NewRedisStore(cfg redis.Config, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}
	return &RedisStore{cfg: cfg, log: log}
}

// NewRedisStoreFromClient wraps an already-connected client. Used when the
// host application owns the connection, and by tests.
func NewRedisStoreFromClient(client goredis.UniversalClient, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}
	return &RedisStore{client: client, log: log}
}

// conn returns a live client, dialing on first use. While the backend is
// unreachable it fails fast until cfg.RetryInterval has passed since the
// last attempt.
func (s *RedisStore) conn(ctx context.Context) (goredis.UniversalClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	if !s.lastAttempt.IsZero() && time.Since(s.lastAttempt) < s.cfg.RetryInterval {
		return nil, ErrStoreUnavailable
	}
	s.lastAttempt = time.Now()

	client, err := redis.Connect(ctx, s.cfg)
	if err != nil {
		s.log.Error("session store unreachable", logger.Error(err))
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s.log.Info("session store connected")
	s.client = client
	return client, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	client, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	client, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	client, err := s.conn(ctx)
	if err != nil {
		return false, err
	}

	removed, err := client.Del(ctx, key).Result()
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return removed > 0, nil
}

func (s *RedisStore) AddToSet(ctx context.Context, setKey, member string) error {
	client, err := s.conn(ctx)
	if err != nil {
		return err
	}

	// NX keeps the original score when the member is re-added, so a
	// member's position reflects its first insertion.
	z := goredis.Z{Score: float64(time.Now().UnixNano()), Member: member}
	if err := client.ZAddNX(ctx, setKey, z).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) RemoveFromSet(ctx context.Context, setKey, member string) error {
	client, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := client.ZRem(ctx, setKey, member).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Members(ctx context.Context, setKey string) ([]string, error) {
	client, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	members, err := client.ZRange(ctx, setKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return members, nil
}

func (s *RedisStore) SetExpiry(ctx context.Context, setKey string, ttl time.Duration) error {
	client, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := client.Expire(ctx, setKey, ttl).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the underlying connection if one was established.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
