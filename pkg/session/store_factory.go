package session

import (
	"context"
	"log/slog"

	"github.com/schoolpass/sessionkit/pkg/logger"
	"github.com/schoolpass/sessionkit/pkg/redis"
)

// NewStoreFromConfig selects the Store backend at construction time so the
// Manager has exactly one code path regardless of backend.
//
// With a connection URL configured it probes the server once and returns a
// RedisStore; when the probe fails and allowFallback is set it degrades to
// the in-process MemoryStore (single-instance only — session state will
// not be shared across processes). Without allowFallback the RedisStore is
// returned anyway and keeps retrying lazily, so session creation fails
// hard until the backend recovers. An empty URL selects the fallback
// directly when allowed, or a permanently unavailable RedisStore when not.
func NewStoreFromConfig(ctx context.Context, cfg redis.Config, allowFallback bool, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}

	if cfg.ConnectionURL == "" {
		if allowFallback {
			log.Warn("no session store configured, using in-process fallback")
			return NewMemoryStore(DefaultConfig().CleanupInterval)
		}
		log.Error("no session store configured and fallback disabled")
		return NewRedisStore(cfg, log)
	}

	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		if allowFallback {
			log.Warn("session store unreachable, using in-process fallback", logger.Error(err))
			return NewMemoryStore(DefaultConfig().CleanupInterval)
		}
		log.Error("session store unreachable, store degraded", logger.Error(err))
		return NewRedisStore(cfg, log)
	}

	return NewRedisStoreFromClient(client, log)
}
