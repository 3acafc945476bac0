package session_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolpass/sessionkit/pkg/redis"
	"github.com/schoolpass/sessionkit/pkg/session"
)

func setupRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStoreFromClient(client, slog.New(slog.DiscardHandler)), mr
}

func TestRedisStore_PutGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := setupRedisStore(t)

	t.Run("get missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "k1", []byte("v1"), time.Minute))

		got, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)
	})

	t.Run("ttl expires the key", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "k2", []byte("v2"), 10*time.Second))
		mr.FastForward(11 * time.Second)

		_, err := store.Get(ctx, "k2")
		assert.ErrorIs(t, err, session.ErrKeyNotFound)
	})

	t.Run("delete reports presence", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "k3", []byte("v3"), time.Minute))

		present, err := store.Delete(ctx, "k3")
		require.NoError(t, err)
		assert.True(t, present)

		present, err = store.Delete(ctx, "k3")
		require.NoError(t, err)
		assert.False(t, present)
	})
}

func TestRedisStore_Sets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := setupRedisStore(t)

	t.Run("members preserves insertion order", func(t *testing.T) {
		require.NoError(t, store.AddToSet(ctx, "s1", "a"))
		require.NoError(t, store.AddToSet(ctx, "s1", "b"))
		require.NoError(t, store.AddToSet(ctx, "s1", "c"))

		members, err := store.Members(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, members)
	})

	t.Run("re-adding keeps original position", func(t *testing.T) {
		require.NoError(t, store.AddToSet(ctx, "s1", "a"))

		members, _ := store.Members(ctx, "s1")
		assert.Equal(t, []string{"a", "b", "c"}, members)
	})

	t.Run("remove member", func(t *testing.T) {
		require.NoError(t, store.RemoveFromSet(ctx, "s1", "b"))

		members, _ := store.Members(ctx, "s1")
		assert.Equal(t, []string{"a", "c"}, members)
	})

	t.Run("missing set yields empty members", func(t *testing.T) {
		members, err := store.Members(ctx, "ghost")
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("set expiry drops the whole set", func(t *testing.T) {
		require.NoError(t, store.AddToSet(ctx, "s2", "x"))
		require.NoError(t, store.SetExpiry(ctx, "s2", 10*time.Second))
		mr.FastForward(11 * time.Second)

		members, err := store.Members(ctx, "s2")
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1", // nothing listens here
		RetryAttempts:  1,
		RetryInterval:  time.Hour, // fail fast after the first dial
		ConnectTimeout: 200 * time.Millisecond,
	}
	store := session.NewRedisStore(cfg, slog.New(slog.DiscardHandler))

	t.Run("every primitive degrades to unavailable", func(t *testing.T) {
		assert.ErrorIs(t, store.Put(ctx, "k", []byte("v"), time.Minute), session.ErrStoreUnavailable)

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, session.ErrStoreUnavailable)

		_, err = store.Delete(ctx, "k")
		assert.ErrorIs(t, err, session.ErrStoreUnavailable)

		assert.ErrorIs(t, store.AddToSet(ctx, "s", "m"), session.ErrStoreUnavailable)
		assert.ErrorIs(t, store.RemoveFromSet(ctx, "s", "m"), session.ErrStoreUnavailable)

		_, err = store.Members(ctx, "s")
		assert.ErrorIs(t, err, session.ErrStoreUnavailable)

		assert.ErrorIs(t, store.SetExpiry(ctx, "s", time.Minute), session.ErrStoreUnavailable)
	})

	t.Run("close without a connection is fine", func(t *testing.T) {
		assert.NoError(t, store.Close())
	})
}

func TestNewStoreFromConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)

	t.Run("reachable server selects redis", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		cfg := redis.Config{
			ConnectionURL:  "redis://" + mr.Addr(),
			RetryAttempts:  1,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: time.Second,
		}

		store := session.NewStoreFromConfig(ctx, cfg, true, log)
		assert.IsType(t, &session.RedisStore{}, store)
		assert.NoError(t, store.Put(ctx, "k", []byte("v"), time.Minute))
	})

	t.Run("empty url with fallback selects memory", func(t *testing.T) {
		t.Parallel()
		store := session.NewStoreFromConfig(ctx, redis.Config{}, true, log)
		assert.IsType(t, &session.MemoryStore{}, store)
	})

	t.Run("unreachable server with fallback selects memory", func(t *testing.T) {
		t.Parallel()
		cfg := redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1",
			RetryAttempts:  1,
			RetryInterval:  10 * time.Millisecond,
			ConnectTimeout: 200 * time.Millisecond,
		}
		store := session.NewStoreFromConfig(ctx, cfg, true, log)
		assert.IsType(t, &session.MemoryStore{}, store)
	})

	t.Run("unreachable server without fallback stays degraded", func(t *testing.T) {
		t.Parallel()
		cfg := redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1",
			RetryAttempts:  1,
			RetryInterval:  time.Hour,
			ConnectTimeout: 200 * time.Millisecond,
		}
		store := session.NewStoreFromConfig(ctx, cfg, false, log)
		require.IsType(t, &session.RedisStore{}, store)
		assert.ErrorIs(t, store.Put(ctx, "k", []byte("v"), time.Minute), session.ErrStoreUnavailable)
	})
}
