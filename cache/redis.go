package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions tunes the Redis-backed store.
type RedisOptions struct {
	// CallTimeout bounds every remote round trip so a slow Redis cannot
	// stall a request. Zero means 3 seconds.
	CallTimeout time.Duration
	// Logger receives the degrade warnings. Nil means slog.Default().
	Logger *slog.Logger
}

const defaultCallTimeout = 3 * time.Second

// Redis is a [Cache] over a remote Redis instance. If Redis is unreachable
// at construction, or any call later fails, the store switches to its
// in-process fallback and stays there; the switch is one-way and logged.
type Redis struct {
	client   *redis.Client
	fallback *Memory
	logger   *slog.Logger
	timeout  time.Duration
	degraded atomic.Bool
}

// NewRedis constructs the store and probes the client once. A failed probe
// does not fail construction; it just starts the store on the fallback.
func NewRedis(client *redis.Client, opts RedisOptions) *Redis {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	r := &Redis{
		client:   client,
		fallback: NewMemory(),
		logger:   logger,
		timeout:  timeout,
	}

	if client == nil {
		r.degraded.Store(true)
		logger.Warn("cache: no redis client, using in-process store")
		return r
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		r.degrade("ping", err)
	}
	return r
}

// Degraded reports whether the store has switched to the in-process
// fallback.
func (r *Redis) Degraded() bool {
	return r.degraded.Load()
}

// Get implements [Cache].
func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if r.degraded.Load() {
		return r.fallback.Get(ctx, key, dest)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.client.Get(callCtx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		r.degrade("get", err)
		return r.fallback.Get(ctx, key, dest)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements [Cache].
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if r.degraded.Load() {
		return r.fallback.Set(ctx, key, value, ttl)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Set(callCtx, key, data, effectiveTTL(ttl)).Err(); err != nil {
		r.degrade("set", err)
		return r.fallback.Set(ctx, key, value, ttl)
	}
	return nil
}

// SetNX implements [Cache].
func (r *Redis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if r.degraded.Load() {
		return r.fallback.SetNX(ctx, key, value, ttl)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ok, err := r.client.SetNX(callCtx, key, data, effectiveTTL(ttl)).Result()
	if err != nil {
		r.degrade("setnx", err)
		return r.fallback.SetNX(ctx, key, value, ttl)
	}
	return ok, nil
}

// Remove implements [Cache].
func (r *Redis) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if r.degraded.Load() {
		return r.fallback.Remove(ctx, key)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Del(callCtx, key).Err(); err != nil {
		r.degrade("del", err)
		return r.fallback.Remove(ctx, key)
	}
	return nil
}

func (r *Redis) degrade(op string, err error) {
	if r.degraded.CompareAndSwap(false, true) {
		r.logger.Warn("cache: redis unavailable, falling back to in-process store",
			"op", op, "error", err)
	}
}
