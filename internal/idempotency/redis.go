package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

const (
	pendingMarker = "pending"

	// DefaultPendingTTL bounds how long an unfinished reservation blocks its
	// key if the request holding it never completes or releases it.
	DefaultPendingTTL = time.Minute
)

type RedisStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

type Option func(*RedisStore)

// WithPendingTTL sets the lifetime of a reservation that is still in flight.
func WithPendingTTL(ttl time.Duration) Option {
	return func(r *RedisStore) {
		if ttl > 0 {
			r.pendingTTL = ttl
		}
	}
}

// NewRedisStore keeps completed results for ttl. Reservations expire after
// the pending TTL, which never exceeds ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration, opts ...Option) *RedisStore {
	r := &RedisStore{
		client:     client,
		ttl:        ttl,
		pendingTTL: DefaultPendingTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pendingTTL > ttl {
		r.pendingTTL = ttl
	}
	return r
}

func (r *RedisStore) Reserve(ctx context.Context, scope, key string) (string, error) {
	k := storeKey(scope, key)

	ok, err := r.client.SetNX(ctx, k, pendingMarker, r.pendingTTL).Result()
	if err != nil {
		return "", errors.Wrap(err, "redis setnx")
	}
	if ok {
		return "", nil
	}

	value, err := r.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		ok, err := r.client.SetNX(ctx, k, pendingMarker, r.pendingTTL).Result()
		if err != nil {
			return "", errors.Wrap(err, "redis setnx")
		}
		if ok {
			return "", nil
		}
		return "", ErrInFlight
	}
	if err != nil {
		return "", errors.Wrap(err, "redis get")
	}
	if value == pendingMarker {
		return "", ErrInFlight
	}
	return value, nil
}

func (r *RedisStore) Complete(ctx context.Context, scope, key, result string) error {
	if err := r.client.Set(ctx, storeKey(scope, key), result, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (r *RedisStore) Release(ctx context.Context, scope, key string) error {
	if err := r.client.Del(ctx, storeKey(scope, key)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

func storeKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
