package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/angelmondragon/greencart/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartStateKey(storageKey string) string
}

// RedisStore keeps the snapshot under a single namespaced key with no TTL.
type RedisStore struct {
	client kvStore
	key    string
}

func NewRedisStore(client *pkgredis.Client, storageKey string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if storageKey == "" {
		return nil, fmt.Errorf("storage key required")
	}
	return &RedisStore{client: client, key: client.CartStateKey(storageKey)}, nil
}

func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key)
	if errors.Is(err, pkgredis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return Decode([]byte(raw))
}

func (r *RedisStore) Save(ctx context.Context, snapshot Snapshot) error {
	raw, err := Encode(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
