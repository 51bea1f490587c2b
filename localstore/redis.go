package localstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores keys in redis under a namespace, so several lists can share
// one server.
type RedisKV struct {
	client    *redis.Client
	namespace string
}

// NewRedisKV returns a KV that prefixes every key with namespace and ":".
// An empty namespace uses "todo".
func NewRedisKV(client *redis.Client, namespace string) *RedisKV {
	if namespace == "" {
		namespace = "todo"
	}
	return &RedisKV{client: client, namespace: namespace}
}

func (r *RedisKV) key(k string) string {
	return r.namespace + ":" + k
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}
