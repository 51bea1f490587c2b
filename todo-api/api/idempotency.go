package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupeKeyPrefix = "create-task"
	pendingMarker   = "pending"
)

// RedisDeduper stores idempotency keys in Redis so all instances agree on
// which create requests were already applied.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(userID, key string) string {
	return fmt.Sprintf("%s:%s:%s", userID, dedupeKeyPrefix, key)
}

// Add records the key if it does not already exist. It returns true when the
// key was newly added.
func (r *RedisDeduper) Add(ctx context.Context, userID, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(userID, key), pendingMarker, r.ttl).Result()
}

// Resolve stores the created task id under the key, keeping its TTL.
func (r *RedisDeduper) Resolve(ctx context.Context, userID, key string, taskID int64) error {
	return r.client.SetArgs(ctx, r.key(userID, key), strconv.FormatInt(taskID, 10), redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err()
}

func (r *RedisDeduper) Lookup(ctx context.Context, userID, key string) (int64, bool, error) {
	v, err := r.client.Get(ctx, r.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if v == pendingMarker {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad idempotency record %q: %w", v, err)
	}
	return id, true, nil
}

// Remove deletes a previously recorded key. It is used when task creation
// fails so the caller may retry.
func (r *RedisDeduper) Remove(ctx context.Context, userID, key string) error {
	return r.client.Del(ctx, r.key(userID, key)).Err()
}
