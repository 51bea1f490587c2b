package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/OjusAnilNaik/To-do-List/todo-api/model"
)

type countingBackend struct {
	*Memory
	lists int
}

func (c *countingBackend) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	c.lists++
	return c.Memory.ListTasks(ctx, userID)
}

func newCacheForTest(t *testing.T, ttl time.Duration) (*Cache, *countingBackend, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	base := &countingBackend{Memory: NewMemory()}
	return NewCache(base, client, ttl), base, mr
}

func TestCacheListTasksMissThenHit(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newCacheForTest(t, time.Minute)
	if _, err := base.Memory.CreateTask(ctx, "user-1", model.Task{Text: "Write code"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tasks, err := cache.ListTasks(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || base.lists != 1 {
		t.Fatalf("unexpected first read: %d tasks, %d backend calls", len(tasks), base.lists)
	}
	if ttl := mr.TTL(tasksCacheKey("user-1")); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.ListTasks(ctx, "user-1")
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if len(cached) != 1 || cached[0].Text != "Write code" || base.lists != 1 {
		t.Fatalf("expected cached read to avoid backend, calls=%d", base.lists)
	}
	if got, err := cache.GetTask(ctx, "user-1", cached[0].ID); err != nil || got.Text != "Write code" {
		t.Fatalf("get from cache: %+v %v", got, err)
	}
}

func TestCacheWritesEvict(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newCacheForTest(t, time.Minute)

	if _, err := cache.ListTasks(ctx, "u1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !mr.Exists(tasksCacheKey("u1")) {
		t.Fatalf("expected cache entry after read")
	}

	task, err := cache.CreateTask(ctx, "u1", model.Task{Text: "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if mr.Exists(tasksCacheKey("u1")) {
		t.Fatalf("create should evict")
	}

	tasks, _ := cache.ListTasks(ctx, "u1")
	if len(tasks) != 1 || base.lists != 2 {
		t.Fatalf("expected fresh read after eviction, got %d tasks, %d calls", len(tasks), base.lists)
	}

	if _, err := cache.UpdateTask(ctx, "u1", task.ID, func(t *model.Task) error { return model.ErrUnchanged }); !errors.Is(err, model.ErrUnchanged) {
		t.Fatalf("expected ErrUnchanged, got %v", err)
	}
	if !mr.Exists(tasksCacheKey("u1")) {
		t.Fatalf("unchanged update should keep the cache")
	}
	if err := cache.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(tasksCacheKey("u1")) {
		t.Fatalf("delete should evict")
	}
}

func TestCacheCorruptEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	cache, base, mr := newCacheForTest(t, time.Minute)
	if err := mr.Set(tasksCacheKey("u1"), "{broken"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := cache.ListTasks(ctx, "u1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if base.lists != 1 {
		t.Fatalf("expected fallback to backend")
	}
}

func TestCacheZeroTTLDoesNotStore(t *testing.T) {
	cache, _, mr := newCacheForTest(t, 0)
	if _, err := cache.ListTasks(context.Background(), "u1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if mr.Exists(tasksCacheKey("u1")) {
		t.Fatalf("zero TTL must disable caching")
	}
}
