package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/OjusAnilNaik/To-do-List/todo-api/model"
)

type backend interface {
	ListTasks(ctx context.Context, userID string) ([]model.Task, error)
	GetTask(ctx context.Context, userID string, id int64) (model.Task, error)
	CreateTask(ctx context.Context, userID string, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, userID string, id int64, fn func(*model.Task) error) (model.Task, error)
	DeleteTask(ctx context.Context, userID string, id int64) error
	Reorder(ctx context.Context, userID string, ids []int64) error
}

// Cache wraps a backend with a Redis copy of each user's task list. Reads
// are served from Redis when possible; every write evicts the user's entry.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	if tasks, ok := c.loadTasksFromCache(ctx, userID); ok {
		return tasks, nil
	}
	tasks, err := c.base.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.storeTasks(ctx, userID, tasks)
	return tasks, nil
}

func (c *Cache) GetTask(ctx context.Context, userID string, id int64) (model.Task, error) {
	if tasks, ok := c.loadTasksFromCache(ctx, userID); ok {
		for _, t := range tasks {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return c.base.GetTask(ctx, userID, id)
}

func (c *Cache) CreateTask(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	created, err := c.base.CreateTask(ctx, userID, task)
	if err != nil {
		return model.Task{}, err
	}
	c.evict(ctx, userID)
	return created, nil
}

func (c *Cache) UpdateTask(ctx context.Context, userID string, id int64, fn func(*model.Task) error) (model.Task, error) {
	updated, err := c.base.UpdateTask(ctx, userID, id, fn)
	if err != nil {
		return updated, err
	}
	c.evict(ctx, userID)
	return updated, nil
}

func (c *Cache) DeleteTask(ctx context.Context, userID string, id int64) error {
	if err := c.base.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	c.evict(ctx, userID)
	return nil
}

func (c *Cache) Reorder(ctx context.Context, userID string, ids []int64) error {
	if err := c.base.Reorder(ctx, userID, ids); err != nil {
		return err
	}
	c.evict(ctx, userID)
	return nil
}

func (c *Cache) loadTasksFromCache(ctx context.Context, userID string) ([]model.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		}
		return nil, false
	}
	var tasks []model.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) storeTasks(ctx context.Context, userID string, tasks []model.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, tasksCacheKey(userID), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
}

func tasksCacheKey(userID string) string {
	return "tasks:" + userID
}
