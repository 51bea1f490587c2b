package api

import (
	"context"

	"github.com/OjusAnilNaik/To-do-List/todo-api/model"
)

// Storage abstracts persistence for handlers. All calls are scoped to one
// user.
type Storage interface {
	ListTasks(ctx context.Context, userID string) ([]model.Task, error)
	GetTask(ctx context.Context, userID string, id int64) (model.Task, error)
	CreateTask(ctx context.Context, userID string, task model.Task) (model.Task, error)
	// UpdateTask applies fn to the current task and stores the result. When fn
	// returns an error nothing is written.
	UpdateTask(ctx context.Context, userID string, id int64, fn func(*model.Task) error) (model.Task, error)
	DeleteTask(ctx context.Context, userID string, id int64) error
	Reorder(ctx context.Context, userID string, ids []int64) error
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Deduper remembers which task an Idempotency-Key produced.
type Deduper interface {
	// Add records the key as in flight and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Resolve binds a recorded key to the task it created.
	Resolve(ctx context.Context, userID, key string, taskID int64) error
	// Lookup returns the task bound to key. ok is false while the key is
	// still in flight or unknown.
	Lookup(ctx context.Context, userID, key string) (taskID int64, ok bool, err error)
	// Remove deletes a previously added key, used when creation fails.
	Remove(ctx context.Context, userID, key string) error
}

// EventPublisher delivers change events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.Event) error
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
	Tag    string `json:"tag,omitempty"`
}

type createTaskRequest struct {
	Task  string `json:"task"`
	Color string `json:"color"`
}

type reorderRequest struct {
	TaskIDs []string `json:"task_ids"`
}

type tagRequest struct {
	TagName string `json:"tag_name"`
}

type taskDetailsResponse struct {
	Task             string   `json:"task"`
	CreatedAtDisplay string   `json:"created_at_display"`
	UpdatedAtDisplay string   `json:"updated_at_display"`
	DueDate          string   `json:"due_date"`
	WarningMessage   string   `json:"warning_message,omitempty"`
	TimeRemaining    string   `json:"time_remaining,omitempty"`
	Tags             []string `json:"tags"`
}
