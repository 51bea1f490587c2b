package model

// EventType names a change to a user's task list.
type EventType string

const (
	TaskCreated      EventType = "task-created"
	TaskUpdated      EventType = "task-updated"
	TaskDeleted      EventType = "task-deleted"
	TasksReordered   EventType = "tasks-reordered"
	CompletedCleared EventType = "completed-cleared"
)

// Event is published after a change has been stored.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"userId"`
	TaskID    int64     `json:"taskId,omitempty"`
	TaskIDs   []int64   `json:"taskIds,omitempty"`
	Task      *Task     `json:"task,omitempty"`
	Timestamp int64     `json:"timestamp"`
}
