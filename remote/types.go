package remote

import (
	"strconv"
	"time"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// Task is a task as the API serializes it.
type Task struct {
	ID        int64     `json:"id"`
	Task      string    `json:"task"`
	Completed bool      `json:"completed"`
	Pinned    bool      `json:"pinned"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DueDate   string    `json:"due_date"`
	Position  int       `json:"position"`
	Tags      []string  `json:"tags"`
}

// ToDomain converts the wire form into the shared task record.
func (t Task) ToDomain() domain.Task {
	color := t.Color
	if color == "" {
		color = domain.DefaultColor
	}
	var tags []string
	if len(t.Tags) > 0 {
		tags = append(tags, t.Tags...)
	}
	return domain.Task{
		ID:        strconv.FormatInt(t.ID, 10),
		Text:      t.Task,
		Color:     color,
		Pinned:    t.Pinned,
		Done:      t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Tags:      tags,
		DueDate:   t.DueDate,
	}
}

// TaskDetails is the payload of the task-details view.
type TaskDetails struct {
	Task             string   `json:"task"`
	CreatedAtDisplay string   `json:"created_at_display"`
	UpdatedAtDisplay string   `json:"updated_at_display"`
	DueDate          string   `json:"due_date"`
	WarningMessage   string   `json:"warning_message"`
	TimeRemaining    string   `json:"time_remaining"`
	Tags             []string `json:"tags"`
}

type createTaskRequest struct {
	Task  string `json:"task"`
	Color string `json:"color,omitempty"`
}

type reorderRequest struct {
	TaskIDs []string `json:"task_ids"`
}

type tagRequest struct {
	TagName string `json:"tag_name"`
}

type messageResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
