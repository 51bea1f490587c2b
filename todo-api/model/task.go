package model

import (
	"slices"
	"strconv"
	"time"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// Task is a task as stored by the API and returned on the wire.
type Task struct {
	ID        int64     `json:"id"`
	Text      string    `json:"task"`
	Completed bool      `json:"completed"`
	Pinned    bool      `json:"pinned"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DueDate   string    `json:"due_date"`
	Position  int       `json:"position"`
	Tags      []string  `json:"tags"`
}

// Clone returns a copy that shares no memory with t. Tags are never nil.
func (t Task) Clone() Task {
	t.Tags = slices.Clone(t.Tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// Touch moves UpdatedAt forward to now.
func (t *Task) Touch(now time.Time) {
	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

// Domain converts t into the shared task record so filters, deadline and
// progress helpers can be reused.
func (t Task) Domain() domain.Task {
	return domain.Task{
		ID:        strconv.FormatInt(t.ID, 10),
		Text:      t.Text,
		Color:     t.Color,
		Pinned:    t.Pinned,
		Done:      t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Tags:      slices.Clone(t.Tags),
		DueDate:   t.DueDate,
	}
}

// SortByPosition orders tasks by position, ties broken by id.
func SortByPosition(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// NextPosition returns the position for a task appended to tasks.
func NextPosition(tasks []Task) int {
	pos := 0
	for _, t := range tasks {
		pos = max(pos, t.Position)
	}
	return pos + 1
}

// ApplyOrder renumbers tasks so that ids come first in the given order and
// the rest follow in their current order. Unknown and repeated ids are skipped.
// It returns the tasks whose position changed.
func ApplyOrder(tasks []Task, ids []int64) []Task {
	SortByPosition(tasks)
	byID := make(map[int64]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	ordered := make([]Task, 0, len(tasks))
	listed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok || listed[id] {
			continue
		}
		listed[id] = true
		ordered = append(ordered, t)
	}
	for _, t := range tasks {
		if !listed[t.ID] {
			ordered = append(ordered, t)
		}
	}

	var changed []Task
	for i := range ordered {
		if ordered[i].Position != i+1 {
			ordered[i].Position = i + 1
			changed = append(changed, ordered[i])
		}
	}
	copy(tasks, ordered)
	return changed
}
