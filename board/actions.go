package board

import (
	"context"
	"fmt"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// AddTask appends a task and returns it as stored. If the store accepted the
// task but its list does not contain it, ErrTaskNotFound is returned.
func (m *Manager) AddTask(ctx context.Context, text, color string) (domain.Task, error) {
	if err := m.Dispatch(ctx, domain.Command{Type: domain.CmdAddTask, Text: text, Color: color}); err != nil {
		return domain.Task{}, err
	}
	task, ok := m.Task(m.added)
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: created task %q missing from stored list", domain.ErrTaskNotFound, m.added)
	}
	return task, nil
}

// ToggleDone flips the done flag of the task with id.
func (m *Manager) ToggleDone(ctx context.Context, id string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdToggleDone, TaskID: id})
}

// TogglePin flips the pinned flag of the task with id.
func (m *Manager) TogglePin(ctx context.Context, id string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdTogglePin, TaskID: id})
}

// EditText replaces the text of the task with id. Blank text is rejected.
func (m *Manager) EditText(ctx context.Context, id, text string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdEditText, TaskID: id, Text: text})
}

// SetColor changes the color of the task with id.
func (m *Manager) SetColor(ctx context.Context, id, color string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdSetColor, TaskID: id, Color: color})
}

// DeleteTask removes the task with id.
func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdDeleteTask, TaskID: id})
}

// ClearAll removes every task.
func (m *Manager) ClearAll(ctx context.Context) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdClearAll})
}

// ClearCompleted removes the tasks marked done.
func (m *Manager) ClearCompleted(ctx context.Context) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdClearCompleted})
}

// SetFilter changes the display projection only.
func (m *Manager) SetFilter(ctx context.Context, kind string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdSetFilter, Filter: kind})
}

// Reorder moves the named tasks to the front in the given order.
func (m *Manager) Reorder(ctx context.Context, ids []string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdReorder, TaskIDs: ids})
}

// AddTag attaches a normalized tag. Attaching a tag twice fails with
// ErrDuplicateTag.
func (m *Manager) AddTag(ctx context.Context, id, tag string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdAddTag, TaskID: id, Tag: tag})
}

// RemoveTag is a no-op when the tag is not attached.
func (m *Manager) RemoveTag(ctx context.Context, id, tag string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdRemoveTag, TaskID: id, Tag: tag})
}

// SetDueDate stores a YYYY-MM-DD date; an empty date clears it.
func (m *Manager) SetDueDate(ctx context.Context, id, date string) error {
	return m.Dispatch(ctx, domain.Command{Type: domain.CmdSetDueDate, TaskID: id, DueDate: date})
}
