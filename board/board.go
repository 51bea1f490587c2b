// Package board holds the task list manager shared by the local and the
// server-backed front ends.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// Store persists the task list.
type Store interface {
	// Load returns the persisted list. Missing data is an empty list.
	Load(ctx context.Context) ([]domain.Task, error)
	// Save persists the list produced by cmd and returns the list that is
	// authoritative afterwards.
	Save(ctx context.Context, cmd domain.Command, tasks []domain.Task) ([]domain.Task, error)
}

// IDAssigner is implemented by stores that replace the manager's id for a
// newly added task with one of their own.
type IDAssigner interface {
	// AssignedID returns the id given to the task created by the last Save.
	AssignedID() string
}

// Manager owns the in-memory task list and the active filter. All changes go
// through Dispatch. A Manager is meant to be driven from a single goroutine.
type Manager struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
	newID  func() string

	tasks  []domain.Task
	filter domain.Filter
	added  string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDs replaces the task id generator.
func WithIDs(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// WithLogger sets the logger used for recoverable failures.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// New creates an empty Manager backed by store. Call Load to read the
// persisted list.
func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: log.StandardLogger(),
		now:    func() time.Time { return time.Now().UTC().Round(0) },
		newID:  uuid.NewString,
		tasks:  []domain.Task{},
		filter: domain.FilterAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory list with the persisted one. Corrupt storage is
// logged and treated as an empty list; any other failure leaves the current
// list in place.
func (m *Manager) Load(ctx context.Context) error {
	tasks, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrStorageCorrupt) {
			return err
		}
		m.logger.WithError(err).Warn("discarding unreadable notes")
		tasks = nil
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	m.tasks = tasks
	return nil
}

// Tasks returns a copy of the list in stored order.
func (m *Manager) Tasks() []domain.Task {
	return domain.CloneAll(m.tasks)
}

// Task returns a copy of the task with the given id.
func (m *Manager) Task(id string) (domain.Task, bool) {
	i := domain.IndexOf(m.tasks, id)
	if i < 0 {
		return domain.Task{}, false
	}
	return m.tasks[i].Clone(), true
}

// Filter returns the active filter.
func (m *Manager) Filter() domain.Filter { return m.filter }

// View returns the list as it should be displayed under the active filter.
func (m *Manager) View() []domain.Task {
	return domain.Render(m.tasks, m.filter)
}

// Dispatch applies cmd. Mutations are computed on a copy of the list and
// only become visible once the store accepted them.
func (m *Manager) Dispatch(ctx context.Context, cmd domain.Command) error {
	if !cmd.Mutates() {
		f, err := domain.ParseFilter(cmd.Filter)
		if err != nil {
			return err
		}
		m.filter = f
		return nil
	}

	next, cmd, err := m.apply(cmd)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	saved, err := m.store.Save(ctx, cmd, next)
	if err != nil {
		m.logger.WithFields(log.Fields{"command": cmd.Type, "task": cmd.TaskID}).
			WithError(err).Warn("save failed, keeping last known-good list")
		return err
	}
	if saved == nil {
		saved = []domain.Task{}
	}
	m.tasks = saved
	if cmd.Type == domain.CmdAddTask {
		m.added = cmd.TaskID
		if a, ok := m.store.(IDAssigner); ok {
			m.added = a.AssignedID()
		}
	}
	return nil
}

// apply computes the list that results from cmd. A nil list with a nil
// error means cmd changes nothing and must not be persisted. The returned
// command is cmd normalized for the store.
func (m *Manager) apply(cmd domain.Command) ([]domain.Task, domain.Command, error) {
	next := domain.CloneAll(m.tasks)
	now := m.now()

	switch cmd.Type {
	case domain.CmdAddTask:
		cmd.Text = strings.TrimSpace(cmd.Text)
		if cmd.Text == "" {
			return nil, cmd, &domain.ValidationError{Field: "text", Message: "write something!"}
		}
		if cmd.Color = strings.TrimSpace(cmd.Color); cmd.Color == "" {
			cmd.Color = domain.DefaultColor
		}
		cmd.TaskID = m.newID()
		next = append(next, domain.Task{
			ID:        cmd.TaskID,
			Text:      cmd.Text,
			Color:     cmd.Color,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return next, cmd, nil

	case domain.CmdClearAll:
		return []domain.Task{}, cmd, nil

	case domain.CmdClearCompleted:
		next = slices.DeleteFunc(next, func(t domain.Task) bool { return t.Done })
		return next, cmd, nil

	case domain.CmdReorder:
		order, known := reorder(next, cmd.TaskIDs)
		if len(known) == 0 {
			return nil, cmd, nil
		}
		cmd.TaskIDs = known
		return order, cmd, nil
	}

	i := domain.IndexOf(next, cmd.TaskID)
	if i < 0 {
		return nil, cmd, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, cmd.TaskID)
	}
	task := &next[i]

	switch cmd.Type {
	case domain.CmdToggleDone:
		// updatedAt is left alone on purpose; only pin, edit and metadata
		// changes count as edits.
		task.Done = !task.Done

	case domain.CmdTogglePin:
		task.Pinned = !task.Pinned
		task.Touch(now)

	case domain.CmdEditText:
		cmd.Text = strings.TrimSpace(cmd.Text)
		if cmd.Text == "" {
			return nil, cmd, &domain.ValidationError{Field: "text", Message: "write something!"}
		}
		task.Text = cmd.Text
		task.Touch(now)

	case domain.CmdSetColor:
		cmd.Color = strings.TrimSpace(cmd.Color)
		if cmd.Color == "" {
			return nil, cmd, &domain.ValidationError{Field: "color", Message: "color is required"}
		}
		task.Color = cmd.Color
		task.Touch(now)

	case domain.CmdDeleteTask:
		next = slices.Delete(next, i, i+1)

	case domain.CmdAddTag:
		cmd.Tag = domain.NormalizeTag(cmd.Tag)
		if cmd.Tag == "" {
			return nil, cmd, &domain.ValidationError{Field: "tag", Message: "please select a tag to add"}
		}
		if !task.AddTag(cmd.Tag) {
			return nil, cmd, fmt.Errorf("%w: %q", domain.ErrDuplicateTag, cmd.Tag)
		}
		task.Touch(now)

	case domain.CmdRemoveTag:
		cmd.Tag = domain.NormalizeTag(cmd.Tag)
		if !task.RemoveTag(cmd.Tag) {
			return nil, cmd, nil
		}
		task.Touch(now)

	case domain.CmdSetDueDate:
		cmd.DueDate = strings.TrimSpace(cmd.DueDate)
		if !domain.ValidDueDate(cmd.DueDate) {
			return nil, cmd, &domain.ValidationError{Field: "dueDate", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", cmd.DueDate)}
		}
		task.DueDate = cmd.DueDate
		task.Touch(now)

	default:
		return nil, cmd, fmt.Errorf("unknown command %q", cmd.Type)
	}
	return next, cmd, nil
}

// reorder places the tasks named in ids first, in that order, followed by the
// remaining tasks in their previous relative order. Unknown and repeated ids
// are dropped; the ids actually used are returned.
func reorder(tasks []domain.Task, ids []string) ([]domain.Task, []string) {
	byID := make(map[string]int, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = i
	}
	used := make(map[int]bool, len(ids))
	out := make([]domain.Task, 0, len(tasks))
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		out = append(out, tasks[i])
		known = append(known, id)
	}
	for i, t := range tasks {
		if !used[i] {
			out = append(out, t)
		}
	}
	return out, known
}
