package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/OjusAnilNaik/To-do-List/todo-api/model"
)

// Memory keeps tasks in process memory. It is the default backend for local
// runs and tests.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	users  map[string][]model.Task
}

func NewMemory() *Memory {
	return &Memory{users: map[string][]model.Task{}}
}

// ListTasks returns the user's tasks in position order.
func (m *Memory) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTasks(m.users[userID]), nil
}

func (m *Memory) GetTask(ctx context.Context, userID string, id int64) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(userID, id)
	if i < 0 {
		return model.Task{}, model.ErrNotFound
	}
	return m.users[userID][i].Clone(), nil
}

// CreateTask assigns an id and appends the task after the last position.
func (m *Memory) CreateTask(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	task = task.Clone()
	task.ID = m.nextID
	task.Position = model.NextPosition(m.users[userID])
	m.users[userID] = append(m.users[userID], task)
	return task.Clone(), nil
}

// UpdateTask applies fn to a copy of the task and stores the result unless fn
// fails.
func (m *Memory) UpdateTask(ctx context.Context, userID string, id int64, fn func(*model.Task) error) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(userID, id)
	if i < 0 {
		return model.Task{}, model.ErrNotFound
	}
	task := m.users[userID][i].Clone()
	if err := fn(&task); err != nil {
		if errors.Is(err, model.ErrUnchanged) {
			return m.users[userID][i].Clone(), err
		}
		return model.Task{}, err
	}
	task.ID = id
	m.users[userID][i] = task
	return task.Clone(), nil
}

func (m *Memory) DeleteTask(ctx context.Context, userID string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(userID, id)
	if i < 0 {
		return model.ErrNotFound
	}
	tasks := m.users[userID]
	m.users[userID] = append(tasks[:i:i], tasks[i+1:]...)
	return nil
}

// Reorder moves ids to the front in the given order and renumbers positions.
func (m *Memory) Reorder(ctx context.Context, userID string, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	model.ApplyOrder(m.users[userID], ids)
	return nil
}

func (m *Memory) index(userID string, id int64) int {
	for i, t := range m.users[userID] {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	model.SortByPosition(out)
	return out
}
