package localstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// NotesKey holds the JSON array of notes.
const NotesKey = "notes"

// NoteStore is the local variant's board.Store.
type NoteStore struct {
	kv KV
}

func NewNoteStore(kv KV) *NoteStore {
	return &NoteStore{kv: kv}
}

// Load decodes the stored notes. A missing key is an empty list; undecodable
// data yields an empty list together with domain.ErrStorageCorrupt. Notes
// written before ids existed get one here.
func (s *NoteStore) Load(ctx context.Context) ([]domain.Task, error) {
	raw, ok, err := s.kv.Get(ctx, NotesKey)
	if err != nil {
		return []domain.Task{}, fmt.Errorf("read notes: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []domain.Task{}, nil
	}

	var tasks []domain.Task
	if err := sonic.UnmarshalString(raw, &tasks); err != nil {
		return []domain.Task{}, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	if tasks == nil {
		return []domain.Task{}, nil
	}
	for i := range tasks {
		upgradeNote(&tasks[i])
	}
	return tasks, nil
}

// Save writes the whole list. The list itself is authoritative afterwards.
func (s *NoteStore) Save(ctx context.Context, cmd domain.Command, tasks []domain.Task) ([]domain.Task, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	raw, err := sonic.MarshalString(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode notes: %w", err)
	}
	if err := s.kv.Set(ctx, NotesKey, raw); err != nil {
		return nil, fmt.Errorf("write notes: %w", err)
	}
	return tasks, nil
}

func upgradeNote(t *domain.Task) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Color == "" {
		t.Color = domain.DefaultColor
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
}
