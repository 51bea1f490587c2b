package remote

import (
	"context"
	"fmt"

	"github.com/OjusAnilNaik/To-do-List/domain"
)

// Store is the server variant's board.Store. Every save is followed by a
// reload, so the list the manager commits is always the server's.
type Store struct {
	client  *Client
	created string
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	wire, err := s.client.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, len(wire))
	for i, t := range wire {
		tasks[i] = t.ToDomain()
	}
	return tasks, nil
}

// Save performs the API call matching cmd and returns the reloaded list. The
// proposed list is only used to tell which tasks a bulk command touches.
func (s *Store) Save(ctx context.Context, cmd domain.Command, tasks []domain.Task) ([]domain.Task, error) {
	s.created = ""
	if err := s.send(ctx, cmd); err != nil {
		return nil, err
	}
	return s.Load(ctx)
}

// AssignedID returns the server id of the task created by the last Save.
func (s *Store) AssignedID() string { return s.created }

func (s *Store) send(ctx context.Context, cmd domain.Command) error {
	c := s.client
	switch cmd.Type {
	case domain.CmdAddTask:
		task, err := c.CreateTask(ctx, cmd.Text, cmd.Color, cmd.TaskID)
		if err != nil {
			return err
		}
		s.created = task.ToDomain().ID
		return nil
	case domain.CmdToggleDone:
		return c.ToggleDone(ctx, cmd.TaskID)
	case domain.CmdTogglePin:
		return c.TogglePin(ctx, cmd.TaskID)
	case domain.CmdEditText:
		return c.EditTask(ctx, cmd.TaskID, cmd.Text)
	case domain.CmdSetColor:
		return c.SetColor(ctx, cmd.TaskID, cmd.Color)
	case domain.CmdDeleteTask:
		return c.DeleteTask(ctx, cmd.TaskID)
	case domain.CmdClearCompleted:
		return c.ClearCompleted(ctx)
	case domain.CmdClearAll:
		current, err := c.Tasks(ctx)
		if err != nil {
			return err
		}
		for _, t := range current {
			if err := c.DeleteTask(ctx, t.ToDomain().ID); err != nil {
				return err
			}
		}
		return nil
	case domain.CmdReorder:
		return c.Reorder(ctx, cmd.TaskIDs)
	case domain.CmdAddTag:
		return c.AddTag(ctx, cmd.TaskID, cmd.Tag)
	case domain.CmdRemoveTag:
		return c.RemoveTag(ctx, cmd.TaskID, cmd.Tag)
	case domain.CmdSetDueDate:
		return c.SetDueDate(ctx, cmd.TaskID, cmd.DueDate)
	}
	return fmt.Errorf("remote store cannot handle %q", cmd.Type)
}
