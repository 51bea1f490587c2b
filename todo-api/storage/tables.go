package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"github.com/OjusAnilNaik/To-do-List/todo-api/model"
)

const (
	edmInt64       = "Edm.Int64"
	sequenceRowKey = "~sequence"
	maxAttempts    = 5
)

type tableAPI interface {
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	UpdateEntity(ctx context.Context, entity []byte, options *aztables.UpdateEntityOptions) (aztables.UpdateEntityResponse, error)
	DeleteEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error)
	NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

// Tables stores tasks in an Azure table. Each user is a partition; row keys
// are zero padded task ids. A per-partition sequence row hands out ids under
// optimistic concurrency.
type Tables struct {
	table tableAPI
}

// NewTables creates a Tables store from the given connection string.
func NewTables(connStr, tableName string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{table: svc.NewClient(tableName)}, nil
}

type entityKeys struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

type taskEntity struct {
	entityKeys
	Text          string `json:"Text"`
	Completed     bool   `json:"Completed"`
	Pinned        bool   `json:"Pinned"`
	Color         string `json:"Color"`
	CreatedAt     int64  `json:"CreatedAt,string"`
	CreatedAtType string `json:"CreatedAt@odata.type"`
	UpdatedAt     int64  `json:"UpdatedAt,string"`
	UpdatedAtType string `json:"UpdatedAt@odata.type"`
	DueDate       string `json:"DueDate"`
	Position      int    `json:"Position"`
	Tags          string `json:"Tags"`
}

type positionUpdate struct {
	entityKeys
	Position int `json:"Position"`
}

type sequenceEntity struct {
	entityKeys
	Next     int64  `json:"Next,string"`
	NextType string `json:"Next@odata.type"`
}

func rowKey(id int64) string {
	return fmt.Sprintf("%019d", id)
}

func toEntity(userID string, t model.Task) taskEntity {
	return taskEntity{
		entityKeys:    entityKeys{PartitionKey: userID, RowKey: rowKey(t.ID)},
		Text:          t.Text,
		Completed:     t.Completed,
		Pinned:        t.Pinned,
		Color:         t.Color,
		CreatedAt:     t.CreatedAt.UnixNano(),
		CreatedAtType: edmInt64,
		UpdatedAt:     t.UpdatedAt.UnixNano(),
		UpdatedAtType: edmInt64,
		DueDate:       t.DueDate,
		Position:      t.Position,
		Tags:          strings.Join(t.Tags, ","),
	}
}

func decodeTaskEntity(data []byte) (model.Task, error) {
	var ent taskEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return model.Task{}, err
	}
	id, err := strconv.ParseInt(ent.RowKey, 10, 64)
	if err != nil {
		return model.Task{}, fmt.Errorf("bad task row key %q: %w", ent.RowKey, err)
	}
	tags := []string{}
	if ent.Tags != "" {
		tags = strings.Split(ent.Tags, ",")
	}
	return model.Task{
		ID:        id,
		Text:      ent.Text,
		Completed: ent.Completed,
		Pinned:    ent.Pinned,
		Color:     ent.Color,
		CreatedAt: time.Unix(0, ent.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, ent.UpdatedAt).UTC(),
		DueDate:   ent.DueDate,
		Position:  ent.Position,
		Tags:      tags,
	}, nil
}

func escapeFilterValue(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ListTasks retrieves all tasks for the provided user in position order.
func (s *Tables) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	filter := "PartitionKey eq '" + escapeFilterValue(userID) + "' and RowKey lt '~'"
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []model.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			t, err := decodeTaskEntity(e)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}
	model.SortByPosition(tasks)
	return tasks, nil
}

func (s *Tables) GetTask(ctx context.Context, userID string, id int64) (model.Task, error) {
	t, _, err := s.getTask(ctx, userID, id)
	return t, err
}

func (s *Tables) getTask(ctx context.Context, userID string, id int64) (model.Task, azcore.ETag, error) {
	resp, err := s.table.GetEntity(ctx, userID, rowKey(id), nil)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return model.Task{}, "", model.ErrNotFound
		}
		return model.Task{}, "", err
	}
	t, err := decodeTaskEntity(resp.Value)
	return t, resp.ETag, err
}

// CreateTask allocates the next id from the user's sequence row and inserts
// the task after the current last position.
func (s *Tables) CreateTask(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	id, err := s.allocateID(ctx, userID)
	if err != nil {
		return model.Task{}, err
	}
	existing, err := s.ListTasks(ctx, userID)
	if err != nil {
		return model.Task{}, err
	}
	task = task.Clone()
	task.ID = id
	task.Position = model.NextPosition(existing)

	payload, err := json.Marshal(toEntity(userID, task))
	if err != nil {
		return model.Task{}, err
	}
	if _, err := s.table.AddEntity(ctx, payload, nil); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *Tables) allocateID(ctx context.Context, userID string) (int64, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := s.table.GetEntity(ctx, userID, sequenceRowKey, nil)
		if err != nil {
			if !isStatus(err, http.StatusNotFound) {
				return 0, err
			}
			seq := sequenceEntity{entityKeys: entityKeys{PartitionKey: userID, RowKey: sequenceRowKey}, Next: 2, NextType: edmInt64}
			payload, err := json.Marshal(seq)
			if err != nil {
				return 0, err
			}
			if _, err := s.table.AddEntity(ctx, payload, nil); err != nil {
				if isStatus(err, http.StatusConflict) {
					continue
				}
				return 0, err
			}
			return 1, nil
		}

		var seq sequenceEntity
		if err := json.Unmarshal(resp.Value, &seq); err != nil {
			return 0, err
		}
		id := seq.Next
		seq.Next++
		seq.NextType = edmInt64
		payload, err := json.Marshal(seq)
		if err != nil {
			return 0, err
		}
		etag := resp.ETag
		_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &etag, UpdateMode: aztables.UpdateModeReplace})
		if err != nil {
			if isStatus(err, http.StatusPreconditionFailed) {
				continue
			}
			return 0, err
		}
		return id, nil
	}
	return 0, model.ErrConcurrencyConflict
}

// UpdateTask reads the task, applies fn and writes it back conditioned on
// the ETag it read. Conflicting writers cause a re-read and another attempt.
func (s *Tables) UpdateTask(ctx context.Context, userID string, id int64, fn func(*model.Task) error) (model.Task, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		current, etag, err := s.getTask(ctx, userID, id)
		if err != nil {
			return model.Task{}, err
		}
		next := current.Clone()
		if err := fn(&next); err != nil {
			if errors.Is(err, model.ErrUnchanged) {
				return current, err
			}
			return model.Task{}, err
		}
		next.ID = id
		payload, err := json.Marshal(toEntity(userID, next))
		if err != nil {
			return model.Task{}, err
		}
		_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &etag, UpdateMode: aztables.UpdateModeReplace})
		if err != nil {
			if isStatus(err, http.StatusPreconditionFailed) {
				continue
			}
			if isStatus(err, http.StatusNotFound) {
				return model.Task{}, model.ErrNotFound
			}
			return model.Task{}, err
		}
		return next, nil
	}
	return model.Task{}, model.ErrConcurrencyConflict
}

func (s *Tables) DeleteTask(ctx context.Context, userID string, id int64) error {
	if _, err := s.table.DeleteEntity(ctx, userID, rowKey(id), nil); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return model.ErrNotFound
		}
		return err
	}
	return nil
}

// Reorder renumbers the user's tasks and merges only the changed positions.
func (s *Tables) Reorder(ctx context.Context, userID string, ids []int64) error {
	tasks, err := s.ListTasks(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range model.ApplyOrder(tasks, ids) {
		payload, err := json.Marshal(positionUpdate{
			entityKeys: entityKeys{PartitionKey: userID, RowKey: rowKey(t.ID)},
			Position:   t.Position,
		})
		if err != nil {
			return err
		}
		et := azcore.ETagAny
		if _, err := s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeMerge}); err != nil {
			if isStatus(err, http.StatusNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}

func isStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}
